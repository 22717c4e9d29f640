package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleapit/fleapit/internal/database"
)

func testRequest() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/media/1/artwork", nil)
}

func TestDispatchNotNullViolation(t *testing.T) {
	err := &database.NotNullError{Field: "checksum"}

	status, body, ok := Dispatch(err, testRequest(), builtinHandlers)

	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeNotNullViolation, body.Error.Code)
	assert.Contains(t, body.Error.Message, "checksum")
}

func TestDispatchValidationError(t *testing.T) {
	err := &database.ValidationError{Errors: []database.FieldError{
		{Field: "childId", Message: "child collection must differ from parent collection"},
		{Field: "other", Message: "should not appear"},
	}}

	status, body, ok := Dispatch(err, testRequest(), builtinHandlers)

	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeValidation, body.Error.Code)
	assert.Equal(t, "child collection must differ from parent collection", body.Error.Message)
}

func TestDispatchUniqueConstraintMessage(t *testing.T) {
	err := &database.UniqueConstraintError{Fields: []string{"mediaId", "format", "url"}}

	status, body, ok := Dispatch(err, testRequest(), builtinHandlers)

	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeUniqueConstraint, body.Error.Code)
	assert.Equal(t, "[mediaId, format, url] field set must be unique", body.Error.Message)
}

func TestDispatchUnclassified(t *testing.T) {
	_, _, ok := Dispatch(errors.New("driver exploded"), testRequest(), builtinHandlers)
	assert.False(t, ok)
}

func TestDispatchEmptyHandlerList(t *testing.T) {
	_, _, ok := Dispatch(errors.New("anything"), testRequest(), nil)
	assert.False(t, ok)
}

func TestDispatchSpecificityBeatsRegistrationOrder(t *testing.T) {
	sentinel := errors.New("boom")
	handlers := []ErrorHandler{
		{
			Match: func(err error) bool { return errors.Is(err, sentinel) },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusBadRequest, Error("GENERIC", "generic")
			},
		},
		{
			Match: func(err error) bool { return errors.Is(err, sentinel) },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusBadRequest, Error("SPECIFIC", "specific")
			},
			Specificity: 1,
		},
	}

	_, body, ok := Dispatch(sentinel, testRequest(), handlers)

	require.True(t, ok)
	assert.Equal(t, "SPECIFIC", body.Error.Code)
}

func TestDispatchStableOrderOnEqualSpecificity(t *testing.T) {
	sentinel := errors.New("boom")
	handlers := []ErrorHandler{
		{
			Match: func(err error) bool { return errors.Is(err, sentinel) },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusBadRequest, Error("FIRST", "first registered")
			},
		},
		{
			Match: func(err error) bool { return errors.Is(err, sentinel) },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusBadRequest, Error("SECOND", "second registered")
			},
		},
	}

	_, body, ok := Dispatch(sentinel, testRequest(), handlers)

	require.True(t, ok)
	assert.Equal(t, "FIRST", body.Error.Code)
}

func TestDispatchPanickingPredicateIsNonMatch(t *testing.T) {
	sentinel := errors.New("boom")
	handlers := []ErrorHandler{
		{
			Match: func(error) bool { panic("bad predicate") },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusTeapot, Error("PANIC", "unreachable")
			},
			Specificity: 5,
		},
		{
			Match: func(err error) bool { return errors.Is(err, sentinel) },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusBadRequest, Error("SAFE", "safe")
			},
		},
	}

	_, body, ok := Dispatch(sentinel, testRequest(), handlers)

	require.True(t, ok)
	assert.Equal(t, "SAFE", body.Error.Code)
}

func TestDigestSendClassified(t *testing.T) {
	w := httptest.NewRecorder()
	err := &database.UniqueConstraintError{Fields: []string{"username"}}

	DigestError(err, testRequest()).Send(w)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeUniqueConstraint, env.Error.Code)
	assert.Equal(t, "[username] field set must be unique", env.Error.Message)
}

func TestDigestSendUnclassifiedFallsBackToServerError(t *testing.T) {
	w := httptest.NewRecorder()

	DigestError(errors.New("driver-specific details"), testRequest()).Send(w)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeServerError, env.Error.Code)
	// Raw error details never leak into the body.
	assert.NotContains(t, env.Error.Message, "driver-specific")
}

func TestDigestRemainingClassifiesLeftovers(t *testing.T) {
	w := httptest.NewRecorder()
	sentinel := errors.New("quota exceeded")

	DigestError(sentinel, testRequest()).
		Remaining(ErrorHandler{
			Match: func(err error) bool { return errors.Is(err, sentinel) },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusConflict, Error("QUOTA_EXCEEDED", "quota exceeded")
			},
		}).
		Send(w)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestDigestRemainingDoesNotOverrideBuiltinMatch(t *testing.T) {
	w := httptest.NewRecorder()
	err := &database.NotNullError{Field: "url"}

	DigestError(err, testRequest()).
		Remaining(ErrorHandler{
			Match: func(error) bool { return true },
			Respond: func(error, *http.Request) (int, Envelope) {
				return http.StatusConflict, Error("OVERRIDE", "should not apply")
			},
		}).
		Send(w)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	assert.Equal(t, CodeNotNullViolation, env.Error.Code)
}
