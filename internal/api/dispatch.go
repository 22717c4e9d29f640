package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fleapit/fleapit/internal/database"
)

// ErrorHandler classifies one kind of error. Match decides whether the
// handler applies; Respond builds the status and body for a matched error.
// Handlers with higher Specificity are tried first; among equal specificity,
// registration order wins.
type ErrorHandler struct {
	Match       func(err error) bool
	Respond     func(err error, r *http.Request) (int, Envelope)
	Specificity int
}

// builtinHandlers classify the persistence-layer constraint failures every
// endpoint can run into. The not-null handler outranks the generic validation
// handler by specificity, not by position.
var builtinHandlers = []ErrorHandler{
	{
		Match: func(err error) bool {
			var ve *database.ValidationError
			return errors.As(err, &ve)
		},
		Respond: func(err error, _ *http.Request) (int, Envelope) {
			var ve *database.ValidationError
			errors.As(err, &ve)
			msg := "validation failed"
			if len(ve.Errors) > 0 {
				msg = ve.Errors[0].Message
			}
			return http.StatusBadRequest, Error(CodeValidation, msg)
		},
	},
	{
		Match: func(err error) bool {
			var nn *database.NotNullError
			return errors.As(err, &nn)
		},
		Respond: func(err error, _ *http.Request) (int, Envelope) {
			var nn *database.NotNullError
			errors.As(err, &nn)
			return http.StatusBadRequest, Error(CodeNotNullViolation,
				fmt.Sprintf("Field '%s' cannot be null", nn.Field))
		},
		Specificity: 1,
	},
	{
		Match: func(err error) bool {
			var uc *database.UniqueConstraintError
			return errors.As(err, &uc)
		},
		Respond: func(err error, _ *http.Request) (int, Envelope) {
			var uc *database.UniqueConstraintError
			errors.As(err, &uc)
			return http.StatusBadRequest, Error(CodeUniqueConstraint,
				fmt.Sprintf("[%s] field set must be unique", strings.Join(uc.Fields, ", ")))
		},
	},
}

// Dispatch tests err against the given handlers in descending specificity
// order and returns the first match's response. The sort is stable, so
// handlers registered earlier win ties. The third return is false when no
// handler matched; callers must then fall back to a generic 500.
func Dispatch(err error, r *http.Request, handlers []ErrorHandler) (int, Envelope, bool) {
	if len(handlers) == 0 {
		return 0, Envelope{}, false
	}

	sorted := make([]ErrorHandler, len(handlers))
	copy(sorted, handlers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Specificity > sorted[j].Specificity
	})

	for _, h := range sorted {
		if match(h, err) {
			status, body := h.Respond(err, r)
			return status, body, true
		}
	}
	return 0, Envelope{}, false
}

// match treats a panicking predicate as a non-match so a single bad handler
// cannot take the dispatcher down.
func match(h ErrorHandler, err error) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return h.Match(err)
}

// Digest holds the outcome of classifying one error. Build one with
// DigestError, optionally widen it with Remaining, then Send it.
type Digest struct {
	err     error
	req     *http.Request
	status  int
	body    Envelope
	matched bool
}

// DigestError classifies err against the built-in handler table.
func DigestError(err error, r *http.Request) *Digest {
	d := &Digest{err: err, req: r}
	d.status, d.body, d.matched = Dispatch(err, r, builtinHandlers)
	return d
}

// Remaining tests err against additional handlers, but only if the built-in
// table produced no match. Handlers already applied are not re-applied.
func (d *Digest) Remaining(handlers ...ErrorHandler) *Digest {
	if !d.matched {
		d.status, d.body, d.matched = Dispatch(d.err, d.req, handlers)
	}
	return d
}

// Send writes the classified response. An unclassified error is logged and
// becomes the generic 500; it never escapes without a response.
func (d *Digest) Send(w http.ResponseWriter) {
	if !d.matched {
		log.Error().Err(d.err).
			Str("path", d.req.URL.Path).
			Str("method", d.req.Method).
			Msg("unclassified error")
		ServerError(w)
		return
	}
	WriteJSON(w, d.status, d.body)
}
