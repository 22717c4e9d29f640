package database

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// NotNullError reports a write that left a required column null.
type NotNullError struct {
	Field string
}

func (e *NotNullError) Error() string {
	return fmt.Sprintf("field %s cannot be null", e.Field)
}

// ValidationError reports one or more invalid field values.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return e.Errors[0].Message
}

// UniqueConstraintError reports a write that collided with a uniqueness
// constraint over the named fields.
type UniqueConstraintError struct {
	Fields []string
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("fields [%s] must be unique", strings.Join(e.Fields, ", "))
}

// resultCodeSuffix matches the trailing result code the driver appends to
// constraint messages, e.g. " (2067)".
var resultCodeSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)

// mapConstraintError converts the driver's constraint-failure messages into
// typed errors. Anything it does not recognise passes through untouched.
//
// The driver reports constraint failures as plain strings, e.g.
//
//	constraint failed: NOT NULL constraint failed: media.checksum (1299)
//	constraint failed: UNIQUE constraint failed: media.url (2067)
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()

	if cols, ok := cutAfter(msg, "NOT NULL constraint failed: "); ok {
		return &NotNullError{Field: columnField(cols)}
	}
	if cols, ok := cutAfter(msg, "UNIQUE constraint failed: "); ok {
		fields := make([]string, 0, 3)
		for _, col := range strings.Split(cols, ",") {
			fields = append(fields, columnField(strings.TrimSpace(col)))
		}
		return &UniqueConstraintError{Fields: fields}
	}
	return err
}

// cutAfter returns the remainder of s after the first occurrence of marker,
// with the driver's trailing result code stripped.
func cutAfter(s, marker string) (string, bool) {
	_, rest, ok := strings.Cut(s, marker)
	if !ok {
		return "", false
	}
	return resultCodeSuffix.ReplaceAllString(rest, ""), true
}

// columnField maps a table-qualified snake_case column to its JSON field
// name: "media_artwork.media_id" becomes "mediaId".
func columnField(col string) string {
	if _, name, ok := strings.Cut(col, "."); ok {
		col = name
	}
	parts := strings.Split(col, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}
