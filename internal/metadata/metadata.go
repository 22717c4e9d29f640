// Package metadata implements the per-entity metadata protocol in its two
// storage forms: a single JSON object per owner (Blob) and one row per
// (owner, key) pair (Sparse). The variant is chosen per entity type when the
// handlers are wired up; callers are responsible for checking that the owner
// exists before invoking either variant.
package metadata

import (
	"strconv"

	"github.com/fleapit/fleapit/internal/database"
)

// scalarString renders a decoded JSON scalar as its stored string form.
// Objects and arrays are rejected; sparse metadata values are flat.
func scalarString(key string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", &database.ValidationError{Errors: []database.FieldError{{
			Field:   key,
			Message: "metadata value for '" + key + "' must be a scalar",
		}}}
	}
}
