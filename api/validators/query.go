package validators

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
)

// ParseQueryInt reads an optional bounded integer such as ?limit=.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "must be a whole number")
	}
	if value < lo || value > hi {
		return 0, queryError(key, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi)).
			WithDetails(map[string]any{"field": key, "min": lo, "max": hi})
	}
	return value, nil
}

// ParseQueryChoice reads an optional switch such as ?mode=live or
// ?format=html. Matching ignores case; the result is lowercase.
func ParseQueryChoice(r *http.Request, key, def string, allowed ...string) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	if raw == "" {
		return def, nil
	}
	if !slices.Contains(allowed, raw) {
		return "", queryError(key, "must be one of "+strings.Join(allowed, ", ")).
			WithDetails(map[string]any{"field": key, "allowed": allowed})
	}
	return raw, nil
}

func queryError(key, problem string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "query parameter %s %s", key, problem).
		WithDetails(map[string]any{"field": key})
}
