// Package bind decodes an HTTP request body into a struct and validates it.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/pkg/validate"
)

const defaultMaxBodyBytes = 1 << 20

// ErrMalformed is returned (wrapped) when the body is not decodable JSON.
var ErrMalformed = errors.New("malformed request body")

// JSON decodes r.Body into dest, capped at MAX_BODY_BYTES, then validates it.
//
// A decode failure returns (nil, err) with err wrapping ErrMalformed.
// Validation failures return (errs, nil).
func JSON(r *http.Request, dest any) (map[string]string, error) {
	limit := int64(config.Int("MAX_BODY_BYTES", defaultMaxBodyBytes))
	body := http.MaxBytesReader(nil, r.Body, limit)

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return nil, fmt.Errorf("%w: empty body", ErrMalformed)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
