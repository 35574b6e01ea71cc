package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shandysiswandi/waitlist/internal/pkg/goerror"
)

var (
	errEmptyBody    = errors.New("request body is empty")
	errTrailingData = errors.New("request body has data after the JSON value")
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// DecodeBody decodes a single JSON value from the body into dst.
//
// Unknown fields and trailing data are rejected. The returned error is a
// goerror.Error with CodeInvalidFormat wrapping the decoder failure.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Request == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat(errEmptyBody)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return goerror.NewInvalidFormat(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat(errTrailingData)
	}

	return nil
}
