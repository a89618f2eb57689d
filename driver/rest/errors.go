package rest

import (
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
)

// statusError maps a failed response onto the domain taxonomy, keeping the
// backend's message and field errors when it sent them.
func statusError(route string, status int, body []byte) error {
	message, fields := describe(body)
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	var code domain.ErrorCode
	switch {
	case status == fasthttp.StatusUnauthorized:
		code = domain.ErrCodeUnauthorized
	case status == fasthttp.StatusForbidden:
		code = domain.ErrCodeForbidden
	case status == fasthttp.StatusNotFound:
		if route == routeProfile {
			return domain.WrapError(domain.ErrCodeNotFound, message, domain.ErrProfileNotFound)
		}
		code = domain.ErrCodeNotFound
	case status == fasthttp.StatusBadRequest, status == fasthttp.StatusUnprocessableEntity:
		code = domain.ErrCodeInvalid
	case status == fasthttp.StatusConflict:
		code = domain.ErrCodeConflict
	case status >= fasthttp.StatusInternalServerError:
		return domain.WrapError(domain.ErrCodeUnavailable, message, domain.ErrBackendUnavailable)
	default:
		code = domain.ErrCodeInternal
	}
	return domain.NewError(code, message).WithFields(fields)
}

// describe reads {message|error, errors:{field:[...]}} from an error body, also
// when wrapped in the transport envelope.
func describe(body []byte) (string, map[string][]string) {
	rec, err := adapter.DecodeRecord(body)
	if err != nil {
		return "", nil
	}
	if nested := rec.Child("error"); nested != nil {
		rec = nested
	}
	message := rec.String("message", "error", "msg")

	var fields map[string][]string
	if errs := rec.Child("errors", "fields"); errs != nil {
		fields = make(map[string][]string, len(errs))
		for key, v := range errs {
			if msg, ok := v.(string); ok {
				fields[key] = []string{msg}
				continue
			}
			if msgs := errs.Strings(key); len(msgs) > 0 {
				fields[key] = msgs
			}
		}
	}
	return message, fields
}
