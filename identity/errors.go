package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/klipach/fbtoken/contract"
)

const ErrorMsgLogField = "errorMsg"

// RejectedError is a well-formed exchange that did not yield a refresh token.
// Body holds the raw response for diagnostics.
type RejectedError struct {
	StatusCode int
	Body       []byte
	Code       int
	Message    string
}

func newRejectedError(status int, body []byte) *RejectedError {
	e := &RejectedError{StatusCode: status, Body: body}

	var resp contract.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Error) == 0 {
		return e
	}
	var msg string
	if err := json.Unmarshal(resp.Error, &msg); err == nil {
		e.Message = msg
		return e
	}
	var detail contract.ErrorBody
	if err := json.Unmarshal(resp.Error, &detail); err == nil {
		e.Code = detail.Code
		e.Message = detail.Message
	}
	return e
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", ErrExchangeRejected, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: response has no refresh token", ErrExchangeRejected, e.StatusCode)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrExchangeRejected
}

// redactURLError hides the API key that net/http puts into *url.Error messages.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactURL(ue.URL)
	}
	return err
}

func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparsable url>"
	}
	q := u.Query()
	if q.Has(apiKeyParam) {
		q.Set(apiKeyParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
