package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pharmsim/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const maxMessageLen = 200

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Code == http.StatusForbidden:
		return ErrForbidden
	case e.Code == http.StatusNotFound:
		return common.ErrorNotFound
	case e.Code >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

// StatusCode returns the HTTP status carried by err, if the server answered.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

func transportError(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// statusError builds a StatusError from resp, reading an optional
// {"message": "..."} body. It does not close the body.
func statusError(resp *http.Response) *StatusError {
	se := &StatusError{Code: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		se.Message = payload.Message
	} else {
		se.Message = strings.TrimSpace(string(body))
		if len(se.Message) > maxMessageLen {
			se.Message = se.Message[:maxMessageLen]
		}
	}
	return se
}
