package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a non-2xx response from a provider API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, body)
}

// Failure reasons produced by Classify.
const (
	ReasonTimeout     = "timeout"
	ReasonRateLimited = "rate_limited"
	ReasonServerError = "server_error"
	ReasonBadRequest  = "bad_request"
	ReasonConnection  = "connection"
	ReasonCanceled    = "canceled"
)

// Classify maps a provider error to a failure reason and whether a retry can
// help. Request malformation never improves on retry; rate limits, server
// failures, and timeouts can.
func Classify(err error) (reason string, transient bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout:
			return ReasonTimeout, true
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return ReasonRateLimited, true
		case apiErr.StatusCode >= 500:
			return ReasonServerError, true
		default:
			return ReasonBadRequest, false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout, true
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled, false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ReasonTimeout, true
		}
		return ReasonConnection, true
	}

	// Unknown transport-level failure; retrying is the safer bet.
	return ReasonConnection, true
}
