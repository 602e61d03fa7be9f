package generation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"autoposter/internal/services"
	"autoposter/internal/textutil"
)

const maxErrorBodyBytes = 200

// ErrInFlight rejects a run while another one has not resolved.
var ErrInFlight = fmt.Errorf("%w: generation already in progress", services.ErrValidation)

// HTTPError is a non-2xx response from the generation backend.
type HTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBodyBytes {
		body = textutil.TruncateBytes(body, maxErrorBodyBytes) + "..."
	}
	if body == "" {
		return fmt.Sprintf("generation request: http %d", e.StatusCode)
	}
	return fmt.Sprintf("generation request: http %d: %s", e.StatusCode, body)
}

// Unwrap lets errors.Is match services.ErrHTTP.
func (e *HTTPError) Unwrap() error {
	return services.ErrHTTP
}

// Transient reports whether the status is worth retrying.
func (e *HTTPError) Transient() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
