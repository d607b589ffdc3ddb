package llm

import (
	"errors"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// IsTransient reports whether err looks like a transient network condition
// worth retrying: rate limiting, server errors, or a failure where no HTTP
// response arrived at all. Everything else (bad credentials, invalid
// requests, empty prompts) propagates immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 ||
			reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"temporarily unavailable",
		"unexpected eof",
		"timeout",
		"broken pipe",
	} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
