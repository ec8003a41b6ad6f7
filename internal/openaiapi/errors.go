// Package openaiapi holds pieces shared by the OpenAI-compatible adapters.
package openaiapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"docchat/internal/domain"
)

// Provider is the provider name used in errors.
const Provider = "openai"

// ErrorBody is the error envelope returned by OpenAI-compatible APIs.
type ErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// ClassifyHTTPError builds a typed provider error from a non-2xx response.
// 429 responses are rate limits unless the body reports exhausted quota,
// which no amount of waiting fixes.
func ClassifyHTTPError(op string, status int, body []byte) *domain.ProviderError {
	perr := &domain.ProviderError{
		Provider:   Provider,
		Operation:  op,
		Kind:       domain.KindGeneric,
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}
	var eb ErrorBody
	code, typ := "", ""
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != nil {
		perr.Message = eb.Error.Message
		typ = eb.Error.Type
		if s, ok := eb.Error.Code.(string); ok {
			code = s
		}
	}
	switch {
	case code == "rate_limit_exceeded" || typ == "rate_limit_error" || typ == "rate_limit_exceeded":
		perr.Kind = domain.KindRateLimited
	case status == http.StatusTooManyRequests && code != "insufficient_quota" && typ != "insufficient_quota":
		perr.Kind = domain.KindRateLimited
	}
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}

// TransportError wraps a failure to reach the provider.
func TransportError(op string, err error) *domain.ProviderError {
	return &domain.ProviderError{Provider: Provider, Operation: op, Kind: domain.KindGeneric, Cause: err}
}
