package oracle

import (
	"context"
	"errors"
	"net"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/genai"

	"github.com/joelkehle/claimestimate/internal/claims"
)

// Client sends one request to the reasoning service and returns its raw
// text. Failures are *claims.Error values with code missing_credential,
// network_failure or oracle_rejected.
type Client interface {
	Send(ctx context.Context, req Request) (string, error)
}

type ClientFunc func(ctx context.Context, req Request) (string, error)

func (f ClientFunc) Send(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

type failureClass int

const (
	failureNone failureClass = iota
	failureCredential
	failureCanceled
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

func (c failureClass) retryable() bool {
	return c == failureTimeout || c == failureRateLimit || c == failureServer
}

func (c failureClass) String() string {
	switch c {
	case failureCredential:
		return "credential"
	case failureCanceled:
		return "canceled"
	case failureTimeout:
		return "timeout"
	case failureRateLimit:
		return "rate_limit"
	case failureServer:
		return "server"
	case failureClient:
		return "client"
	default:
		return "none"
	}
}

func classifyTransportError(err error) failureClass {
	if err == nil {
		return failureNone
	}
	// Coded errors other than network failures describe the request itself,
	// so sending it again cannot help.
	switch claims.CodeOf(err) {
	case "", claims.CodeNetworkFailure:
	case claims.CodeMissingCredential:
		return failureCredential
	default:
		return failureClient
	}
	if errors.Is(err, context.Canceled) {
		return failureCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return classifyStatus(genaiErr.Code)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted"):
		return failureRateLimit
	case strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, "status code: 4") || strings.Contains(msg, "invalid_argument") || strings.Contains(msg, "permission_denied"):
		return failureClient
	default:
		return failureServer
	}
}

func classifyStatus(code int) failureClass {
	switch {
	case code == 429:
		return failureRateLimit
	case code == 408:
		return failureTimeout
	case code >= 500:
		return failureServer
	case code >= 400:
		return failureClient
	default:
		return failureServer
	}
}

// transportError maps a raw transport failure onto the error taxonomy.
// Errors that already carry a code pass through unchanged.
func transportError(provider string, err error) error {
	var ce *claims.Error
	if errors.As(err, &ce) {
		return err
	}
	switch classifyTransportError(err) {
	case failureClient:
		return claims.NewError(claims.CodeOracleRejected, provider+" rejected the request", err)
	default:
		return claims.NewError(claims.CodeNetworkFailure, provider+" request failed", err)
	}
}

func missingCredential(envVar string) error {
	return claims.NewError(claims.CodeMissingCredential, envVar+" not configured", nil)
}
