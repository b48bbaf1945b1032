// Package provider implements the billing gateway against the Stripe API.
package provider

import (
	"net/http"

	"github.com/offerd/offerd/internal/common/apperrors"
)

var (
	ErrProvider apperrors.Error = apperrors.New("provider error").SetStatusCode(http.StatusBadGateway)
	// ErrSyncFailed covers remote rejections and exhausted retries during
	// offer or promotion sync.
	ErrSyncFailed apperrors.Error = ErrProvider.New("remote sync failed").SetExpandError(true).SetStatusCode(http.StatusBadGateway)
	// ErrDeactivationFailed covers failures of the best-effort remote
	// deactivation during archive. Callers log it and move on.
	ErrDeactivationFailed apperrors.Error = ErrProvider.New("remote deactivation failed").SetExpandError(true).SetStatusCode(http.StatusBadGateway)
	// ErrNotConfigured indicates the provider API key is missing.
	ErrNotConfigured apperrors.Error = ErrProvider.New("provider not configured").SetStatusCode(http.StatusServiceUnavailable)
)
