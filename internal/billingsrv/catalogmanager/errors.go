package catalogmanager

import (
	"net/http"

	"github.com/offerd/offerd/internal/common/apperrors"
)

// Base catalog error
var (
	ErrCatalogError apperrors.Error = apperrors.New("catalog processing failed").SetStatusCode(http.StatusInternalServerError)
)

// Not found errors
var (
	ErrEntityNotFound  apperrors.Error = ErrCatalogError.New("catalog entity not found").SetStatusCode(http.StatusNotFound)
	ErrVersionNotFound apperrors.Error = ErrCatalogError.New("catalog version not found").SetStatusCode(http.StatusNotFound)
	ErrDraftNotFound   apperrors.Error = ErrCatalogError.New("draft version not found").SetStatusCode(http.StatusNotFound)
)

// Conflict errors
var (
	ErrAlreadyExists   apperrors.Error = ErrCatalogError.New("object already exists").SetStatusCode(http.StatusConflict)
	ErrDraftExists     apperrors.Error = ErrAlreadyExists.New("entity already has a draft version").SetStatusCode(http.StatusConflict)
	ErrInvalidState    apperrors.Error = ErrCatalogError.New("operation not valid in current state").SetStatusCode(http.StatusConflict)
	ErrEntityArchived  apperrors.Error = ErrInvalidState.New("catalog entity is archived").SetStatusCode(http.StatusConflict)
	ErrVersionNotDraft apperrors.Error = ErrInvalidState.New("version is not a draft").SetStatusCode(http.StatusConflict)
)

// Validation errors
var (
	ErrValidation        apperrors.Error = ErrCatalogError.New("config validation failed").SetExpandError(true).SetStatusCode(http.StatusBadRequest)
	ErrInvalidKind       apperrors.Error = ErrValidation.New("unsupported kind").SetStatusCode(http.StatusBadRequest)
	ErrInvalidConfig     apperrors.Error = ErrValidation.New("invalid config payload").SetExpandError(true).SetStatusCode(http.StatusBadRequest)
	ErrInvalidEntityType apperrors.Error = ErrValidation.New("invalid entity type").SetStatusCode(http.StatusBadRequest)
	ErrInvalidRequest    apperrors.Error = ErrCatalogError.New("invalid request").SetStatusCode(http.StatusBadRequest)
)

// Provider sync errors
var (
	ErrProviderSync apperrors.Error = ErrCatalogError.New("provider sync failed").SetExpandError(true).SetStatusCode(http.StatusBadGateway)
	// ErrSyncCompensationFailed indicates the local rollback after a failed
	// sync also failed, leaving state that needs operator reconciliation.
	ErrSyncCompensationFailed apperrors.Error = ErrProviderSync.New("sync rollback incomplete").SetExpandError(true).SetStatusCode(http.StatusBadGateway)
)
