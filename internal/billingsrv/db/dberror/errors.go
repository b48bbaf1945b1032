// Package dberror defines the error taxonomy surfaced by the database layer.
package dberror

import (
	"net/http"

	"github.com/offerd/offerd/internal/common/apperrors"
)

var (
	ErrDatabase           apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists      apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound           apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidInput       apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrInvalidEntity      apperrors.Error = ErrDatabase.New("invalid catalog entity").SetStatusCode(http.StatusBadRequest)
	ErrInvalidVersion     apperrors.Error = ErrDatabase.New("invalid catalog version").SetStatusCode(http.StatusBadRequest)
	ErrMissingWorkspaceID apperrors.Error = ErrInvalidInput.New("missing workspace ID").SetStatusCode(http.StatusBadRequest)
)
