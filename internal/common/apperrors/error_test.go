package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedErrorsMatchAncestors(t *testing.T) {
	base := New("store error").SetStatusCode(http.StatusInternalServerError)
	notFound := base.New("entity not found").SetStatusCode(http.StatusNotFound)

	refined := notFound.Msg("offer 42 not found")
	assert.True(t, errors.Is(refined, notFound))
	assert.True(t, errors.Is(refined, base))
	assert.Equal(t, http.StatusNotFound, refined.StatusCode())
	assert.Equal(t, "offer 42 not found", refined.Error())
}

func TestSiblingsDoNotMatch(t *testing.T) {
	base := New("store error")
	notFound := base.New("not found")
	conflict := base.New("conflict")

	assert.False(t, errors.Is(notFound, conflict))
	assert.False(t, errors.Is(conflict.Msg("draft exists"), notFound))
}

func TestErrAttachesCauses(t *testing.T) {
	base := New("provider error").SetStatusCode(http.StatusBadGateway)
	cause := fmt.Errorf("connection reset")

	err := base.Err(cause)
	assert.True(t, errors.Is(err, base))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusBadGateway, err.StatusCode())
	assert.Contains(t, err.UnwrapAll(), cause)
}

func TestErrorAllExpansion(t *testing.T) {
	base := New("sync failed").SetExpandError(true)
	err := base.Err(errors.New("price create rejected"))

	assert.Equal(t, "sync failed", err.Error())
	assert.Equal(t, "sync failed; sync failed; price create rejected", err.SetExpandError(true).ErrorAll())

	collapsed := New("sync failed").Err(errors.New("ignored"))
	assert.Equal(t, "sync failed", collapsed.ErrorAll())
}

func TestStatusCodeInheritance(t *testing.T) {
	base := New("validation failed").SetStatusCode(http.StatusBadRequest)
	child := base.New("missing pricing model")
	assert.Equal(t, http.StatusBadRequest, child.StatusCode())

	overridden := child.SetStatusCode(http.StatusConflict)
	assert.Equal(t, http.StatusConflict, overridden.StatusCode())
	// the original is untouched
	assert.Equal(t, http.StatusBadRequest, child.StatusCode())
}
