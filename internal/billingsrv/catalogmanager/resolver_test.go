package catalogmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/uuid"
)

func publishedVersion(num int, effectiveFrom *time.Time, publishedAt time.Time) *models.CatalogVersion {
	return &models.CatalogVersion{
		VersionID:     uuid.New(),
		VersionNum:    num,
		Status:        billcommon.VersionStatusPublished,
		EffectiveFrom: effectiveFrom,
		PublishedAt:   &publishedAt,
	}
}

func TestEffectiveVersionPrecedence(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ef1 := base.AddDate(0, 0, -10)
	ef2 := base.AddDate(0, 0, -5)
	future := base.AddDate(0, 0, 7)

	v1 := publishedVersion(1, nil, base.AddDate(0, 0, -30))
	v2 := publishedVersion(2, &ef1, base.AddDate(0, 0, -20))
	v3 := publishedVersion(3, &ef2, base.AddDate(0, 0, -15))
	v4 := publishedVersion(4, &future, base.AddDate(0, 0, -1))
	versions := []*models.CatalogVersion{v1, v2, v3, v4}

	// The latest passed effective date wins; the future one is excluded.
	winner := EffectiveVersion(versions, base)
	require.NotNil(t, winner)
	assert.Equal(t, v3.VersionID, winner.VersionID)

	// Once the future date arrives, that version governs.
	winner = EffectiveVersion(versions, future.Add(time.Hour))
	require.NotNil(t, winner)
	assert.Equal(t, v4.VersionID, winner.VersionID)

	// Before any explicit date passed, the undated version governs.
	winner = EffectiveVersion(versions, base.AddDate(0, 0, -25))
	require.NotNil(t, winner)
	assert.Equal(t, v1.VersionID, winner.VersionID)
}

func TestEffectiveVersionExplicitBeatsUnset(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ef := base.AddDate(0, 0, -5)

	// The undated version was published later, but an explicit effective
	// date still takes precedence over an unset one.
	dated := publishedVersion(1, &ef, base.AddDate(0, 0, -10))
	undated := publishedVersion(2, nil, base.AddDate(0, 0, -1))

	winner := EffectiveVersion([]*models.CatalogVersion{undated, dated}, base)
	require.NotNil(t, winner)
	assert.Equal(t, dated.VersionID, winner.VersionID)
}

func TestEffectiveVersionTieBreakByPublish(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ef := base.AddDate(0, 0, -5)

	older := publishedVersion(1, &ef, base.AddDate(0, 0, -10))
	newer := publishedVersion(2, &ef, base.AddDate(0, 0, -2))

	winner := EffectiveVersion([]*models.CatalogVersion{older, newer}, base)
	require.NotNil(t, winner)
	assert.Equal(t, newer.VersionID, winner.VersionID)

	// Order of the input slice must not matter.
	winner = EffectiveVersion([]*models.CatalogVersion{newer, older}, base)
	require.NotNil(t, winner)
	assert.Equal(t, newer.VersionID, winner.VersionID)
}

func TestEffectiveVersionBothUndated(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Neither version carries an effective date; the later publish wins.
	first := publishedVersion(1, nil, base.AddDate(0, 0, -10))
	second := publishedVersion(2, nil, base.AddDate(0, 0, -3))

	winner := EffectiveVersion([]*models.CatalogVersion{first, second}, base)
	require.NotNil(t, winner)
	assert.Equal(t, second.VersionID, winner.VersionID)
}

func TestEffectiveVersionNoCandidate(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := base.AddDate(0, 0, 3)

	draft := &models.CatalogVersion{
		VersionID:  uuid.New(),
		VersionNum: 1,
		Status:     billcommon.VersionStatusDraft,
	}
	scheduled := publishedVersion(2, &future, base.AddDate(0, 0, -1))

	assert.Nil(t, EffectiveVersion(nil, base))
	assert.Nil(t, EffectiveVersion([]*models.CatalogVersion{draft, scheduled}, base))
}

func TestScheduledVersionsOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in3 := base.AddDate(0, 0, 3)
	in7 := base.AddDate(0, 0, 7)
	past := base.AddDate(0, 0, -2)

	v1 := publishedVersion(1, &past, base.AddDate(0, 0, -5))
	v2 := publishedVersion(2, &in7, base.AddDate(0, 0, -4))
	v3 := publishedVersion(3, &in3, base.AddDate(0, 0, -3))
	v4 := publishedVersion(4, nil, base.AddDate(0, 0, -1))

	out := ScheduledVersions([]*models.CatalogVersion{v1, v2, v3, v4}, base)
	require.Len(t, out, 2)
	assert.Equal(t, v3.VersionID, out[0].VersionID)
	assert.Equal(t, v2.VersionID, out[1].VersionID)
}
