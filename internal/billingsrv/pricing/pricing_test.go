package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upTo(n int64) *int64 {
	return &n
}

func TestPriceFlat(t *testing.T) {
	result, err := Price(ModelFlat, 5000, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.TotalPrice)
	assert.Equal(t, int64(5000), result.UnitPrice)

	// Quantity is informational only
	result, err = Price(ModelFlat, 5000, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.TotalPrice)
}

func TestPricePerUnit(t *testing.T) {
	result, err := Price(ModelPerUnit, 250, nil, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), result.TotalPrice)
	assert.Equal(t, int64(250), result.UnitPrice)

	result, err = Price(ModelPerUnit, 250, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalPrice)
}

func TestPriceTiered(t *testing.T) {
	tiers := []Tier{
		{UpTo: upTo(10), UnitAmount: 1000},
		{UpTo: nil, UnitAmount: 500},
	}

	// 10 units at 1000 plus 5 units at 500
	result, err := Price(ModelTiered, 0, tiers, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(12500), result.TotalPrice)
	require.Len(t, result.TierBreakdown, 2)
	assert.Equal(t, int64(10), result.TierBreakdown[0].Quantity)
	assert.Equal(t, int64(10000), result.TierBreakdown[0].Subtotal)
	assert.Equal(t, int64(5), result.TierBreakdown[1].Quantity)
	assert.Equal(t, int64(2500), result.TierBreakdown[1].Subtotal)

	// Quantity within the first tier never touches the second
	result, err = Price(ModelTiered, 0, tiers, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.TotalPrice)
	assert.Len(t, result.TierBreakdown, 1)

	result, err = Price(ModelTiered, 0, tiers, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalPrice)
	assert.Empty(t, result.TierBreakdown)
}

func TestPriceTieredFlatAmounts(t *testing.T) {
	tiers := []Tier{
		{UpTo: upTo(5), UnitAmount: 100, FlatAmount: 1000},
		{UpTo: nil, UnitAmount: 50, FlatAmount: 500},
	}

	// Flat amounts are charged once per entered tier
	result, err := Price(ModelTiered, 0, tiers, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(5*100+1000+3*50+500), result.TotalPrice)

	// The second tier's flat amount is not charged when the tier is not entered
	result, err = Price(ModelTiered, 0, tiers, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5*100+1000), result.TotalPrice)
}

func TestPriceVolume(t *testing.T) {
	tiers := []Tier{
		{UpTo: upTo(10), UnitAmount: 1000},
		{UpTo: nil, UnitAmount: 500},
	}

	// The entire quantity is billed at the containing tier's rate
	result, err := Price(ModelVolume, 0, tiers, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), result.TotalPrice)
	assert.Equal(t, int64(500), result.UnitPrice)
	assert.Empty(t, result.TierBreakdown)

	// At the boundary the lower tier still applies
	result, err = Price(ModelVolume, 0, tiers, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.TotalPrice)
	assert.Equal(t, int64(1000), result.UnitPrice)

	result, err = Price(ModelVolume, 0, tiers, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalPrice)
}

func TestPriceInvalidInput(t *testing.T) {
	tiers := []Tier{
		{UpTo: upTo(10), UnitAmount: 1000},
		{UpTo: nil, UnitAmount: 500},
	}

	_, err := Price(Model("subscription"), 100, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidPricing)

	_, err = Price(ModelPerUnit, 100, nil, -1)
	assert.ErrorIs(t, err, ErrInvalidPricing)

	_, err = Price(ModelPerUnit, -100, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidPricing)

	_, err = Price(ModelPerUnit, 100, tiers, 1)
	assert.ErrorIs(t, err, ErrInvalidPricing)

	_, err = Price(ModelTiered, 0, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidPricing)
}

func TestValidateTiers(t *testing.T) {
	// No unbounded final tier
	err := ValidateTiers([]Tier{{UpTo: upTo(10), UnitAmount: 100}})
	assert.ErrorIs(t, err, ErrInvalidPricing)

	// Unbounded tier in a non-final position
	err = ValidateTiers([]Tier{
		{UpTo: nil, UnitAmount: 100},
		{UpTo: upTo(10), UnitAmount: 50},
	})
	assert.ErrorIs(t, err, ErrInvalidPricing)

	// Bounds not ascending
	err = ValidateTiers([]Tier{
		{UpTo: upTo(10), UnitAmount: 100},
		{UpTo: upTo(10), UnitAmount: 50},
		{UpTo: nil, UnitAmount: 25},
	})
	assert.ErrorIs(t, err, ErrInvalidPricing)

	// Negative amounts
	err = ValidateTiers([]Tier{
		{UpTo: upTo(10), UnitAmount: -1},
		{UpTo: nil, UnitAmount: 50},
	})
	assert.ErrorIs(t, err, ErrInvalidPricing)

	err = ValidateTiers([]Tier{
		{UpTo: upTo(10), UnitAmount: 100},
		{UpTo: upTo(20), UnitAmount: 50},
		{UpTo: nil, UnitAmount: 25},
	})
	assert.NoError(t, err)
}
