// Package pricing computes unit and total prices for the supported pricing
// models. All monetary values are integers in the smallest currency unit;
// there is no floating-point arithmetic anywhere in this package.
package pricing

import (
	"net/http"

	"github.com/offerd/offerd/internal/common/apperrors"
)

// ErrInvalidPricing is returned for malformed pricing input: unknown model,
// negative amounts or quantities, or an invalid tier list.
var ErrInvalidPricing apperrors.Error = apperrors.New("invalid pricing input").SetStatusCode(http.StatusBadRequest)

// Model identifies how a price is computed from a quantity.
type Model string

const (
	// ModelFlat charges a fixed amount regardless of quantity.
	ModelFlat Model = "flat"
	// ModelPerUnit charges amount per unit.
	ModelPerUnit Model = "per_unit"
	// ModelTiered charges each portion of the quantity at the rate of the
	// tier it falls in (graduated pricing).
	ModelTiered Model = "tiered"
	// ModelVolume charges the entire quantity at the rate of the single
	// tier containing it.
	ModelVolume Model = "volume"
)

// IsValid reports whether m is a known pricing model.
func (m Model) IsValid() bool {
	switch m {
	case ModelFlat, ModelPerUnit, ModelTiered, ModelVolume:
		return true
	}
	return false
}

// UsesTiers reports whether the model requires a tier list.
func (m Model) UsesTiers() bool {
	return m == ModelTiered || m == ModelVolume
}

// Tier is one band of a tiered or volume price. UpTo is the inclusive upper
// bound of the band; nil means unbounded. FlatAmount, if set, is charged
// once when the band is entered under graduated pricing.
type Tier struct {
	UpTo       *int64 `json:"upTo"`
	UnitAmount int64  `json:"unitAmount"`
	FlatAmount int64  `json:"flatAmount,omitempty"`
}

// TierCharge is the contribution of one tier to a graduated price.
type TierCharge struct {
	Quantity   int64 `json:"quantity"`
	UnitAmount int64 `json:"unitAmount"`
	FlatAmount int64 `json:"flatAmount,omitempty"`
	Subtotal   int64 `json:"subtotal"`
}

// PriceResult is the outcome of a price computation. TierBreakdown is only
// populated for the tiered model. UnitPrice is the per-unit rate where the
// model has one; for tiered pricing it is the blended rate rounded down, or
// zero when quantity is zero.
type PriceResult struct {
	UnitPrice     int64        `json:"unitPrice"`
	TotalPrice    int64        `json:"totalPrice"`
	TierBreakdown []TierCharge `json:"tierBreakdown,omitempty"`
}

// ValidateTiers checks that tiers form a usable band list: bounds strictly
// ascending, amounts non-negative, and exactly one unbounded tier in the
// final position.
func ValidateTiers(tiers []Tier) apperrors.Error {
	if len(tiers) == 0 {
		return ErrInvalidPricing.Msg("tiers must not be empty")
	}

	var prevCeiling int64
	for i, tier := range tiers {
		if tier.UnitAmount < 0 || tier.FlatAmount < 0 {
			return ErrInvalidPricing.Msg("tier amounts must not be negative")
		}
		if tier.UpTo == nil {
			if i != len(tiers)-1 {
				return ErrInvalidPricing.Msg("only the final tier may be unbounded")
			}
			continue
		}
		if *tier.UpTo <= prevCeiling {
			return ErrInvalidPricing.Msg("tier bounds must be strictly ascending")
		}
		prevCeiling = *tier.UpTo
	}

	if tiers[len(tiers)-1].UpTo != nil {
		return ErrInvalidPricing.Msg("the final tier must be unbounded")
	}

	return nil
}

// Price computes the price of quantity units under the given model. For
// flat and per_unit, amount is the charge and tiers must be nil. For tiered
// and volume, tiers carry the rates and amount is ignored.
func Price(model Model, amount int64, tiers []Tier, quantity int64) (*PriceResult, apperrors.Error) {
	if !model.IsValid() {
		return nil, ErrInvalidPricing.Msg("unknown pricing model: " + string(model))
	}
	if quantity < 0 {
		return nil, ErrInvalidPricing.Msg("quantity must not be negative")
	}
	if amount < 0 {
		return nil, ErrInvalidPricing.Msg("amount must not be negative")
	}
	if model.UsesTiers() {
		if err := ValidateTiers(tiers); err != nil {
			return nil, err
		}
	} else if len(tiers) > 0 {
		return nil, ErrInvalidPricing.Msg("tiers are only valid for tiered and volume models")
	}

	switch model {
	case ModelFlat:
		return &PriceResult{UnitPrice: amount, TotalPrice: amount}, nil
	case ModelPerUnit:
		return &PriceResult{UnitPrice: amount, TotalPrice: amount * quantity}, nil
	case ModelTiered:
		return priceTiered(tiers, quantity), nil
	case ModelVolume:
		return priceVolume(tiers, quantity), nil
	}
	return nil, ErrInvalidPricing.Msg("unknown pricing model: " + string(model))
}

// priceTiered walks the tiers in order, consuming quantity cumulatively.
// Each tier charges its unit rate on the portion of quantity within its
// band, plus its flat amount once if the band is entered at all.
func priceTiered(tiers []Tier, quantity int64) *PriceResult {
	result := &PriceResult{}

	remaining := quantity
	var prevCeiling int64
	for _, tier := range tiers {
		if remaining <= 0 {
			break
		}

		bandSize := remaining
		if tier.UpTo != nil {
			bandSize = *tier.UpTo - prevCeiling
			prevCeiling = *tier.UpTo
		}
		tierQuantity := remaining
		if tierQuantity > bandSize {
			tierQuantity = bandSize
		}

		subtotal := tierQuantity*tier.UnitAmount + tier.FlatAmount
		result.TierBreakdown = append(result.TierBreakdown, TierCharge{
			Quantity:   tierQuantity,
			UnitAmount: tier.UnitAmount,
			FlatAmount: tier.FlatAmount,
			Subtotal:   subtotal,
		})
		result.TotalPrice += subtotal
		remaining -= tierQuantity
	}

	if quantity > 0 {
		result.UnitPrice = result.TotalPrice / quantity
	}
	return result
}

// priceVolume bills the entire quantity at the rate of the first tier whose
// bound contains it, falling through to the unbounded tier.
func priceVolume(tiers []Tier, quantity int64) *PriceResult {
	for _, tier := range tiers {
		if tier.UpTo != nil && *tier.UpTo < quantity {
			continue
		}
		return &PriceResult{
			UnitPrice:  tier.UnitAmount,
			TotalPrice: quantity * tier.UnitAmount,
		}
	}
	// Unreachable after validation; the final tier is always unbounded.
	return &PriceResult{}
}
