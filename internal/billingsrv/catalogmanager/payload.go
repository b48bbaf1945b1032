package catalogmanager

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/pricing"
	"github.com/offerd/offerd/internal/common/apperrors"
)

var configValidator *validator.Validate

// V returns the shared validator for config payloads.
func V() *validator.Validate {
	if configValidator == nil {
		configValidator = validator.New(validator.WithRequiredStructEnabled())
	}
	return configValidator
}

// DiscountType distinguishes the promotion config variants.
type DiscountType string

const (
	DiscountPercent       DiscountType = "percent"
	DiscountFixedAmount   DiscountType = "fixed_amount"
	DiscountFreeTrialDays DiscountType = "free_trial_days"
)

// OfferConfig is the pricing descriptor carried by offer versions. The
// payload is a closed variant keyed by Kind; every reader matches on Model
// exhaustively rather than probing for fields.
type OfferConfig struct {
	Kind     string         `json:"kind" validate:"required,eq=Offer"`
	Currency string         `json:"currency" validate:"required,iso4217"`
	Interval string         `json:"interval" validate:"required,oneof=day week month year"`
	Model    pricing.Model  `json:"model" validate:"required"`
	Amount   int64          `json:"amount,omitempty" validate:"gte=0"`
	Tiers    []pricing.Tier `json:"tiers,omitempty"`
}

// PromotionConfig is the discount descriptor carried by promotion versions.
// Exactly one of the three discount variants is populated, selected by
// DiscountType.
type PromotionConfig struct {
	Kind         string       `json:"kind" validate:"required,eq=Promotion"`
	DiscountType DiscountType `json:"discountType" validate:"required,oneof=percent fixed_amount free_trial_days"`
	Code         string       `json:"code,omitempty" validate:"omitempty,alphanum,max=64"`
	PercentOff   int64        `json:"percentOff,omitempty" validate:"gte=0,lte=100"`
	AmountOff    int64        `json:"amountOff,omitempty" validate:"gte=0"`
	Currency     string       `json:"currency,omitempty" validate:"omitempty,iso4217"`
	TrialDays    int64        `json:"trialDays,omitempty" validate:"gte=0"`
	MaxRedeems   int64        `json:"maxRedeems,omitempty" validate:"gte=0"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
}

// ParseOfferConfig parses and validates an offer config payload. Validation
// covers billability: a payload that passes here carries everything the
// provider sync needs to mint a remote price.
func ParseOfferConfig(configJSON []byte) (*OfferConfig, apperrors.Error) {
	if !gjson.ValidBytes(configJSON) {
		return nil, ErrInvalidConfig.Msg("config is not valid JSON")
	}
	kind := gjson.GetBytes(configJSON, "kind").String()
	if kind != billcommon.OfferKind {
		return nil, ErrInvalidKind.Msg("expected kind " + billcommon.OfferKind)
	}

	cfg := &OfferConfig{}
	if err := json.Unmarshal(configJSON, cfg); err != nil {
		return nil, ErrInvalidConfig.Err(err)
	}
	if err := V().Struct(cfg); err != nil {
		return nil, ErrInvalidConfig.Err(err)
	}

	if !cfg.Model.IsValid() {
		return nil, ErrInvalidConfig.Msg("unknown pricing model: " + string(cfg.Model))
	}
	if cfg.Model.UsesTiers() {
		if err := pricing.ValidateTiers(cfg.Tiers); err != nil {
			return nil, ErrInvalidConfig.Err(err)
		}
	} else {
		if len(cfg.Tiers) > 0 {
			return nil, ErrInvalidConfig.Msg("tiers are only valid for tiered and volume models")
		}
		if cfg.Amount <= 0 {
			return nil, ErrInvalidConfig.Msg("amount is required for flat and per_unit models")
		}
	}

	return cfg, nil
}

// ParsePromotionConfig parses and validates a promotion config payload.
func ParsePromotionConfig(configJSON []byte) (*PromotionConfig, apperrors.Error) {
	if !gjson.ValidBytes(configJSON) {
		return nil, ErrInvalidConfig.Msg("config is not valid JSON")
	}
	kind := gjson.GetBytes(configJSON, "kind").String()
	if kind != billcommon.PromotionKind {
		return nil, ErrInvalidKind.Msg("expected kind " + billcommon.PromotionKind)
	}

	cfg := &PromotionConfig{}
	if err := json.Unmarshal(configJSON, cfg); err != nil {
		return nil, ErrInvalidConfig.Err(err)
	}
	if err := V().Struct(cfg); err != nil {
		return nil, ErrInvalidConfig.Err(err)
	}

	switch cfg.DiscountType {
	case DiscountPercent:
		if cfg.PercentOff <= 0 {
			return nil, ErrInvalidConfig.Msg("percentOff is required for percent discounts")
		}
	case DiscountFixedAmount:
		if cfg.AmountOff <= 0 {
			return nil, ErrInvalidConfig.Msg("amountOff is required for fixed_amount discounts")
		}
		if cfg.Currency == "" {
			return nil, ErrInvalidConfig.Msg("currency is required for fixed_amount discounts")
		}
	case DiscountFreeTrialDays:
		if cfg.TrialDays <= 0 {
			return nil, ErrInvalidConfig.Msg("trialDays is required for free_trial_days discounts")
		}
	default:
		return nil, ErrInvalidConfig.Msg("unknown discount type: " + string(cfg.DiscountType))
	}

	return cfg, nil
}

// ValidateConfig dispatches on entity type and validates the config without
// retaining the parsed form. Publish calls this before any state mutation.
func ValidateConfig(entityType billcommon.EntityType, configJSON []byte) apperrors.Error {
	switch entityType {
	case billcommon.EntityTypeOffer:
		_, err := ParseOfferConfig(configJSON)
		return err
	case billcommon.EntityTypePromotion:
		_, err := ParsePromotionConfig(configJSON)
		return err
	}
	return ErrInvalidEntityType.Msg("unknown entity type: " + string(entityType))
}
