package catalogmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerd/offerd/internal/billingsrv/pricing"
	"github.com/offerd/offerd/internal/common/apperrors"
)

func TestParseOfferConfig(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		wantErr  apperrors.Error
	}{
		{
			name:     "valid per_unit offer",
			jsonData: perUnitOfferConfig,
		},
		{
			name: "valid tiered offer",
			jsonData: `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "month",
	"model": "tiered",
	"tiers": [
		{"upTo": 10, "unitAmount": 1000},
		{"unitAmount": 500}
	]
}`,
		},
		{
			name: "wrong kind",
			jsonData: `
{
	"kind": "Promotion",
	"currency": "USD",
	"interval": "month",
	"model": "flat",
	"amount": 900
}`,
			wantErr: ErrInvalidKind,
		},
		{
			name: "unknown model",
			jsonData: `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "month",
	"model": "metered",
	"amount": 900
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "bad currency",
			jsonData: `
{
	"kind": "Offer",
	"currency": "DOLLARS",
	"interval": "month",
	"model": "flat",
	"amount": 900
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "bad interval",
			jsonData: `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "fortnight",
	"model": "flat",
	"amount": 900
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "flat without amount",
			jsonData: `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "month",
	"model": "flat"
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "tiers on per_unit model",
			jsonData: `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "month",
	"model": "per_unit",
	"amount": 500,
	"tiers": [{"unitAmount": 500}]
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "tiered without unbounded final tier",
			jsonData: `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "month",
	"model": "tiered",
	"tiers": [{"upTo": 10, "unitAmount": 1000}]
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name:     "not JSON",
			jsonData: "{not json",
			wantErr:  ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseOfferConfig([]byte(tt.jsonData))
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				assert.True(t, cfg.Model.IsValid())
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseOfferConfigTierShape(t *testing.T) {
	cfg, err := ParseOfferConfig([]byte(`
{
	"kind": "Offer",
	"currency": "EUR",
	"interval": "year",
	"model": "volume",
	"tiers": [
		{"upTo": 100, "unitAmount": 90, "flatAmount": 1000},
		{"unitAmount": 70}
	]
}`))
	require.NoError(t, err)
	require.Len(t, cfg.Tiers, 2)
	require.NotNil(t, cfg.Tiers[0].UpTo)
	assert.Equal(t, int64(100), *cfg.Tiers[0].UpTo)
	assert.Equal(t, int64(1000), cfg.Tiers[0].FlatAmount)
	assert.Nil(t, cfg.Tiers[1].UpTo)
	assert.Equal(t, pricing.ModelVolume, cfg.Model)
}

func TestParsePromotionConfig(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		wantErr  apperrors.Error
	}{
		{
			name:     "valid percent promotion",
			jsonData: percentPromotionConfig,
		},
		{
			name: "valid fixed amount promotion",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "fixed_amount",
	"amountOff": 500,
	"currency": "USD",
	"maxRedeems": 100
}`,
		},
		{
			name: "valid promotion with expiry",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "percent",
	"percentOff": 10,
	"expiresAt": "2026-12-31T00:00:00Z"
}`,
		},
		{
			name: "valid trial promotion without code",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "free_trial_days",
	"trialDays": 14
}`,
		},
		{
			name: "wrong kind",
			jsonData: `
{
	"kind": "Offer",
	"discountType": "percent",
	"percentOff": 20
}`,
			wantErr: ErrInvalidKind,
		},
		{
			name: "percent over 100",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "percent",
	"percentOff": 150
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "percent without percentOff",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "percent"
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "fixed amount without currency",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "fixed_amount",
	"amountOff": 500
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "trial without days",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "free_trial_days"
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "unknown discount type",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "bogo"
}`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "code with punctuation",
			jsonData: `
{
	"kind": "Promotion",
	"discountType": "percent",
	"percentOff": 20,
	"code": "SAVE-20!"
}`,
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParsePromotionConfig([]byte(tt.jsonData))
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.NotNil(t, cfg)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigDispatch(t *testing.T) {
	assert.NoError(t, ValidateConfig("offer", []byte(perUnitOfferConfig)))
	assert.NoError(t, ValidateConfig("promotion", []byte(percentPromotionConfig)))
	assert.Error(t, ValidateConfig("offer", []byte(percentPromotionConfig)))
	assert.Error(t, ValidateConfig("bundle", []byte(perUnitOfferConfig)))
}
