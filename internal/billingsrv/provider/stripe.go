package provider

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	stripecoupon "github.com/stripe/stripe-go/v82/coupon"
	stripeprice "github.com/stripe/stripe-go/v82/price"
	stripeproduct "github.com/stripe/stripe-go/v82/product"
	stripepromotioncode "github.com/stripe/stripe-go/v82/promotioncode"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/catalogmanager"
	"github.com/offerd/offerd/internal/billingsrv/config"
	"github.com/offerd/offerd/internal/billingsrv/pricing"
	"github.com/offerd/offerd/internal/common/apperrors"
)

// StripeGateway implements catalogmanager.BillingGateway against the Stripe
// API. Offers map to a product with one price per published version;
// promotions map to a coupon with one promotion code per published version.
// The SDK calls are held in function fields so tests can substitute them.
type StripeGateway struct {
	cfg config.ProviderConfig

	createProduct   func(params *stripe.ProductParams) (*stripe.Product, error)
	updateProduct   func(id string, params *stripe.ProductParams) (*stripe.Product, error)
	createPrice     func(params *stripe.PriceParams) (*stripe.Price, error)
	createCoupon    func(params *stripe.CouponParams) (*stripe.Coupon, error)
	deleteCoupon    func(id string, params *stripe.CouponParams) (*stripe.Coupon, error)
	createPromoCode func(params *stripe.PromotionCodeParams) (*stripe.PromotionCode, error)
	findPromoCode   func(code string) (*stripe.PromotionCode, error)
}

var _ catalogmanager.BillingGateway = (*StripeGateway)(nil)

// NewStripeGateway creates a gateway using the given provider config. The
// API key is installed process-wide, which is how the Stripe SDK expects it.
func NewStripeGateway(cfg config.ProviderConfig) (*StripeGateway, apperrors.Error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured.Msg("stripe API key is not set")
	}
	stripe.Key = strings.TrimSpace(cfg.APIKey)

	return &StripeGateway{
		cfg:             cfg,
		createProduct:   stripeproduct.New,
		updateProduct:   stripeproduct.Update,
		createPrice:     stripeprice.New,
		createCoupon:    stripecoupon.New,
		deleteCoupon:    stripecoupon.Del,
		createPromoCode: stripepromotioncode.New,
		findPromoCode:   findPromoCodeByCode,
	}, nil
}

func findPromoCodeByCode(code string) (*stripe.PromotionCode, error) {
	iter := stripepromotioncode.List(&stripe.PromotionCodeListParams{
		Code: stripe.String(code),
	})
	for iter.Next() {
		return iter.PromotionCode(), nil
	}
	return nil, iter.Err()
}

// isRetriable reports whether a Stripe call failure is worth retrying.
// Remote rejections are final; rate limits and server-side failures are not.
func isRetriable(err error) bool {
	if stripeErr, ok := err.(*stripe.Error); ok {
		return stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500
	}
	// Transport-level failures have no *stripe.Error wrapper.
	return true
}

func (g *StripeGateway) call(ctx context.Context, op string, fn func() error) apperrors.Error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GetCallTimeoutOrDefault())
	defer cancel()

	err := retry.Do(func() error {
		if err := fn(); err != nil {
			if !isRetriable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		}
		return nil
	}, retry.Context(ctx), retry.Attempts(uint(g.cfg.MaxRetries)), retry.Delay(500*time.Millisecond), retry.DelayType(retry.BackOffDelay), retry.LastErrorOnly(true))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("op", op).Msg("stripe call failed")
		return ErrSyncFailed.Msg(op + " failed").Err(err)
	}
	return nil
}

// SyncOffer mirrors an offer version to Stripe. The product is reused when
// existingParentID is set; a fresh price is always minted because Stripe
// prices are immutable.
func (g *StripeGateway) SyncOffer(ctx context.Context, name string, cfg *catalogmanager.OfferConfig, existingParentID string) (*catalogmanager.SyncResult, apperrors.Error) {
	productID := existingParentID
	if productID == "" {
		var product *stripe.Product
		err := g.call(ctx, "product create", func() error {
			var errdb error
			product, errdb = g.createProduct(&stripe.ProductParams{
				Name: stripe.String(name),
			})
			return errdb
		})
		if err != nil {
			return nil, err
		}
		productID = product.ID
	}

	params := &stripe.PriceParams{
		Product:  stripe.String(productID),
		Currency: stripe.String(strings.ToLower(cfg.Currency)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(cfg.Interval),
		},
	}
	switch cfg.Model {
	case pricing.ModelFlat, pricing.ModelPerUnit:
		params.BillingScheme = stripe.String(string(stripe.PriceBillingSchemePerUnit))
		params.UnitAmount = stripe.Int64(cfg.Amount)
	case pricing.ModelTiered, pricing.ModelVolume:
		params.BillingScheme = stripe.String(string(stripe.PriceBillingSchemeTiered))
		if cfg.Model == pricing.ModelTiered {
			params.TiersMode = stripe.String(string(stripe.PriceTiersModeGraduated))
		} else {
			params.TiersMode = stripe.String(string(stripe.PriceTiersModeVolume))
		}
		params.Tiers = toStripeTiers(cfg.Tiers)
	}

	var price *stripe.Price
	err := g.call(ctx, "price create", func() error {
		var errdb error
		price, errdb = g.createPrice(params)
		return errdb
	})
	if err != nil {
		return nil, err
	}

	return &catalogmanager.SyncResult{
		ParentExternalID:  productID,
		VersionExternalID: price.ID,
	}, nil
}

func toStripeTiers(tiers []pricing.Tier) []*stripe.PriceTierParams {
	out := make([]*stripe.PriceTierParams, 0, len(tiers))
	for _, tier := range tiers {
		p := &stripe.PriceTierParams{
			UnitAmount: stripe.Int64(tier.UnitAmount),
		}
		if tier.FlatAmount > 0 {
			p.FlatAmount = stripe.Int64(tier.FlatAmount)
		}
		if tier.UpTo != nil {
			p.UpTo = stripe.Int64(*tier.UpTo)
		} else {
			p.UpToInf = stripe.Bool(true)
		}
		out = append(out, p)
	}
	return out
}

// SyncPromotion mirrors a promotion version to Stripe. The coupon is the
// parent resource and is reused when existingParentID is set; the promotion
// code is minted per version. A code collision is resolved by looking up
// and reusing the existing remote code.
func (g *StripeGateway) SyncPromotion(ctx context.Context, name string, cfg *catalogmanager.PromotionConfig, existingParentID string) (*catalogmanager.SyncResult, apperrors.Error) {
	couponID := existingParentID
	if couponID == "" {
		params := &stripe.CouponParams{
			Name:     stripe.String(name),
			Duration: stripe.String(string(stripe.CouponDurationOnce)),
		}
		switch cfg.DiscountType {
		case catalogmanager.DiscountPercent:
			params.PercentOff = stripe.Float64(float64(cfg.PercentOff))
		case catalogmanager.DiscountFixedAmount:
			params.AmountOff = stripe.Int64(cfg.AmountOff)
			params.Currency = stripe.String(strings.ToLower(cfg.Currency))
		case catalogmanager.DiscountFreeTrialDays:
			// Stripe has no coupon-level trial; a full first-period
			// discount with the trial length in metadata is the closest
			// remote representation.
			params.PercentOff = stripe.Float64(100)
			params.AddMetadata("trial_days", strconv.FormatInt(cfg.TrialDays, 10))
		}
		if cfg.MaxRedeems > 0 {
			params.MaxRedemptions = stripe.Int64(cfg.MaxRedeems)
		}

		var coupon *stripe.Coupon
		err := g.call(ctx, "coupon create", func() error {
			var errdb error
			coupon, errdb = g.createCoupon(params)
			return errdb
		})
		if err != nil {
			return nil, err
		}
		couponID = coupon.ID
	}

	code := cfg.Code
	if code == "" {
		code = promoCodeFromName(name)
	}

	promoParams := &stripe.PromotionCodeParams{
		Coupon: stripe.String(couponID),
		Code:   stripe.String(code),
	}
	if cfg.ExpiresAt != nil {
		promoParams.ExpiresAt = stripe.Int64(cfg.ExpiresAt.Unix())
	}

	var promo *stripe.PromotionCode
	err := g.call(ctx, "promotion code create", func() error {
		var errdb error
		promo, errdb = g.createPromoCode(promoParams)
		return errdb
	})
	if err != nil {
		// The code may already exist remotely from an earlier attempt or
		// an operator action. Find and reuse it rather than failing the
		// whole sync.
		existing, findErr := g.findPromoCode(code)
		if findErr != nil || existing == nil {
			return nil, err
		}
		log.Ctx(ctx).Info().Str("code", code).Str("promotion_code_id", existing.ID).Msg("reusing existing promotion code")
		promo = existing
	}

	return &catalogmanager.SyncResult{
		ParentExternalID:  couponID,
		VersionExternalID: promo.ID,
	}, nil
}

// promoCodeFromName derives a promotion code from the entity name: upper
// cased with everything outside [A-Z0-9] dropped.
func promoCodeFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeactivateParent disables the remote parent resource: products are marked
// inactive, coupons are deleted. Stripe keeps redeemed coupon history even
// after deletion.
func (g *StripeGateway) DeactivateParent(ctx context.Context, entityType billcommon.EntityType, parentExternalID string) apperrors.Error {
	var err apperrors.Error
	switch entityType {
	case billcommon.EntityTypeOffer:
		err = g.call(ctx, "product deactivate", func() error {
			_, errdb := g.updateProduct(parentExternalID, &stripe.ProductParams{
				Active: stripe.Bool(false),
			})
			return errdb
		})
	case billcommon.EntityTypePromotion:
		err = g.call(ctx, "coupon delete", func() error {
			_, errdb := g.deleteCoupon(parentExternalID, nil)
			return errdb
		})
	default:
		return ErrDeactivationFailed.Msg("unknown entity type: " + string(entityType))
	}
	if err != nil {
		return ErrDeactivationFailed.Err(err)
	}
	return nil
}
