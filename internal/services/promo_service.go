package services

import "strings"

// PromoDiscount describes what a redeemed code grants at checkout.
type PromoDiscount struct {
	Code       string `json:"code"`
	PercentOff int    `json:"percent_off"`
}

// PromoCodeValidator answers whether a promo code is valid and what percent
// discount it grants. The valid set is injected at construction; there is no
// package-level code list.
type PromoCodeValidator struct {
	codes map[string]int
}

// NewPromoCodeValidator builds a validator from a code->percent-off map.
// Codes are matched case-insensitively; percentages outside 1..100 are
// rejected up front so a bad config fails at startup, not at checkout.
func NewPromoCodeValidator(codes map[string]int) (*PromoCodeValidator, error) {
	normalized := make(map[string]int, len(codes))
	for code, pct := range codes {
		key := normalizePromoCode(code)
		if key == "" {
			return nil, NewInvalidError("promo code must not be empty")
		}
		if pct < 1 || pct > 100 {
			return nil, NewInvalidError("promo discount for " + key + " must be between 1 and 100 percent")
		}
		if _, dup := normalized[key]; dup {
			return nil, NewInvalidError("duplicate promo code " + key)
		}
		normalized[key] = pct
	}
	return &PromoCodeValidator{codes: normalized}, nil
}

// Validate looks up a code. Unknown or blank codes return a not_found error;
// the caller decides whether that is a hard failure or a "full price" path.
func (v *PromoCodeValidator) Validate(code string) (*PromoDiscount, error) {
	key := normalizePromoCode(code)
	if key == "" {
		return nil, NewInvalidError("promo code is required")
	}
	pct, ok := v.codes[key]
	if !ok {
		return nil, NewNotFoundError("promo code is not valid")
	}
	return &PromoDiscount{Code: key, PercentOff: pct}, nil
}

func normalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
