// Package pricing implements the commission calculator.  It maps a
// listing base price to the amount the guest pays and the amount
// the host receives, given a resolved commission rule.  All math is
// done on shopspring decimals; results are rounded half-to-even at
// the currency's minor-unit precision, once at the end of each
// formula, so the drift between clientPays - clientCommission and
// the base price stays bounded to one minor unit.
package pricing

import (
    "errors"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/model"
)

// ErrInvalidCommissionRule is returned when a rule would drive the
// host receivable negative.  A misconfigured rule must surface to
// an admin, never be silently clamped.
var ErrInvalidCommissionRule = errors.New("invalid commission rule")

// ErrNegativeBasePrice is returned when a quote is requested for a
// negative base price.  Listings enforce base price >= 0, so this
// only happens on bad caller input.
var ErrNegativeBasePrice = errors.New("negative base price")

// Quote is the outcome of splitting a base price under a rule.
type Quote struct {
    BasePrice        decimal.Decimal `json:"base_price"`
    HostCommission   decimal.Decimal `json:"host_commission"`
    HostReceives     decimal.Decimal `json:"host_receives"`
    ClientCommission decimal.Decimal `json:"client_commission"`
    ClientPays       decimal.Decimal `json:"client_pays"`
}

// minorUnits maps ISO currency codes to their minor-unit digit
// count where it differs from the common two.  FX conversion is out
// of scope; only the rounding precision is needed here.
var minorUnits = map[string]int32{
    "JPY": 0,
    "KRW": 0,
    "VND": 0,
    "BHD": 3,
    "KWD": 3,
    "OMR": 3,
    "TND": 3,
}

// MinorUnits returns the number of minor-unit digits for a currency
// code, defaulting to 2.
func MinorUnits(currency string) int32 {
    if n, ok := minorUnits[strings.ToUpper(currency)]; ok {
        return n
    }
    return 2
}

// Compute splits basePrice under rule, rounding each output to
// precision digits with round-half-to-even.  Intermediate values
// stay unrounded.  It fails with ErrInvalidCommissionRule when the
// rounded host receivable is negative.  Pure function: no I/O,
// same inputs always give the same outputs.
func Compute(basePrice decimal.Decimal, rule model.CommissionRule, precision int32) (Quote, error) {
    if basePrice.IsNegative() {
        return Quote{}, ErrNegativeBasePrice
    }
    hostCommission := basePrice.Mul(rule.HostRate).Add(rule.HostFixed)
    clientCommission := basePrice.Mul(rule.ClientRate).Add(rule.ClientFixed)
    hostReceives := basePrice.Sub(hostCommission).RoundBank(precision)
    if hostReceives.IsNegative() {
        return Quote{}, ErrInvalidCommissionRule
    }
    return Quote{
        BasePrice:        basePrice,
        HostCommission:   hostCommission.RoundBank(precision),
        HostReceives:     hostReceives,
        ClientCommission: clientCommission.RoundBank(precision),
        ClientPays:       basePrice.Add(clientCommission).RoundBank(precision),
    }, nil
}

// ComputeFor is Compute with the precision resolved from a currency
// code.
func ComputeFor(basePrice decimal.Decimal, rule model.CommissionRule, currency string) (Quote, error) {
    return Compute(basePrice, rule, MinorUnits(currency))
}
