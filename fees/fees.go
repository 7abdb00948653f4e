// Package fees derives the annual membership fee from the signup state.
// All fees are EUR; foreign premium figures are normalized with fixed
// multipliers before band lookup.
package fees

import (
	"github.com/MGA-Alliance/member-registration/signup"
	"github.com/Rhymond/go-money"
)

const (
	// individualFeeCents is the flat fee for individual memberships.
	individualFeeCents int64 = 50000
	// corporateFlatFeeCents applies to corporate members that are not
	// MGAs (carriers, providers). Their GWP is ignored.
	corporateFlatFeeCents int64 = 90000
	// adminTestFeeCents is the nominal charge used for end-to-end payment
	// testing.
	adminTestFeeCents int64 = 1
)

// eurMultipliers converts a premium figure to EUR before band lookup.
var eurMultipliers = map[signup.Currency]float64{
	signup.CURRENCY_EUR: 1.0,
	signup.CURRENCY_GBP: 1.17,
	signup.CURRENCY_USD: 0.92,
}

type premiumBand struct {
	// UpTo is the exclusive EUR upper bound of the band. The last band is
	// open-ended.
	UpTo     int64
	FeeCents int64
}

// premiumBands must stay in strictly ascending order of both bound and fee.
var premiumBands = []premiumBand{
	{UpTo: 10_000_000, FeeCents: 90000},
	{UpTo: 20_000_000, FeeCents: 110000},
	{UpTo: 50_000_000, FeeCents: 130000},
	{UpTo: 100_000_000, FeeCents: 150000},
	{UpTo: 500_000_000, FeeCents: 175000},
	{UpTo: 0, FeeCents: 200000},
}

// Calculate returns the undiscounted annual membership fee for the state as
// it stands right now. Callers must not cache the result across edits; the
// completion flow recomputes it at submission time.
func Calculate(s *signup.State) *money.Money {
	if s.IsAdminTest {
		return money.New(adminTestFeeCents, money.EUR)
	}

	if s.MembershipType == signup.MEMBERSHIP_INDIVIDUAL {
		return money.New(individualFeeCents, money.EUR)
	}

	if s.OrganizationType == signup.ORG_TYPE_MGA {
		return money.New(mgaFeeCents(s), money.EUR)
	}

	return money.New(corporateFlatFeeCents, money.EUR)
}

// Discounted applies the association discount: corporate members belonging
// to another association pay 80% of the base fee. Rounding stays inside
// go-money's allocation so no cent is lost or invented.
func Discounted(s *signup.State) *money.Money {
	fee := Calculate(s)

	if s.MembershipType != signup.MEMBERSHIP_CORPORATE {
		return fee
	}
	if s.HasOtherAssociations == nil || !*s.HasOtherAssociations {
		return fee
	}

	parts, err := fee.Allocate(80, 20)
	if err != nil {
		return fee
	}
	return parts[0]
}

func mgaFeeCents(s *signup.State) int64 {
	amount, ok := s.GWPAmount()
	if !ok {
		// Absent or non-numeric premiums fall back to the lowest band.
		return premiumBands[0].FeeCents
	}

	multiplier, ok := eurMultipliers[s.GWPCurrency]
	if !ok {
		multiplier = 1.0
	}
	eurAmount := int64(float64(amount) * multiplier)

	for _, band := range premiumBands[:len(premiumBands)-1] {
		if eurAmount < band.UpTo {
			return band.FeeCents
		}
	}
	return premiumBands[len(premiumBands)-1].FeeCents
}
