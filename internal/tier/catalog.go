// Package tier holds the static subscription tier catalog and the
// entitlement rules derived from tier rank.
package tier

import (
	"fmt"
	"strings"
)

// Tier is the canonical internal identifier of a subscription level.
type Tier string

const (
	Free         Tier = "free"
	Explorer     Tier = "explorer"
	Professional Tier = "professional"
)

// Unlimited marks a quota without an upper bound.
const Unlimited = -1

// Billing periods in days.
const (
	MonthlyDays = 30
	AnnualDays  = 365
)

// Info describes one tier of the catalog.
type Info struct {
	Tier                 Tier    `json:"tier"`
	Rank                 int     `json:"rank"`
	DisplayName          string  `json:"display_name"`
	WeeklyQuota          int     `json:"weekly_quota"`
	ManualPastEventQuota int     `json:"manual_past_event_quota"`
	MonthlyPrice         float64 `json:"monthly_price"`
	AnnualPrice          float64 `json:"annual_price"`
	AnnualSavings        float64 `json:"annual_savings"`
}

// UnknownTierError is returned for identifiers outside the catalog.
type UnknownTierError struct {
	Value string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("unknown subscription tier %q", e.Value)
}

// order is rank order, lowest first.
var order = []Tier{Free, Explorer, Professional}

var catalog = map[Tier]Info{
	Free: {
		Tier:                 Free,
		Rank:                 0,
		DisplayName:          "Free",
		WeeklyQuota:          5,
		ManualPastEventQuota: 2,
	},
	Explorer: {
		Tier:                 Explorer,
		Rank:                 1,
		DisplayName:          "Explorer",
		WeeklyQuota:          10,
		ManualPastEventQuota: Unlimited,
		MonthlyPrice:         99,
		AnnualPrice:          999,
		AnnualSavings:        99*12 - 999,
	},
	Professional: {
		Tier:                 Professional,
		Rank:                 2,
		DisplayName:          "Professional",
		WeeklyQuota:          15,
		ManualPastEventQuota: Unlimited,
		MonthlyPrice:         149,
		AnnualPrice:          1499,
		AnnualSavings:        149*12 - 1499,
	},
}

// legacy identifiers that still show up in stored rows and old clients
var aliases = map[string]Tier{
	"basic_99":         Explorer,
	"explorer_99":      Explorer,
	"premium_149":      Professional,
	"professional_199": Professional,
}

// Parse resolves a raw identifier (canonical or legacy alias) to a Tier.
func Parse(raw string) (Tier, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := catalog[Tier(v)]; ok {
		return Tier(v), nil
	}
	if t, ok := aliases[v]; ok {
		return t, nil
	}
	return "", &UnknownTierError{Value: raw}
}

// Lookup returns the catalog entry of t.
func Lookup(t Tier) (Info, error) {
	info, ok := catalog[t]
	if !ok {
		return Info{}, &UnknownTierError{Value: string(t)}
	}
	return info, nil
}

// MustLookup is Lookup for tiers that are known to be valid; unknown tiers
// resolve to the free entry.
func MustLookup(t Tier) Info {
	info, err := Lookup(t)
	if err != nil {
		return catalog[Free]
	}
	return info
}

// All returns the catalog in rank order.
func All() []Info {
	out := make([]Info, 0, len(order))
	for _, t := range order {
		out = append(out, catalog[t])
	}
	return out
}

// RankOf returns the rank of a raw identifier. Unknown identifiers rank as free.
func RankOf(raw string) int {
	t, err := Parse(raw)
	if err != nil {
		return 0
	}
	return catalog[t].Rank
}

func (t Tier) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// IsPaid reports whether the tier is sold (has a price).
func (t Tier) IsPaid() bool {
	switch t {
	case Explorer, Professional:
		return true
	case Free:
		return false
	default:
		return false
	}
}

func (t Tier) String() string {
	return string(t)
}

// BillingDays maps a paid amount to a billing period: anything at or above
// the annual price buys a year, everything else a month.
func BillingDays(t Tier, amountPaid float64) int {
	info, err := Lookup(t)
	if err != nil || info.AnnualPrice <= 0 {
		return MonthlyDays
	}
	if amountPaid >= info.AnnualPrice {
		return AnnualDays
	}
	return MonthlyDays
}

// PriceFor returns the price of t for a billing period ("monthly" or "annual").
func PriceFor(t Tier, period string) (float64, error) {
	info, err := Lookup(t)
	if err != nil {
		return 0, err
	}
	switch period {
	case "annual":
		return info.AnnualPrice, nil
	case "monthly", "":
		return info.MonthlyPrice, nil
	default:
		return 0, fmt.Errorf("unknown billing period %q", period)
	}
}
