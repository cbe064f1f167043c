package tier

// IsAccessible reports whether a subscriber of userTier may see and register
// for an event that requires eventTier. Unknown tiers rank as free on both sides.
func IsAccessible(eventTier, userTier Tier) bool {
	return RankOf(string(userTier)) >= RankOf(string(eventTier))
}

// AllowedTiers returns every tier whose rank does not exceed the rank of
// userTier, lowest first. The result always contains Free.
func AllowedTiers(userTier Tier) []Tier {
	rank := RankOf(string(userTier))
	allowed := make([]Tier, 0, len(order))
	for _, t := range order {
		if catalog[t].Rank <= rank {
			allowed = append(allowed, t)
		}
	}
	return allowed
}

// AllowedSet is AllowedTiers as a set.
func AllowedSet(userTier Tier) map[Tier]struct{} {
	set := make(map[Tier]struct{}, len(order))
	for _, t := range AllowedTiers(userTier) {
		set[t] = struct{}{}
	}
	return set
}

// AllowedStrings is AllowedTiers as plain strings, for SQL IN clauses.
func AllowedStrings(userTier Tier) []string {
	tiers := AllowedTiers(userTier)
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[i] = string(t)
	}
	return out
}
