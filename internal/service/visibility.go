package service

import (
	"sort"
	"strings"
	"time"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/tier"
)

// Time windows for VisibilityOptions.When.
const (
	WhenUpcoming = "upcoming"
	WhenPast     = "past"
)

type VisibilityOptions struct {
	// Search is matched case-insensitively against title, description,
	// organizer and category.
	Search string
	// Tier narrows the result to events requiring exactly this tier.
	Tier tier.Tier
	When string
}

// FilterVisible returns the events a viewer may see, soonest first. It does
// not modify events.
func FilterVisible(events []*model.Event, viewerTier tier.Tier, isAdmin bool, opts VisibilityOptions, now time.Time) []*model.Event {
	allowed := tier.AllowedSet(viewerTier)
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	out := make([]*model.Event, 0, len(events))
	for _, e := range events {
		if !isAdmin && !e.IsPublished() {
			continue
		}
		if _, ok := allowed[normalizeTier(e.RequiredTier)]; !ok {
			continue
		}
		if opts.Tier != "" && normalizeTier(e.RequiredTier) != opts.Tier {
			continue
		}
		switch opts.When {
		case WhenUpcoming:
			if e.EventDate.Before(now) {
				continue
			}
		case WhenPast:
			if !e.EventDate.Before(now) {
				continue
			}
		}
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EventDate.Before(out[j].EventDate)
	})
	return out
}

// SortForAdmin orders events newest-created first, in place.
func SortForAdmin(events []*model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}

// normalizeTier resolves aliases; an unknown required tier is treated as free.
func normalizeTier(t tier.Tier) tier.Tier {
	parsed, err := tier.Parse(string(t))
	if err != nil {
		return tier.Free
	}
	return parsed
}

func matchesSearch(e *model.Event, needle string) bool {
	for _, field := range []string{e.Title, e.Description, e.Organizer, e.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
