package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/tier"
)

func ev(id int64, required tier.Tier, status model.EventStatus, date time.Time) *model.Event {
	return &model.Event{
		ID:           id,
		Title:        "Event",
		RequiredTier: required,
		Status:       status,
		EventDate:    date,
	}
}

func ids(events []*model.Event) []int64 {
	out := make([]int64, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestFilterVisible_ByTier(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []*model.Event{
		ev(1, tier.Free, model.EventPublished, now.Add(72*time.Hour)),
		ev(2, tier.Explorer, model.EventPublished, now.Add(48*time.Hour)),
		ev(3, tier.Professional, model.EventPublished, now.Add(24*time.Hour)),
	}

	assert.Equal(t, []int64{1}, ids(FilterVisible(events, tier.Free, false, VisibilityOptions{}, now)))
	assert.Equal(t, []int64{2, 1}, ids(FilterVisible(events, tier.Explorer, false, VisibilityOptions{}, now)))
	assert.Equal(t, []int64{3, 2, 1}, ids(FilterVisible(events, tier.Professional, false, VisibilityOptions{}, now)))
}

func TestFilterVisible_MonotonicInRank(t *testing.T) {
	now := time.Now()
	var events []*model.Event
	for i, required := range []tier.Tier{tier.Free, tier.Explorer, tier.Professional, "basic_99", "mystery"} {
		events = append(events, ev(int64(i+1), required, model.EventPublished, now.Add(time.Duration(i)*time.Hour)))
	}

	prev := map[int64]bool{}
	for _, info := range tier.All() {
		visible := FilterVisible(events, info.Tier, false, VisibilityOptions{}, now)
		current := map[int64]bool{}
		for _, e := range visible {
			current[e.ID] = true
		}
		for id := range prev {
			assert.True(t, current[id], "%s lost event %d", info.Tier, id)
		}
		prev = current
	}
}

func TestFilterVisible_HidesDraftsFromUsers(t *testing.T) {
	now := time.Now()
	events := []*model.Event{
		ev(1, tier.Free, model.EventDraft, now.Add(time.Hour)),
		ev(2, tier.Free, model.EventPublished, now.Add(time.Hour)),
	}

	assert.Equal(t, []int64{2}, ids(FilterVisible(events, tier.Professional, false, VisibilityOptions{}, now)))
	assert.Len(t, FilterVisible(events, tier.Free, true, VisibilityOptions{}, now), 2)
}

func TestFilterVisible_UnknownRequiredTierIsFree(t *testing.T) {
	now := time.Now()
	events := []*model.Event{ev(1, "legacy_tier", model.EventPublished, now.Add(time.Hour))}

	assert.Len(t, FilterVisible(events, tier.Free, false, VisibilityOptions{}, now), 1)
}

func TestFilterVisible_Options(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	past := ev(1, tier.Free, model.EventPublished, now.Add(-24*time.Hour))
	past.Title = "Go Meetup"
	upcoming := ev(2, tier.Explorer, model.EventPublished, now.Add(24*time.Hour))
	upcoming.Organizer = "Cloud Guild"
	events := []*model.Event{upcoming, past}

	assert.Equal(t, []int64{2}, ids(FilterVisible(events, tier.Explorer, false, VisibilityOptions{When: WhenUpcoming}, now)))
	assert.Equal(t, []int64{1}, ids(FilterVisible(events, tier.Explorer, false, VisibilityOptions{When: WhenPast}, now)))
	assert.Equal(t, []int64{1}, ids(FilterVisible(events, tier.Explorer, false, VisibilityOptions{Search: "  meetup"}, now)))
	assert.Equal(t, []int64{2}, ids(FilterVisible(events, tier.Explorer, false, VisibilityOptions{Search: "GUILD"}, now)))
	assert.Equal(t, []int64{2}, ids(FilterVisible(events, tier.Explorer, false, VisibilityOptions{Tier: tier.Explorer}, now)))
	assert.Empty(t, FilterVisible(events, tier.Free, false, VisibilityOptions{Tier: tier.Explorer}, now))
}

func TestFilterVisible_DoesNotModifyInput(t *testing.T) {
	now := time.Now()
	events := []*model.Event{
		ev(1, tier.Free, model.EventPublished, now.Add(2*time.Hour)),
		ev(2, tier.Free, model.EventPublished, now.Add(time.Hour)),
	}

	FilterVisible(events, tier.Free, false, VisibilityOptions{}, now)
	assert.Equal(t, []int64{1, 2}, ids(events))
}

func TestSortForAdmin(t *testing.T) {
	base := time.Now()
	a := &model.Event{ID: 1, CreatedAt: base.Add(-2 * time.Hour)}
	b := &model.Event{ID: 2, CreatedAt: base}
	c := &model.Event{ID: 3, CreatedAt: base.Add(-time.Hour)}
	events := []*model.Event{a, b, c}

	SortForAdmin(events)
	assert.Equal(t, []int64{2, 3, 1}, ids(events))
}
