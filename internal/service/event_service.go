package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/cache"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/tier"
)

const publishedEventsKey = "events:published"

type EventService struct {
	eventRepo *repository.EventRepository
	userRepo  *repository.UserRepository
	tx        *repository.Transactor
	cache     *cache.Cache
	log       *zap.Logger
	now       func() time.Time
}

func NewEventService(
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	tx *repository.Transactor,
	cache *cache.Cache,
	log *zap.Logger,
) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
		tx:        tx,
		cache:     cache,
		log:       log.Named("event"),
		now:       time.Now,
	}
}

// ListVisible returns the published events the user's tier unlocks.
func (s *EventService) ListVisible(ctx context.Context, userID int64, q *dto.EventQuery) ([]*model.Event, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	opts := VisibilityOptions{Search: q.Search, When: q.When}
	if q.Tier != "" {
		if opts.Tier, err = parseTier("tier", q.Tier); err != nil {
			return nil, err
		}
	}

	events, err := s.published(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return FilterVisible(events, user.EffectiveTier(now), user.IsAdmin(), opts, now), nil
}

// published reads the published list through the cache. Cache failures
// fall back to the database.
func (s *EventService) published(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	hit, err := s.cache.Get(ctx, publishedEventsKey, &events)
	if err != nil {
		s.log.Warn("event cache read failed", zap.Error(err))
	}
	if hit {
		return events, nil
	}

	events, err = s.eventRepo.ListPublished()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, publishedEventsKey, events); err != nil {
		s.log.Warn("event cache write failed", zap.Error(err))
	}
	return events, nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, publishedEventsKey); err != nil {
		s.log.Warn("event cache invalidation failed", zap.Error(err))
	}
}

// Get returns one event. Drafts do not exist for non-admins; events above
// the viewer's tier are a permission error.
func (s *EventService) Get(userID, eventID int64) (*model.Event, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFoundOr(err, "event", eventID)
	}

	if user.IsAdmin() {
		return event, nil
	}
	if !event.IsPublished() {
		return nil, &NotFoundError{Resource: "event", ID: eventID}
	}
	if !tier.IsAccessible(event.RequiredTier, user.EffectiveTier(s.now())) {
		return nil, fmt.Errorf("%w: event requires the %s plan", ErrPermission, tier.MustLookup(normalizeTier(event.RequiredTier)).DisplayName)
	}
	return event, nil
}

func (s *EventService) Create(ctx context.Context, adminID int64, req *dto.CreateEventRequest) (*model.Event, error) {
	requiredTier, err := parseTier("required_tier", req.RequiredTier)
	if err != nil {
		return nil, err
	}
	status := model.EventStatus(req.Status)
	if status == "" {
		status = model.EventDraft
	}
	if !status.Valid() {
		return nil, invalid("status", "must be draft or published")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title", "is required")
	}
	if req.RegistrationDeadline != nil && req.RegistrationDeadline.After(req.EventDate) {
		return nil, invalid("registration_deadline", "must not be after event_date")
	}

	event := &model.Event{
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		RegistrationLink:     req.RegistrationLink,
		RequiredTier:         requiredTier,
		Status:               status,
		EventDate:            req.EventDate,
		RegistrationDeadline: req.RegistrationDeadline,
		Organizer:            req.Organizer,
		Category:             req.Category,
		Mode:                 model.EventMode(req.Mode),
		Location:             req.Location,
		ImageURL:             req.ImageURL,
		Tags:                 req.Tags,
		CreatedBy:            adminID,
	}
	if err := s.eventRepo.Create(event); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return event, nil
}

// Update applies a partial update. Publishing and unpublishing are status updates.
func (s *EventService) Update(ctx context.Context, eventID int64, req *dto.UpdateEventRequest) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFoundOr(err, "event", eventID)
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, invalid("title", "must not be empty")
		}
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.RegistrationLink != nil {
		fields["registration_link"] = *req.RegistrationLink
	}
	if req.RequiredTier != nil {
		t, err := parseTier("required_tier", *req.RequiredTier)
		if err != nil {
			return nil, err
		}
		fields["required_tier"] = t
	}
	if req.Status != nil {
		status := model.EventStatus(*req.Status)
		if !status.Valid() {
			return nil, invalid("status", "must be draft or published")
		}
		fields["status"] = status
	}
	eventDate := event.EventDate
	if req.EventDate != nil {
		eventDate = *req.EventDate
		fields["event_date"] = eventDate
		// a rescheduled event becomes claimable by the attendance job again
		if event.AttendanceMarkedAt != nil && eventDate.After(s.now()) {
			fields["attendance_marked_at"] = nil
		}
	}
	deadline := event.RegistrationDeadline
	if req.RegistrationDeadline != nil {
		deadline = req.RegistrationDeadline
		fields["registration_deadline"] = *req.RegistrationDeadline
	}
	if deadline != nil && deadline.After(eventDate) {
		return nil, invalid("registration_deadline", "must not be after event_date")
	}
	if req.Organizer != nil {
		fields["organizer"] = *req.Organizer
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Mode != nil {
		fields["mode"] = model.EventMode(*req.Mode)
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Tags != nil {
		fields["tags"] = model.StringArray(*req.Tags)
	}

	if len(fields) > 0 {
		if err := s.eventRepo.UpdateFields(eventID, fields); err != nil {
			return nil, err
		}
		s.invalidate(ctx)
	}

	return s.eventRepo.GetByID(eventID)
}

// Delete removes an event together with its registrations.
func (s *EventService) Delete(ctx context.Context, eventID int64) error {
	if _, err := s.eventRepo.GetByID(eventID); err != nil {
		return notFoundOr(err, "event", eventID)
	}

	err := s.tx.WithinTx(func(repos *repository.Repos) error {
		if err := repos.Registrations.DeleteByEvent(eventID); err != nil {
			return err
		}
		return repos.Events.Delete(eventID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// ListAll is the admin listing: every status, newest first.
func (s *EventService) ListAll(q *dto.AdminEventQuery) ([]*model.Event, int64, error) {
	events, total, err := s.eventRepo.ListAll(q.Page, q.PageSize, q.Status, q.Search)
	if err != nil {
		return nil, 0, err
	}
	SortForAdmin(events)
	return events, total, nil
}
