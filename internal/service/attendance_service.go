package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/tier"
)

const attendanceBatchSize = 100

// weeklyWindow is the rolling window for the informational weekly quota.
const weeklyWindow = 7 * 24 * time.Hour

type AutoAttendanceResult struct {
	Events  int   `json:"events"`
	Marked  int64 `json:"marked"`
	Skipped int   `json:"skipped"`
	Failed  int   `json:"failed"`
}

type AttendanceService struct {
	eventRepo *repository.EventRepository
	regRepo   *repository.RegistrationRepository
	pastRepo  *repository.PastEventRepository
	userRepo  *repository.UserRepository
	tx        *repository.Transactor
	log       *zap.Logger
	now       func() time.Time
}

func NewAttendanceService(
	eventRepo *repository.EventRepository,
	regRepo *repository.RegistrationRepository,
	pastRepo *repository.PastEventRepository,
	userRepo *repository.UserRepository,
	tx *repository.Transactor,
	log *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		pastRepo:  pastRepo,
		userRepo:  userRepo,
		tx:        tx,
		log:       log.Named("attendance"),
		now:       time.Now,
	}
}

// Register records that the user signed up for an event. Repeating the call
// returns the existing registration unchanged.
func (s *AttendanceService) Register(userID, eventID int64) (*model.Registration, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFoundOr(err, "event", eventID)
	}
	if !event.IsPublished() {
		return nil, &NotFoundError{Resource: "event", ID: eventID}
	}

	now := s.now()
	if !tier.IsAccessible(event.RequiredTier, user.EffectiveTier(now)) {
		return nil, fmt.Errorf("%w: event requires a higher plan", ErrPermission)
	}
	if event.RegistrationClosed(now) {
		return nil, invalid("event", "registration is closed for this event")
	}

	if _, err := s.regRepo.InsertIgnore(&model.Registration{
		UserID:  userID,
		EventID: eventID,
		Status:  model.AttendanceRegistered,
		Source:  model.SourceSelf,
	}); err != nil {
		return nil, err
	}
	return s.regRepo.Get(userID, eventID)
}

// ConfirmAttendance stores the user's own answer to "did you attend?".
// It creates the registration if needed and never creates a second one.
func (s *AttendanceService) ConfirmAttendance(userID, eventID int64, attended bool) (*model.Registration, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFoundOr(err, "event", eventID)
	}
	if !event.IsPublished() {
		return nil, &NotFoundError{Resource: "event", ID: eventID}
	}

	status := model.AttendanceNotAttended
	if attended {
		status = model.AttendanceAttended
	}

	var reg *model.Registration
	err = s.tx.WithinTx(func(repos *repository.Repos) error {
		if _, err := repos.Registrations.InsertIgnore(&model.Registration{
			UserID:  userID,
			EventID: eventID,
			Status:  model.AttendanceRegistered,
			Source:  model.SourceSelf,
		}); err != nil {
			return err
		}
		if err := repos.Registrations.SetStatus(userID, eventID, status, model.SourceSelf, s.now()); err != nil {
			return err
		}
		reg, err = repos.Registrations.Get(userID, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// AutoMarkAttendance marks still-registered users of every past event as
// attended. Each event is claimed with a conditional write first, so an
// event is processed at most once across overlapping runs.
func (s *AttendanceService) AutoMarkAttendance(ctx context.Context) (*AutoAttendanceResult, error) {
	now := s.now()
	result := &AutoAttendanceResult{}
	var afterID int64

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		events, err := s.eventRepo.ListDueForAttendance(now, afterID, attendanceBatchSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			break
		}

		for _, e := range events {
			afterID = e.ID

			var claimed bool
			var marked int64
			err := s.tx.WithinTx(func(repos *repository.Repos) error {
				var err error
				claimed, err = repos.Events.ClaimForAttendance(e.ID, now)
				if err != nil || !claimed {
					return err
				}
				marked, err = repos.Registrations.MarkRegisteredAttended(e.ID, now)
				return err
			})
			switch {
			case err != nil:
				result.Failed++
				s.log.Error("auto attendance failed", zap.Int64("event_id", e.ID), zap.Error(err))
			case !claimed:
				result.Skipped++
			default:
				result.Events++
				result.Marked += marked
			}
		}

		if len(events) < attendanceBatchSize {
			break
		}
	}

	if result.Events > 0 || result.Failed > 0 {
		s.log.Info("auto attendance finished",
			zap.Int("events", result.Events),
			zap.Int64("marked", result.Marked),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// Stats computes the profile counters from the registration rows.
func (s *AttendanceService) Stats(userID int64) (*dto.UserStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	counts, err := s.regRepo.CountByStatus(userID)
	if err != nil {
		return nil, err
	}
	manual, err := s.pastRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	weekly, err := s.regRepo.CountSince(userID, now.Add(-weeklyWindow))
	if err != nil {
		return nil, err
	}

	info := tier.MustLookup(user.EffectiveTier(now))
	stats := &dto.UserStats{
		Tier:                 string(info.Tier),
		Attended:             counts[model.AttendanceAttended],
		NotAttended:          counts[model.AttendanceNotAttended],
		Pending:              counts[model.AttendanceRegistered],
		ManualPastEvents:     manual,
		ManualPastEventQuota: info.ManualPastEventQuota,
		WeeklyRegistrations:  weekly,
		WeeklyQuota:          info.WeeklyQuota,
	}
	stats.TotalRegistrations = stats.Attended + stats.NotAttended + stats.Pending
	return stats, nil
}

// AddPastEvent lets a user record an attended event that is not in the
// catalog, up to their tier's manual past-event quota.
func (s *AttendanceService) AddPastEvent(userID int64, req *dto.AddPastEventRequest) (*model.PastEvent, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	now := s.now()
	if req.EventDate.After(now) {
		return nil, invalid("event_date", "must be in the past")
	}

	info := tier.MustLookup(user.EffectiveTier(now))
	if info.ManualPastEventQuota != tier.Unlimited {
		count, err := s.pastRepo.CountByUserID(userID)
		if err != nil {
			return nil, err
		}
		if count >= int64(info.ManualPastEventQuota) {
			return nil, fmt.Errorf("%w: the %s plan allows %d manual past events", ErrQuotaExceeded, info.DisplayName, info.ManualPastEventQuota)
		}
	}

	pe := &model.PastEvent{
		UserID:    userID,
		Title:     title,
		Organizer: req.Organizer,
		EventDate: req.EventDate,
		Notes:     req.Notes,
	}
	if err := s.pastRepo.Create(pe); err != nil {
		return nil, err
	}
	return pe, nil
}

func (s *AttendanceService) ListPastEvents(userID int64) ([]*model.PastEvent, error) {
	return s.pastRepo.ListByUserID(userID)
}

// ListMine returns the user's registrations with their events.
func (s *AttendanceService) ListMine(userID int64) ([]*model.Registration, error) {
	return s.regRepo.ListByUserID(userID)
}
