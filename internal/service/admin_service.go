package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/tier"
)

type AdminService struct {
	userRepo    *repository.UserRepository
	paymentRepo *repository.PaymentRepository
	eventRepo   *repository.EventRepository
	subs        *SubscriptionService
	log         *zap.Logger
	now         func() time.Time
}

func NewAdminService(
	userRepo *repository.UserRepository,
	paymentRepo *repository.PaymentRepository,
	eventRepo *repository.EventRepository,
	subs *SubscriptionService,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		subs:        subs,
		log:         log.Named("admin"),
		now:         time.Now,
	}
}

func (s *AdminService) ListUsers(q *dto.UserListQuery) ([]*model.User, int64, error) {
	tierFilter := ""
	if q.Tier != "" {
		t, err := parseTier("tier", q.Tier)
		if err != nil {
			return nil, 0, err
		}
		tierFilter = string(t)
	}
	return s.userRepo.List(q.Page, q.PageSize, q.Search, tierFilter)
}

// SetUserTier is the admin override; it goes through the same path as a
// payment approval.
func (s *AdminService) SetUserTier(adminID, userID int64, req *dto.SetTierRequest) (*model.User, error) {
	return s.subs.Upgrade(userID, req.Tier, req.DurationDays, &adminID)
}

func (s *AdminService) SetRole(adminID, userID int64, rawRole string) (*model.User, error) {
	role := model.Role(rawRole)
	if !role.Valid() {
		return nil, invalid("role", "must be user or admin")
	}
	if adminID == userID && role != model.RoleAdmin {
		return nil, invalid("role", "admins cannot demote themselves")
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}
	s.log.Info("role changed", zap.Int64("admin_id", adminID), zap.Int64("user_id", userID), zap.String("role", rawRole))
	return s.userRepo.GetByID(userID)
}

func (s *AdminService) SetAutoDowngrade(userID int64, enabled bool) error {
	return s.subs.SetAutoDowngrade(userID, enabled)
}

// Stats are the dashboard counters.
func (s *AdminService) Stats() (*dto.DashboardStats, error) {
	byTier, err := s.userRepo.CountByTier(s.now())
	if err != nil {
		return nil, err
	}
	pending, err := s.paymentRepo.CountByStatus(model.PaymentPending)
	if err != nil {
		return nil, err
	}
	published, err := s.eventRepo.CountByStatus(model.EventPublished)
	if err != nil {
		return nil, err
	}
	drafts, err := s.eventRepo.CountByStatus(model.EventDraft)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStats{
		UsersByTier:     make(map[string]int64),
		PendingPayments: pending,
		PublishedEvents: published,
		DraftEvents:     drafts,
	}
	for _, info := range tier.All() {
		stats.UsersByTier[string(info.Tier)] = 0
	}
	for t, n := range byTier {
		key := string(normalizeTier(t))
		stats.UsersByTier[key] += n
		stats.TotalUsers += n
	}
	return stats, nil
}

// PromoteSeedAdmins grants the admin role to the configured bootstrap
// emails. It runs once at startup and is never consulted for authorization.
func (s *AdminService) PromoteSeedAdmins(emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	n, err := s.userRepo.PromoteByEmails(emails)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("promoted seed admins", zap.Int64("count", n))
	}
	return nil
}
