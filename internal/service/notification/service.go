package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medicore/clinic-api/internal/email"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/messaging"
)

const broadcastChannel = "notifications"

type Service struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	broker   messaging.Broker // nil when real-time delivery is disabled
	emailSvc email.Service
}

func NewService(repo repository.NotificationRepository, userRepo repository.UserRepository,
	broker messaging.Broker, emailSvc email.Service) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		broker:   broker,
		emailSvc: emailSvc,
	}
}

// Create writes notifications for the requested target: one record for
// a user target, one record per member for a role target. Exactly one
// of target_user_id and target_role must be supplied.
func (s *Service) Create(ctx context.Context, sourceUserID uuid.UUID, req *model.CreateNotificationRequest) ([]*model.Notification, error) {
	if req.TargetUserID == nil && req.TargetRole == nil {
		return nil, apperrors.Validation("either target_user_id or target_role must be provided")
	}
	if req.TargetUserID != nil && req.TargetRole != nil {
		return nil, apperrors.Validation("target_user_id and target_role are mutually exclusive")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = model.NotificationUrgencyMedium
	}

	var recipients []*model.User
	if req.TargetUserID != nil {
		user, err := s.userRepo.Get(ctx, *req.TargetUserID)
		if err != nil {
			return nil, err
		}
		recipients = []*model.User{user}
	} else {
		users, err := s.userRepo.ListByRole(ctx, *req.TargetRole)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if len(users) == 0 {
			return nil, apperrors.NotFound(fmt.Sprintf("users with role %s", *req.TargetRole))
		}
		recipients = users
	}

	now := time.Now()
	notifications := make([]*model.Notification, 0, len(recipients))
	for _, user := range recipients {
		userID := user.ID
		notifications = append(notifications, &model.Notification{
			ID:              uuid.New(),
			Type:            req.Type,
			Title:           req.Title,
			Message:         req.Message,
			Urgency:         urgency,
			Status:          model.NotificationStatusUnread,
			TargetRole:      req.TargetRole,
			TargetUserID:    &userID,
			SourceUserID:    sourceUserID,
			RelatedEntityID: req.RelatedEntityID,
			Metadata:        req.Metadata,
			CreatedAt:       now,
		})
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return nil, apperrors.Internal(err)
	}

	// Delivery beyond the store is best-effort and never fails the
	// request.
	s.broadcast(ctx, notifications)
	if urgency == model.NotificationUrgencyHigh {
		s.emailRecipients(recipients, req.Title, req.Message)
	}

	return notifications, nil
}

func (s *Service) broadcast(ctx context.Context, notifications []*model.Notification) {
	if s.broker == nil {
		return
	}
	for _, n := range notifications {
		event := &model.NotificationEvent{
			NotificationID: n.ID,
			TargetUserID:   *n.TargetUserID,
			Type:           n.Type,
			Title:          n.Title,
			CreatedAt:      n.CreatedAt,
		}
		if err := s.broker.Publish(ctx, broadcastChannel, event); err != nil {
			log.Warn().Err(err).Str("notification_id", n.ID.String()).Msg("failed to publish notification event")
		}
	}
}

func (s *Service) emailRecipients(recipients []*model.User, subject, body string) {
	for _, user := range recipients {
		if err := s.emailSvc.Send(user.Email, subject, body); err != nil {
			log.Warn().Err(err).Str("email", user.Email).Msg("failed to send notification email")
		}
	}
}

// ListForUser returns notifications addressed to the requester or to
// their role, newest first.
func (s *Service) ListForUser(ctx context.Context, requester *model.TokenClaims, filter *model.NotificationFilter) ([]*model.Notification, int, error) {
	filter.Normalize()
	return s.repo.ListForUser(ctx, requester.UserID, requester.Role, filter)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) (*model.Notification, error) {
	return s.repo.MarkRead(ctx, id, requester.UserID, requester.Role)
}

func (s *Service) MarkAllRead(ctx context.Context, requester *model.TokenClaims) error {
	return s.repo.MarkAllRead(ctx, requester.UserID, requester.Role)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) error {
	return s.repo.Delete(ctx, id, requester.UserID, requester.Role)
}
