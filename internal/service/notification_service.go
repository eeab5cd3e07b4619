package service

import (
	"context"
	"errors"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationResponse struct {
	ID            string `json:"id"`
	PetitionID    string `json:"petition_id"`
	PetitionTitle string `json:"petition_title,omitempty"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// NotificationService exposes the recipient-facing side of notifications.
// Creation happens only through the fan-out.
type NotificationService interface {
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	MarkAsRead(ctx context.Context, actorID, id uuid.UUID) (*NotificationResponse, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.repo.ListByRecipient(ctx, recipientID, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, toNotificationResponse(&notifications[i]))
	}
	return result, total, nil
}

// MarkAsRead is idempotent: marking an already-read notification succeeds
// without further change. Only the recipient may mark their notification.
func (s *notificationService) MarkAsRead(ctx context.Context, actorID, id uuid.UUID) (*NotificationResponse, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("notification %s", id)
		}
		return nil, err
	}
	if notification.RecipientID != actorID {
		return nil, apperr.ErrForbidden
	}

	if notification.Status != model.NotificationRead {
		notification.Status = model.NotificationRead
		if err := s.repo.Update(ctx, notification); err != nil {
			return nil, err
		}
	}

	resp := toNotificationResponse(notification)
	return &resp, nil
}

func toNotificationResponse(n *model.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID.String(),
		PetitionID: n.PetitionID.String(),
		Message:    n.Message,
		Status:     n.Status,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
	if n.Petition != nil {
		resp.PetitionTitle = n.Petition.Title
	}
	return resp
}
