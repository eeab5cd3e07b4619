package service

import (
	"context"

	"taskflow/internal/access"
	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, actorID uuid.UUID, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	db   *gorm.DB
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(db *gorm.DB, repo repository.AuditRepository) AuditService {
	return &auditService{db: db, repo: repo}
}

// GetAuditLogs retrieves strictly paginated records, admins only.
func (s *auditService) GetAuditLogs(ctx context.Context, actorID uuid.UUID, page, limit int) ([]AuditLogResponse, int64, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, 0, err
	}
	if scope.Role != model.RoleAdmin {
		return nil, 0, apperr.ErrForbidden
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
