package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCommissionRequest struct {
	Description string   `json:"description" binding:"required,max=255"`
	PetitionID  string   `json:"petition_id" binding:"required,uuid"`
	UserIDs     []string `json:"user_ids"`
}

type UpdateCommissionRequest struct {
	Description string `json:"description" binding:"omitempty,max=255"`
	Status      string `json:"status"`
}

type AssignUsersRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
}

type CreateDocumentRequest struct {
	Path string `json:"path" binding:"required,max=255"`
}

type CommissionResponse struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	PetitionID  string             `json:"petition_id"`
	Users       []UserResponse     `json:"users,omitempty"`
	Documents   []DocumentResponse `json:"documents,omitempty"`
	Active      bool               `json:"active"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

type DocumentResponse struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	CommissionID string `json:"commission_id"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

type CommissionService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateCommissionRequest) (*CommissionResponse, error)
	List(ctx context.Context, actorID uuid.UUID, petitionID, userID string, page, limit int) ([]CommissionResponse, int64, error)
	Get(ctx context.Context, actorID, id uuid.UUID) (*CommissionResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req UpdateCommissionRequest) (*CommissionResponse, error)
	SoftDelete(ctx context.Context, actorID, id uuid.UUID) error
	Activate(ctx context.Context, actorID, id uuid.UUID) error

	AssignUsers(ctx context.Context, actorID, id uuid.UUID, req AssignUsersRequest) (*CommissionResponse, error)
	RemoveUsers(ctx context.Context, actorID, id uuid.UUID, req AssignUsersRequest) (*CommissionResponse, error)

	AddDocument(ctx context.Context, actorID, id uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error)
	ListDocuments(ctx context.Context, actorID, id uuid.UUID) ([]DocumentResponse, error)
	RemoveDocument(ctx context.Context, actorID, commissionID, documentID uuid.UUID) error
}

type commissionService struct {
	db             *gorm.DB
	commissionRepo repository.CommissionRepository
	petitionRepo   repository.PetitionRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewCommissionService(
	db *gorm.DB,
	commissionRepo repository.CommissionRepository,
	petitionRepo repository.PetitionRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CommissionService {
	return &commissionService{
		db:             db,
		commissionRepo: commissionRepo,
		petitionRepo:   petitionRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

// --- Implementation ---

func (s *commissionService) Create(ctx context.Context, actorID uuid.UUID, req CreateCommissionRequest) (*CommissionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	petitionID, err := uuid.Parse(req.PetitionID)
	if err != nil {
		return nil, apperr.Validation("petition_id", "invalid petition id")
	}

	petition, err := s.petitionRepo.FindByID(ctx, petitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("petition_id", "petition does not exist or is inactive")
		}
		return nil, err
	}
	if petition.IsMain {
		return nil, apperr.Validation("petition_id", "commissions can only be attached to non-main petitions")
	}
	if !scope.CanViewPetition(petition) {
		return nil, apperr.ErrForbidden
	}

	users, err := s.resolveUsers(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}

	commission := model.Commission{
		Description: req.Description,
		Status:      model.CommissionOpen,
		PetitionID:  petition.ID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.commissionRepo.Create(txCtx, &commission); err != nil {
			return fmt.Errorf("failed to create commission: %w", err)
		}
		if err := s.commissionRepo.AddUsers(txCtx, &commission, users); err != nil {
			return fmt.Errorf("failed to assign commission users: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionCreateCommission, &commission, map[string]interface{}{
			"petition_id": petition.ID.String(),
			"user_count":  len(users),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, commission.ID)
}

func (s *commissionService) List(ctx context.Context, actorID uuid.UUID, petitionID, userID string, page, limit int) ([]CommissionResponse, int64, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, 0, err
	}

	var pid, uid *uuid.UUID
	if petitionID != "" {
		id, err := uuid.Parse(petitionID)
		if err != nil {
			return nil, 0, apperr.Validation("petition_id", "invalid petition id")
		}
		pid = &id
	}
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, 0, apperr.Validation("user_id", "invalid user id")
		}
		uid = &id
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	// Visibility rides on the parent petition; the repository narrows to
	// visible parents before counting and paginating.
	commissions, total, err := s.commissionRepo.List(ctx, pid, uid, scope.FilterPetitions, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]CommissionResponse, 0, len(commissions))
	for i := range commissions {
		result = append(result, toCommissionResponse(&commissions[i]))
	}
	return result, total, nil
}

func (s *commissionService) Get(ctx context.Context, actorID, id uuid.UUID) (*CommissionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	commission, err := s.commissionRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("commission %s", id)
		}
		return nil, err
	}
	if err := s.checkParentVisibility(ctx, scope, commission); err != nil {
		return nil, err
	}

	resp := toCommissionResponse(commission)
	return &resp, nil
}

func (s *commissionService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateCommissionRequest) (*CommissionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	commission, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("commission %s", id)
		}
		return nil, err
	}
	if err := s.checkParentVisibility(ctx, scope, commission); err != nil {
		return nil, err
	}

	if req.Description != "" {
		commission.Description = req.Description
	}
	if req.Status != "" {
		if req.Status != model.CommissionOpen && req.Status != model.CommissionClosed {
			return nil, apperr.Validation("status", "unknown status "+req.Status)
		}
		commission.Status = req.Status
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.commissionRepo.Update(txCtx, commission); err != nil {
			return fmt.Errorf("failed to update commission: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionUpdateCommission, commission, map[string]interface{}{
			"status": commission.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, commission.ID)
}

func (s *commissionService) SoftDelete(ctx context.Context, actorID, id uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}

	commission, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("commission %s", id)
		}
		return err
	}
	if commission.IsDeleted() {
		return apperr.ErrAlreadyDeleted
	}

	docs, err := s.commissionRepo.CountActiveDocuments(ctx, id)
	if err != nil {
		return err
	}
	if docs > 0 {
		return apperr.Conflict("commission has %d active documents", docs)
	}

	commission.MarkDeleted(time.Now())
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.commissionRepo.Update(txCtx, commission); err != nil {
			return fmt.Errorf("failed to delete commission: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionDeleteCommission, commission, nil)
	})
}

// Activate restores a soft-deleted commission, provided its parent petition
// is still active.
func (s *commissionService) Activate(ctx context.Context, actorID, id uuid.UUID) error {
	commission, err := s.commissionRepo.FindDeletedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("commission %s does not exist or is already active", id)
		}
		return err
	}

	if _, err := s.petitionRepo.FindByID(ctx, commission.PetitionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Conflict("parent petition is inactive")
		}
		return err
	}

	commission.MarkRestored()
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.commissionRepo.Update(txCtx, commission); err != nil {
			return fmt.Errorf("failed to restore commission: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionRestoreCommission, commission, nil)
	})
}

func (s *commissionService) AssignUsers(ctx context.Context, actorID, id uuid.UUID, req AssignUsersRequest) (*CommissionResponse, error) {
	return s.mutateUsers(ctx, actorID, id, req, true)
}

func (s *commissionService) RemoveUsers(ctx context.Context, actorID, id uuid.UUID, req AssignUsersRequest) (*CommissionResponse, error) {
	return s.mutateUsers(ctx, actorID, id, req, false)
}

func (s *commissionService) mutateUsers(ctx context.Context, actorID, id uuid.UUID, req AssignUsersRequest, assign bool) (*CommissionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	commission, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("commission %s", id)
		}
		return nil, err
	}
	if err := s.checkParentVisibility(ctx, scope, commission); err != nil {
		return nil, err
	}

	users, err := s.resolveUsers(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}

	action := model.ActionAssignUsers
	if !assign {
		action = model.ActionRemoveUsers
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var opErr error
		if assign {
			opErr = s.commissionRepo.AddUsers(txCtx, commission, users)
		} else {
			opErr = s.commissionRepo.RemoveUsers(txCtx, commission, users)
		}
		if opErr != nil {
			return fmt.Errorf("failed to change commission assignment: %w", opErr)
		}
		return s.audit(txCtx, &actorID, action, commission, map[string]interface{}{
			"user_count": len(users),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, commission.ID)
}

func (s *commissionService) AddDocument(ctx context.Context, actorID, id uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	commission, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("commission %s", id)
		}
		return nil, err
	}
	if err := s.checkParentVisibility(ctx, scope, commission); err != nil {
		return nil, err
	}

	doc := model.Document{
		Path:         req.Path,
		CommissionID: commission.ID,
	}
	if err := s.commissionRepo.CreateDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	resp := toDocumentResponse(&doc)
	return &resp, nil
}

func (s *commissionService) ListDocuments(ctx context.Context, actorID, id uuid.UUID) ([]DocumentResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	commission, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("commission %s", id)
		}
		return nil, err
	}
	if err := s.checkParentVisibility(ctx, scope, commission); err != nil {
		return nil, err
	}

	docs, err := s.commissionRepo.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	result := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result, nil
}

func (s *commissionService) RemoveDocument(ctx context.Context, actorID, commissionID, documentID uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}

	doc, err := s.commissionRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("document %s", documentID)
		}
		return err
	}
	if doc.CommissionID != commissionID {
		return apperr.NotFound("document %s", documentID)
	}

	commission, err := s.commissionRepo.FindByID(ctx, commissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("commission %s", commissionID)
		}
		return err
	}
	if err := s.checkParentVisibility(ctx, scope, commission); err != nil {
		return err
	}

	doc.MarkDeleted(time.Now())
	return s.commissionRepo.UpdateDocument(ctx, doc)
}

// --- Helpers ---

// resolveUsers parses and de-duplicates the requested ids, then loads the
// matching active users. Unknown ids are rejected.
func (s *commissionService) resolveUsers(ctx context.Context, rawIDs []string) ([]model.User, error) {
	if len(rawIDs) == 0 {
		return nil, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(rawIDs))
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation("user_ids", "invalid user id "+raw)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, apperr.Validation("user_ids", "one or more users do not exist or are inactive")
	}
	return users, nil
}

func (s *commissionService) checkParentVisibility(ctx context.Context, scope access.Scope, commission *model.Commission) error {
	petition, err := s.petitionRepo.FindByID(ctx, commission.PetitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrForbidden
		}
		return err
	}
	if !scope.CanViewPetition(petition) {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *commissionService) reload(ctx context.Context, id uuid.UUID) (*CommissionResponse, error) {
	loaded, err := s.commissionRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload commission: %w", err)
	}
	resp := toCommissionResponse(loaded)
	return &resp, nil
}

func (s *commissionService) audit(ctx context.Context, userID *uuid.UUID, action string, commission *model.Commission, extra map[string]interface{}) error {
	payload := map[string]interface{}{"commission_id": commission.ID.String()}
	for k, v := range extra {
		payload[k] = v
	}
	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   commission.ID.String(),
		EntityName: commission.Description,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toCommissionResponse(c *model.Commission) CommissionResponse {
	resp := CommissionResponse{
		ID:          c.ID.String(),
		Description: c.Description,
		Status:      c.Status,
		PetitionID:  c.PetitionID.String(),
		Active:      !c.IsDeleted(),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
	for i := range c.Users {
		resp.Users = append(resp.Users, toUserResponse(&c.Users[i]))
	}
	for i := range c.Documents {
		resp.Documents = append(resp.Documents, toDocumentResponse(&c.Documents[i]))
	}
	return resp
}

func toDocumentResponse(d *model.Document) DocumentResponse {
	return DocumentResponse{
		ID:           d.ID.String(),
		Path:         d.Path,
		CommissionID: d.CommissionID.String(),
		Active:       !d.IsDeleted(),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
}
