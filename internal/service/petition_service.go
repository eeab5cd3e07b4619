package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePetitionRequest struct {
	Title        string     `json:"title" binding:"required,max=120"`
	Description  string     `json:"description" binding:"required"`
	IsMain       *bool      `json:"is_main"`
	Priority     string     `json:"priority"`
	DepartmentID string     `json:"department_id" binding:"required,uuid"`
	CompanyID    string     `json:"company_id" binding:"required,uuid"`
	Hours        string     `json:"hours"` // "HH:MM", optional
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

type UpdatePetitionRequest struct {
	Title          string     `json:"title" binding:"omitempty,max=120"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	StatusApproval string     `json:"status_approval"`
	Hours          string     `json:"hours"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

type PetitionListFilter struct {
	Title          string
	StatusApproval string
	DepartmentID   string
	CompanyID      string
	UserID         string
	DateFrom       string // YYYY-MM-DD
	DateUntil      string // YYYY-MM-DD
	Page           int
	Limit          int
}

type PetitionResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	IsMain         bool                 `json:"is_main"`
	Priority       string               `json:"priority"`
	StatusApproval string               `json:"status_approval"`
	DepartmentID   string               `json:"department_id"`
	DepartmentName string               `json:"department_name,omitempty"`
	CompanyID      string               `json:"company_id"`
	CompanyName    string               `json:"company_name,omitempty"`
	UserID         string               `json:"user_id"`
	Username       string               `json:"username,omitempty"`
	Hours          string               `json:"hours,omitempty"`
	StartDate      *time.Time           `json:"start_date,omitempty"`
	EndDate        *time.Time           `json:"end_date,omitempty"`
	Active         bool                 `json:"active"`
	Commissions    []CommissionResponse `json:"commissions,omitempty"`
	CreatedAt      string               `json:"created_at"`
	UpdatedAt      string               `json:"updated_at"`
}

// --- Interface ---

type PetitionService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreatePetitionRequest) (*PetitionResponse, error)
	List(ctx context.Context, actorID uuid.UUID, filter PetitionListFilter) ([]PetitionResponse, int64, error)
	Get(ctx context.Context, actorID, id uuid.UUID) (*PetitionResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req UpdatePetitionRequest) (*PetitionResponse, error)
	SoftDelete(ctx context.Context, actorID, id uuid.UUID) error
	Activate(ctx context.Context, actorID, id uuid.UUID) error
}

type petitionService struct {
	db             *gorm.DB
	petitionRepo   repository.PetitionRepository
	departmentRepo repository.DepartmentRepository
	companyRepo    repository.CompanyRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	notifier       Notifier
}

func NewPetitionService(
	db *gorm.DB,
	petitionRepo repository.PetitionRepository,
	departmentRepo repository.DepartmentRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) PetitionService {
	return &petitionService{
		db:             db,
		petitionRepo:   petitionRepo,
		departmentRepo: departmentRepo,
		companyRepo:    companyRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		notifier:       notifier,
	}
}

// --- Validation helpers ---

var hoursPattern = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)

// ParseHours converts a "HH:MM" string to a duration.
func ParseHours(raw string) (time.Duration, error) {
	m := hoursPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, apperr.Validation("hours", "hours must be in HH:MM format")
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute, nil
}

// FormatHours renders a duration back to "HH:MM".
func FormatHours(d time.Duration) string {
	total := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return apperr.Validation("end_date", "end_date must be strictly after start_date")
	}
	return nil
}

// --- Implementation ---

func (s *petitionService) Create(ctx context.Context, actorID uuid.UUID, req CreatePetitionRequest) (*PetitionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	if req.Priority != "" && !model.ValidPriority(req.Priority) {
		return nil, apperr.Validation("priority", "unknown priority "+req.Priority)
	}
	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	var hours *time.Duration
	if req.Hours != "" {
		d, err := ParseHours(req.Hours)
		if err != nil {
			return nil, err
		}
		hours = &d
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		return nil, apperr.Validation("department_id", "invalid department id")
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, apperr.Validation("company_id", "invalid company id")
	}

	if _, err := s.departmentRepo.FindByID(ctx, departmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("department %s", departmentID)
		}
		return nil, err
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("company %s", companyID)
		}
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityLow
	}
	isMain := true
	if req.IsMain != nil {
		isMain = *req.IsMain
	}

	petition := model.Petition{
		Title:          req.Title,
		Description:    req.Description,
		IsMain:         isMain,
		Priority:       priority,
		StatusApproval: model.StatusWaiting,
		DepartmentID:   departmentID,
		CompanyID:      companyID,
		UserID:         scope.UserID,
		Hours:          hours,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.petitionRepo.Create(txCtx, &petition); err != nil {
			return fmt.Errorf("failed to create petition: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionCreatePetition, &petition, map[string]interface{}{
			"title":    petition.Title,
			"priority": petition.Priority,
		})
	})
	if err != nil {
		return nil, err
	}

	// Fan-out runs after the record is committed; its failures never undo it.
	s.notifier.PetitionCreated(ctx, &petition)

	loaded, err := s.petitionRepo.FindByIDWithRelations(ctx, petition.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload petition: %w", err)
	}
	resp := toPetitionResponse(loaded)
	return &resp, nil
}

func (s *petitionService) List(ctx context.Context, actorID uuid.UUID, filter PetitionListFilter) ([]PetitionResponse, int64, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, 0, err
	}

	repoFilter := repository.PetitionFilter{
		Title:          filter.Title,
		StatusApproval: filter.StatusApproval,
		Page:           filter.Page,
		Limit:          filter.Limit,
	}
	if repoFilter.Page <= 0 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit <= 0 {
		repoFilter.Limit = 20
	}

	if filter.DepartmentID != "" {
		id, err := uuid.Parse(filter.DepartmentID)
		if err != nil {
			return nil, 0, apperr.Validation("department_id", "invalid department id")
		}
		repoFilter.DepartmentID = &id
	}
	if filter.CompanyID != "" {
		id, err := uuid.Parse(filter.CompanyID)
		if err != nil {
			return nil, 0, apperr.Validation("company_id", "invalid company id")
		}
		repoFilter.CompanyID = &id
	}
	if filter.UserID != "" {
		id, err := uuid.Parse(filter.UserID)
		if err != nil {
			return nil, 0, apperr.Validation("user_id", "invalid user id")
		}
		repoFilter.UserID = &id
	}
	if filter.DateFrom != "" {
		t, err := time.Parse("2006-01-02", filter.DateFrom)
		if err != nil {
			return nil, 0, apperr.Validation("date_from", "expected YYYY-MM-DD")
		}
		repoFilter.DateFrom = &t
	}
	if filter.DateUntil != "" {
		t, err := time.Parse("2006-01-02", filter.DateUntil)
		if err != nil {
			return nil, 0, apperr.Validation("date_until", "expected YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		repoFilter.DateUntil = &end
	}

	petitions, total, err := s.petitionRepo.List(ctx, scope.FilterPetitions, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]PetitionResponse, 0, len(petitions))
	for i := range petitions {
		result = append(result, toPetitionResponse(&petitions[i]))
	}
	return result, total, nil
}

func (s *petitionService) Get(ctx context.Context, actorID, id uuid.UUID) (*PetitionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	petition, err := s.petitionRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("petition %s", id)
		}
		return nil, err
	}
	if !scope.CanViewPetition(petition) {
		return nil, apperr.ErrForbidden
	}

	resp := toPetitionResponse(petition)
	return &resp, nil
}

func (s *petitionService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdatePetitionRequest) (*PetitionResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	petition, err := s.petitionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("petition %s", id)
		}
		return nil, err
	}
	if !scope.CanViewPetition(petition) {
		return nil, apperr.ErrForbidden
	}

	if req.Title != "" {
		petition.Title = req.Title
	}
	if req.Description != "" {
		petition.Description = req.Description
	}
	if req.Priority != "" {
		if !model.ValidPriority(req.Priority) {
			return nil, apperr.Validation("priority", "unknown priority "+req.Priority)
		}
		petition.Priority = req.Priority
	}

	if req.StartDate != nil {
		petition.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		petition.EndDate = req.EndDate
	}
	if err := validateDates(petition.StartDate, petition.EndDate); err != nil {
		return nil, err
	}

	if req.Hours != "" {
		d, err := ParseHours(req.Hours)
		if err != nil {
			return nil, err
		}
		petition.Hours = &d
	}

	statusChanged := false
	if req.StatusApproval != "" && req.StatusApproval != petition.StatusApproval {
		if !model.ValidStatusApproval(req.StatusApproval) {
			return nil, apperr.Validation("status_approval", "unknown status "+req.StatusApproval)
		}
		if !model.CanTransitionStatus(petition.StatusApproval, req.StatusApproval) {
			return nil, fmt.Errorf("cannot move petition from %s to %s: %w",
				petition.StatusApproval, req.StatusApproval, apperr.ErrInvalidTransition)
		}
		petition.StatusApproval = req.StatusApproval
		statusChanged = true
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.petitionRepo.Update(txCtx, petition); err != nil {
			return fmt.Errorf("failed to update petition: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionUpdatePetition, petition, map[string]interface{}{
			"status_approval": petition.StatusApproval,
		})
	})
	if err != nil {
		return nil, err
	}

	// Only approval outcomes notify stakeholders; WAITING edits stay quiet.
	if statusChanged {
		switch petition.StatusApproval {
		case model.StatusApproved, model.StatusNotApproved, model.StatusDone:
			s.notifier.PetitionStatusChanged(ctx, petition)
		}
	}

	loaded, err := s.petitionRepo.FindByIDWithRelations(ctx, petition.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload petition: %w", err)
	}
	resp := toPetitionResponse(loaded)
	return &resp, nil
}

func (s *petitionService) SoftDelete(ctx context.Context, actorID, id uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}

	petition, err := s.petitionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("petition %s", id)
		}
		return err
	}
	if petition.IsDeleted() {
		return apperr.ErrAlreadyDeleted
	}

	petition.MarkDeleted(time.Now())
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.petitionRepo.Update(txCtx, petition); err != nil {
			return fmt.Errorf("failed to delete petition: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionDeletePetition, petition, nil)
	})
}

// Activate restores a soft-deleted petition. Restoring a finished petition
// is rejected: DONE is terminal.
func (s *petitionService) Activate(ctx context.Context, actorID, id uuid.UUID) error {
	petition, err := s.petitionRepo.FindDeletedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("petition %s does not exist or is already active", id)
		}
		return err
	}
	if petition.StatusApproval == model.StatusDone {
		return fmt.Errorf("petition %s is finished: %w", id, apperr.ErrInvalidTransition)
	}

	petition.MarkRestored()
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.petitionRepo.Update(txCtx, petition); err != nil {
			return fmt.Errorf("failed to restore petition: %w", err)
		}
		return s.audit(txCtx, &actorID, model.ActionRestorePetition, petition, nil)
	})
}

func (s *petitionService) audit(ctx context.Context, userID *uuid.UUID, action string, petition *model.Petition, extra map[string]interface{}) error {
	payload := map[string]interface{}{"petition_id": petition.ID.String()}
	for k, v := range extra {
		payload[k] = v
	}
	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   petition.ID.String(),
		EntityName: petition.Title,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Helpers ---

func toPetitionResponse(p *model.Petition) PetitionResponse {
	resp := PetitionResponse{
		ID:             p.ID.String(),
		Title:          p.Title,
		Description:    p.Description,
		IsMain:         p.IsMain,
		Priority:       p.Priority,
		StatusApproval: p.StatusApproval,
		DepartmentID:   p.DepartmentID.String(),
		CompanyID:      p.CompanyID.String(),
		UserID:         p.UserID.String(),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Active:         !p.IsDeleted(),
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Hours != nil {
		resp.Hours = FormatHours(*p.Hours)
	}
	if p.Department != nil {
		resp.DepartmentName = p.Department.Name
	}
	if p.Company != nil {
		resp.CompanyName = p.Company.Name
	}
	if p.User != nil {
		resp.Username = p.User.Username
	}
	for i := range p.Commissions {
		resp.Commissions = append(resp.Commissions, toCommissionResponse(&p.Commissions[i]))
	}
	return resp
}
