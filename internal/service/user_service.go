package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// UserService defines the interface for account and session business logic.
type UserService interface {
	Signup(ctx context.Context, actorRole string, req SignupRequest) (*UserResponse, error)
	Verify(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]UserResponse, int64, error)
	Get(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	SoftDelete(ctx context.Context, actorID, id uuid.UUID) error
}

type userService struct {
	db        *gorm.DB
	repo      repository.UserRepository
	jwtSecret []byte
}

// NewUserService returns a new instance of UserService
func NewUserService(db *gorm.DB, repo repository.UserRepository, jwtSecret []byte) UserService {
	return &userService{db: db, repo: repo, jwtSecret: jwtSecret}
}

func (s *userService) Signup(ctx context.Context, actorRole string, req SignupRequest) (*UserResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	if !model.ValidRole(role) {
		return nil, apperr.Validation("role", "role must be one of Admin, Manager, Employee, Client")
	}
	// Only admins hand out non-default roles.
	if role != model.RoleEmployee && actorRole != model.RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Conflict("username already exists")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Verify(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != model.RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", id)
		}
		return nil, err
	}

	if !user.Verified {
		user.Verified = true
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, apperr.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}

	// Rotate: the presented token is single-use.
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) Me(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]UserResponse, int64, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, scope.FilterUsers, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) Get(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	var users []model.User
	err = scope.FilterUsers(model.ScopeActive(s.db.WithContext(ctx).Model(&model.User{}))).
		Find(&users, "users.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("user %s", id)
	}

	resp := toUserResponse(&users[0])
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	// Users edit themselves; admins edit anyone.
	if scope.Role != model.RoleAdmin && scope.UserID != id {
		return nil, apperr.ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", id)
		}
		return nil, err
	}

	if req.Role != "" && req.Role != user.Role {
		if scope.Role != model.RoleAdmin {
			return nil, apperr.ErrForbidden
		}
		if !model.ValidRole(req.Role) {
			return nil, apperr.Validation("role", "role must be one of Admin, Manager, Employee, Client")
		}
		user.Role = req.Role
	}
	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
			return nil, apperr.Conflict("username already exists")
		}
		user.Username = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, apperr.Conflict("email already exists")
		}
		user.Email = req.Email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) SoftDelete(ctx context.Context, actorID, id uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user %s", id)
		}
		return err
	}
	if user.IsDeleted() {
		return apperr.ErrAlreadyDeleted
	}

	user.MarkDeleted(time.Now())
	return s.repo.Update(ctx, user)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPairResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  now.Add(accessTokenTTL).Unix(),
		"iat":  now.Unix(),
	})
	accessString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenPairResponse{AccessToken: accessString, RefreshToken: refresh.Token}, nil
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Verified:  user.Verified,
		Active:    !user.IsDeleted(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}
