package service

import (
	"context"
	"testing"

	"taskflow/internal/apperr"
	"taskflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(f *fixture) UserService {
	return NewUserService(f.db, f.userRepo, []byte("test-secret"))
}

func TestSignupDefaultsToEmployee(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	user, err := svc.Signup(context.Background(), "", SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, user.Role)
	assert.False(t, user.Verified)

	// Only admins hand out elevated roles.
	_, err = svc.Signup(context.Background(), "", SignupRequest{
		Username: "eve",
		Email:    "eve@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	admin, err := svc.Signup(context.Background(), model.RoleAdmin, SignupRequest{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	_, err := svc.Signup(context.Background(), "", SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "", SignupRequest{
		Username: "alice", Email: "other@example.com", Password: "secret123",
	})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = svc.Signup(context.Background(), "", SignupRequest{
		Username: "alice2", Email: "alice@example.com", Password: "secret123",
	})
	require.ErrorAs(t, err, &conflict)
}

func TestLoginAndRefreshRotation(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	_, err := svc.Signup(context.Background(), "", SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong"})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	tokens, err := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	rotated, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The presented token was single-use.
	_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.NoError(t, svc.Logout(context.Background(), rotated.RefreshToken))
	_, err = svc.Refresh(context.Background(), rotated.RefreshToken)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestVerifyUserAdminOnly(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	employee := f.seedUser(t, "worker", model.RoleEmployee)
	target := f.seedUser(t, "newbie", model.RoleEmployee)
	require.NoError(t, f.db.Model(target).Update("verified", false).Error)

	_, err := svc.Verify(context.Background(), employee.ID, target.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	verified, err := svc.Verify(context.Background(), admin.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	// Idempotent.
	verified, err = svc.Verify(context.Background(), admin.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
}

func TestListUsersAppliesScope(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	manager := f.seedUser(t, "manager", model.RoleManager)
	f.seedProfile(t, manager.ID, &department.ID, company.ID)
	inDept := f.seedUser(t, "indept", model.RoleEmployee)
	f.seedProfile(t, inDept.ID, &department.ID, company.ID)
	f.seedUser(t, "outside", model.RoleEmployee)

	_, total, err := svc.List(context.Background(), admin.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	users, total, err := svc.List(context.Background(), manager.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	names := []string{users[0].Username, users[1].Username}
	assert.ElementsMatch(t, []string{"manager", "indept"}, names)
}
