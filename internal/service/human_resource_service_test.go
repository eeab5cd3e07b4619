package service

import (
	"context"
	"testing"

	"taskflow/internal/apperr"
	"taskflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHRService(f *fixture) HumanResourceService {
	return NewHumanResourceService(f.db, f.hrRepo, f.userRepo, f.departmentRepo, f.companyRepo)
}

func TestCreateProfileRejectsClientDepartment(t *testing.T) {
	f := newFixture(t)
	svc := newHRService(f)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	client := f.seedUser(t, "client", model.RoleClient)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	_, err := svc.Create(context.Background(), admin.ID, CreateHumanResourceRequest{
		UserID:       client.ID.String(),
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, "department_id", apperr.Field(err))

	profile, err := svc.Create(context.Background(), admin.ID, CreateHumanResourceRequest{
		UserID:    client.ID.String(),
		CompanyID: company.ID.String(),
	})
	require.NoError(t, err)
	assert.Empty(t, profile.DepartmentID)

	// One profile per user.
	_, err = svc.Create(context.Background(), admin.ID, CreateHumanResourceRequest{
		UserID:    client.ID.String(),
		CompanyID: company.ID.String(),
	})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestLinkCompanyClientOnly(t *testing.T) {
	f := newFixture(t)
	svc := newHRService(f)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	client := f.seedUser(t, "client", model.RoleClient)
	employee := f.seedUser(t, "worker", model.RoleEmployee)
	companyA := f.seedCompany(t, "Acme")
	companyB := f.seedCompany(t, "Globex")

	f.seedProfile(t, client.ID, nil, companyA.ID)
	department := f.seedDepartment(t, "IT")
	f.seedProfile(t, employee.ID, &department.ID, companyA.ID)

	// Employees cannot carry extra company links.
	err := svc.LinkCompany(context.Background(), admin.ID, employee.ID, companyB.ID)
	require.Error(t, err)
	assert.Equal(t, "user_id", apperr.Field(err))

	require.NoError(t, svc.LinkCompany(context.Background(), admin.ID, client.ID, companyB.ID))

	// Duplicate pair is rejected.
	err = svc.LinkCompany(context.Background(), admin.ID, client.ID, companyB.ID)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	linked, err := svc.ListLinkedCompanies(context.Background(), admin.ID, client.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, companyB.ID.String(), linked[0].CompanyID)

	require.NoError(t, svc.UnlinkCompany(context.Background(), admin.ID, client.ID, companyB.ID))
	linked, err = svc.ListLinkedCompanies(context.Background(), admin.ID, client.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestProfileAccessRules(t *testing.T) {
	f := newFixture(t)
	svc := newHRService(f)

	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")
	owner := f.seedUser(t, "owner", model.RoleEmployee)
	stranger := f.seedUser(t, "stranger", model.RoleEmployee)
	f.seedProfile(t, owner.ID, &department.ID, company.ID)

	// Owners read their own profile; strangers do not.
	_, err := svc.GetByUserID(context.Background(), owner.ID, owner.ID)
	require.NoError(t, err)

	_, err = svc.GetByUserID(context.Background(), stranger.ID, owner.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	// Owners update biography and phone but not their department.
	bio := "ten years of plumbing"
	updated, err := svc.Update(context.Background(), owner.ID, owner.ID, UpdateHumanResourceRequest{Biography: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Biography)

	newDept := department.ID.String()
	_, err = svc.Update(context.Background(), owner.ID, owner.ID, UpdateHumanResourceRequest{DepartmentID: &newDept})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}
