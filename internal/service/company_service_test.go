package service

import (
	"context"
	"testing"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyDeleteGuardedByReferences(t *testing.T) {
	f := newFixture(t)
	companySvc := NewCompanyService(f.db, f.companyRepo, f.petitionRepo)
	petitionSvc := newPetitionService(f, &recordingMailer{})

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	created, err := petitionSvc.Create(context.Background(), admin.ID, CreatePetitionRequest{
		Title:        "Blocking",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)

	var conflict *apperr.ConflictError
	err = companySvc.SoftDelete(context.Background(), admin.ID, company.ID)
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, petitionSvc.SoftDelete(context.Background(), admin.ID, mustParse(t, created.ID)))

	// An active profile still blocks.
	worker := f.seedUser(t, "worker", model.RoleEmployee)
	f.seedProfile(t, worker.ID, &department.ID, company.ID)
	err = companySvc.SoftDelete(context.Background(), admin.ID, company.ID)
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, f.db.Model(&model.HumanResource{}).
		Where("user_id = ?", worker.ID).
		Updates(map[string]interface{}{"active": false, "deleted_at": time.Now()}).Error)

	require.NoError(t, companySvc.SoftDelete(context.Background(), admin.ID, company.ID))

	_, err = companySvc.Get(context.Background(), company.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, companySvc.Activate(context.Background(), admin.ID, company.ID))
	restored, err := companySvc.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)
}

func TestDepartmentDeleteGuardedByPetitions(t *testing.T) {
	f := newFixture(t)
	departmentSvc := NewDepartmentService(f.db, f.departmentRepo, f.petitionRepo)
	petitionSvc := newPetitionService(f, &recordingMailer{})

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	employee := f.seedUser(t, "worker", model.RoleEmployee)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	created, err := petitionSvc.Create(context.Background(), admin.ID, CreatePetitionRequest{
		Title:        "Blocking",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)

	// Delete is admin-only.
	err = departmentSvc.SoftDelete(context.Background(), employee.ID, department.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	var conflict *apperr.ConflictError
	err = departmentSvc.SoftDelete(context.Background(), admin.ID, department.ID)
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, petitionSvc.SoftDelete(context.Background(), admin.ID, mustParse(t, created.ID)))
	require.NoError(t, departmentSvc.SoftDelete(context.Background(), admin.ID, department.ID))

	require.NoError(t, departmentSvc.Activate(context.Background(), admin.ID, department.ID))
	restored, err := departmentSvc.Get(context.Background(), department.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)
}
