package service

import (
	"context"
	"fmt"
	"testing"

	"taskflow/internal/apperr"
	"taskflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommissionFixture(t *testing.T) (*fixture, CommissionService, PetitionService, *model.User) {
	f := newFixture(t)
	petitionSvc := newPetitionService(f, &recordingMailer{})
	commissionSvc := NewCommissionService(f.db, f.commissionRepo, f.petitionRepo, f.userRepo, f.auditRepo, f.txManager)
	admin := f.seedUser(t, "admin", model.RoleAdmin)
	return f, commissionSvc, petitionSvc, admin
}

func (f *fixture) seedPetition(t *testing.T, svc PetitionService, actor *model.User, title string, isMain bool) string {
	t.Helper()
	company := f.seedCompany(t, title+" Co")
	department := f.seedDepartment(t, title+" Dept")
	created, err := svc.Create(context.Background(), actor.ID, CreatePetitionRequest{
		Title:        title,
		Description:  "desc",
		IsMain:       &isMain,
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)
	return created.ID
}

func TestCreateCommissionRequiresNonMainPetition(t *testing.T) {
	f, svc, petitionSvc, admin := newCommissionFixture(t)

	mainID := f.seedPetition(t, petitionSvc, admin, "Main", true)
	_, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
		Description: "split work",
		PetitionID:  mainID,
	})
	require.Error(t, err)
	assert.Equal(t, "petition_id", apperr.Field(err))

	subID := f.seedPetition(t, petitionSvc, admin, "Sub", false)
	commission, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
		Description: "split work",
		PetitionID:  subID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CommissionOpen, commission.Status)
	assert.Equal(t, subID, commission.PetitionID)
}

func TestAssignAndRemoveUsersIdempotent(t *testing.T) {
	f, svc, petitionSvc, admin := newCommissionFixture(t)

	u2 := f.seedUser(t, "worker2", model.RoleEmployee)
	u3 := f.seedUser(t, "worker3", model.RoleEmployee)

	subID := f.seedPetition(t, petitionSvc, admin, "Sub", false)
	commission, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
		Description: "split work",
		PetitionID:  subID,
	})
	require.NoError(t, err)
	id := mustParse(t, commission.ID)

	// Duplicates in the request collapse; re-assigning is a no-op.
	commission, err = svc.AssignUsers(context.Background(), admin.ID, id, AssignUsersRequest{
		UserIDs: []string{u2.ID.String(), u2.ID.String(), u3.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, commission.Users, 2)

	commission, err = svc.AssignUsers(context.Background(), admin.ID, id, AssignUsersRequest{
		UserIDs: []string{u2.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, commission.Users, 2)

	commission, err = svc.RemoveUsers(context.Background(), admin.ID, id, AssignUsersRequest{
		UserIDs: []string{u2.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, commission.Users, 1)
	assert.Equal(t, u3.ID.String(), commission.Users[0].ID)

	// Removing a user who is not assigned is a no-op.
	commission, err = svc.RemoveUsers(context.Background(), admin.ID, id, AssignUsersRequest{
		UserIDs: []string{u2.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, commission.Users, 1)
}

func TestAssignUnknownUserRejected(t *testing.T) {
	f, svc, petitionSvc, admin := newCommissionFixture(t)

	subID := f.seedPetition(t, petitionSvc, admin, "Sub", false)
	commission, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
		Description: "split work",
		PetitionID:  subID,
	})
	require.NoError(t, err)

	_, err = svc.AssignUsers(context.Background(), admin.ID, mustParse(t, commission.ID), AssignUsersRequest{
		UserIDs: []string{"2c2e6a70-0000-0000-0000-000000000001"},
	})
	require.Error(t, err)
	assert.Equal(t, "user_ids", apperr.Field(err))
}

func TestDeleteCommissionBlockedByActiveDocuments(t *testing.T) {
	f, svc, petitionSvc, admin := newCommissionFixture(t)

	subID := f.seedPetition(t, petitionSvc, admin, "Sub", false)
	commission, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
		Description: "split work",
		PetitionID:  subID,
	})
	require.NoError(t, err)
	id := mustParse(t, commission.ID)

	doc, err := svc.AddDocument(context.Background(), admin.ID, id, CreateDocumentRequest{Path: "/files/report.pdf"})
	require.NoError(t, err)

	err = svc.SoftDelete(context.Background(), admin.ID, id)
	require.Error(t, err)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	// Once the document is gone the delete goes through.
	require.NoError(t, svc.RemoveDocument(context.Background(), admin.ID, id, mustParse(t, doc.ID)))
	require.NoError(t, svc.SoftDelete(context.Background(), admin.ID, id))

	_, err = svc.Get(context.Background(), admin.ID, id)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Activate(context.Background(), admin.ID, id))
	restored, err := svc.Get(context.Background(), admin.ID, id)
	require.NoError(t, err)
	assert.True(t, restored.Active)
}

func TestActivateCommissionRequiresActiveParent(t *testing.T) {
	f, svc, petitionSvc, admin := newCommissionFixture(t)

	subID := f.seedPetition(t, petitionSvc, admin, "Sub", false)
	commission, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
		Description: "split work",
		PetitionID:  subID,
	})
	require.NoError(t, err)
	id := mustParse(t, commission.ID)

	require.NoError(t, svc.SoftDelete(context.Background(), admin.ID, id))
	require.NoError(t, petitionSvc.SoftDelete(context.Background(), admin.ID, mustParse(t, subID)))

	err = svc.Activate(context.Background(), admin.ID, id)
	require.Error(t, err)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestListCommissionsScopedByParentBeforePaging(t *testing.T) {
	f, svc, petitionSvc, admin := newCommissionFixture(t)

	company := f.seedCompany(t, "Acme")
	deptIT := f.seedDepartment(t, "IT")
	deptHR := f.seedDepartment(t, "HR")
	manager := f.seedUser(t, "manager", model.RoleManager)
	f.seedProfile(t, manager.ID, &deptIT.ID, company.ID)

	isMain := false
	visible, err := petitionSvc.Create(context.Background(), admin.ID, CreatePetitionRequest{
		Title:        "Visible",
		Description:  "desc",
		IsMain:       &isMain,
		DepartmentID: deptIT.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)
	hidden, err := petitionSvc.Create(context.Background(), admin.ID, CreatePetitionRequest{
		Title:        "Hidden",
		Description:  "desc",
		IsMain:       &isMain,
		DepartmentID: deptHR.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)

	// The two newest commissions hang off the petition the manager cannot see.
	for i, pid := range []string{visible.ID, visible.ID, hidden.ID, hidden.ID} {
		_, err := svc.Create(context.Background(), admin.ID, CreateCommissionRequest{
			Description: fmt.Sprintf("chunk %d", i),
			PetitionID:  pid,
		})
		require.NoError(t, err)
	}

	rows, total, err := svc.List(context.Background(), manager.ID, "", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, visible.ID, row.PetitionID)
	}

	rows, _, err = svc.List(context.Background(), manager.ID, "", "", 2, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, total, err = svc.List(context.Background(), admin.ID, "", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}
