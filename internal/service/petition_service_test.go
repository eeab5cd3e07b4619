package service

import (
	"context"
	"testing"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	ws "taskflow/internal/websocket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPetitionService(f *fixture, mail *recordingMailer) PetitionService {
	notifier := NewNotifier(f.db, f.notificationRepo, mail, nil, "http://localhost:5173")
	return NewPetitionService(f.db, f.petitionRepo, f.departmentRepo, f.companyRepo, f.auditRepo, f.txManager, notifier)
}

func TestParseHours(t *testing.T) {
	d, err := ParseHours("02:30")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+30*time.Minute, d)

	d, err = ParseHours("150:05")
	require.NoError(t, err)
	assert.Equal(t, 150*time.Hour+5*time.Minute, d)

	for _, raw := range []string{"2:5", "abc", "02:60", "-1:00", "02.30", ""} {
		_, err := ParseHours(raw)
		require.Error(t, err, raw)
		assert.Equal(t, "hours", apperr.Field(err), raw)
	}

	assert.Equal(t, "02:30", FormatHours(2*time.Hour+30*time.Minute))
	assert.Equal(t, "150:05", FormatHours(150*time.Hour+5*time.Minute))
}

func TestCreatePetitionRejectsBadDates(t *testing.T) {
	f := newFixture(t)
	svc := newPetitionService(f, &recordingMailer{})

	author := f.seedUser(t, "author", model.RoleEmployee)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start // not strictly after

	_, err := svc.Create(context.Background(), author.ID, CreatePetitionRequest{
		Title:        "Equipos",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
		StartDate:    &start,
		EndDate:      &end,
	})
	require.Error(t, err)
	assert.Equal(t, "end_date", apperr.Field(err))
}

func TestCreatePetitionFanOut(t *testing.T) {
	f := newFixture(t)
	mail := &recordingMailer{}
	svc := newPetitionService(f, mail)

	company := f.seedCompany(t, "Acme")
	otherCompany := f.seedCompany(t, "Globex")
	department := f.seedDepartment(t, "IT")
	otherDepartment := f.seedDepartment(t, "HR")

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	author := f.seedUser(t, "author", model.RoleEmployee)

	manager := f.seedUser(t, "manager", model.RoleManager)
	f.seedProfile(t, manager.ID, &department.ID, company.ID)
	otherManager := f.seedUser(t, "othermanager", model.RoleManager)
	f.seedProfile(t, otherManager.ID, &otherDepartment.ID, company.ID)

	client := f.seedUser(t, "client", model.RoleClient)
	f.seedProfile(t, client.ID, nil, company.ID)
	otherClient := f.seedUser(t, "otherclient", model.RoleClient)
	f.seedProfile(t, otherClient.ID, nil, otherCompany.ID)

	// Client of another company bridged into Acme.
	bridgedClient := f.seedUser(t, "bridged", model.RoleClient)
	bridgedHR := f.seedProfile(t, bridgedClient.ID, nil, otherCompany.ID)
	require.NoError(t, f.db.Create(&model.ClientCompany{HumanResourceID: bridgedHR.ID, CompanyID: company.ID}).Error)

	created, err := svc.Create(context.Background(), author.ID, CreatePetitionRequest{
		Title:        "Mantenimiento de Equipos NIB",
		Description:  "Revisión general",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
		Hours:        "08:00",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, created.StatusApproval)
	assert.Equal(t, "08:00", created.Hours)

	var notifications []model.Notification
	require.NoError(t, f.db.Find(&notifications).Error)

	recipients := map[string]bool{}
	for _, n := range notifications {
		recipients[n.RecipientID.String()] = true
		assert.Equal(t, "Se ha creado una nueva petición: Mantenimiento de Equipos NIB", n.Message)
		assert.Equal(t, model.NotificationUnread, n.Status)
	}

	assert.True(t, recipients[admin.ID.String()], "admin is always notified")
	assert.True(t, recipients[manager.ID.String()], "manager of the department is notified")
	assert.True(t, recipients[client.ID.String()], "client of the company is notified")
	assert.True(t, recipients[bridgedClient.ID.String()], "bridged client is notified")
	assert.False(t, recipients[otherManager.ID.String()], "manager of another department stays quiet")
	assert.False(t, recipients[otherClient.ID.String()], "client of another company stays quiet")
	assert.False(t, recipients[author.ID.String()], "employee author gets no notification")
	assert.Len(t, notifications, 4)

	assert.Len(t, mail.sent, 4)
	for _, m := range mail.sent {
		assert.Equal(t, "Nueva Notificación - Peticiones", m.Subject)
	}

	var audits []model.AuditLog
	require.NoError(t, f.db.Find(&audits, "action = ?", model.ActionCreatePetition).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, created.ID, audits[0].EntityID)
}

func TestUpdatePetitionStatusMachine(t *testing.T) {
	f := newFixture(t)
	mail := &recordingMailer{}
	svc := newPetitionService(f, mail)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	created, err := svc.Create(context.Background(), admin.ID, CreatePetitionRequest{
		Title:        "Upgrade",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)
	id := mustParse(t, created.ID)
	mailsBefore := len(mail.sent)

	// WAITING cannot jump straight to DONE.
	_, err = svc.Update(context.Background(), admin.ID, id, UpdatePetitionRequest{StatusApproval: model.StatusDone})
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	updated, err := svc.Update(context.Background(), admin.ID, id, UpdatePetitionRequest{StatusApproval: model.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.StatusApproval)
	assert.Greater(t, len(mail.sent), mailsBefore, "approval outcome notifies stakeholders")

	var statusNotifications []model.Notification
	require.NoError(t, f.db.Find(&statusNotifications, "message = ?", "La petición 'Upgrade' ha cambiado de estado a APPROVED.").Error)
	assert.NotEmpty(t, statusNotifications)

	// APPROVED cannot go back.
	_, err = svc.Update(context.Background(), admin.ID, id, UpdatePetitionRequest{StatusApproval: model.StatusWaiting})
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	updated, err = svc.Update(context.Background(), admin.ID, id, UpdatePetitionRequest{StatusApproval: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.StatusApproval)
}

func TestPetitionSoftDeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	svc := newPetitionService(f, &recordingMailer{})

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	employee := f.seedUser(t, "employee", model.RoleEmployee)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	created, err := svc.Create(context.Background(), employee.ID, CreatePetitionRequest{
		Title:        "Backup",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)
	id := mustParse(t, created.ID)

	// Only admins delete.
	err = svc.SoftDelete(context.Background(), employee.ID, id)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, svc.SoftDelete(context.Background(), admin.ID, id))

	// Deleted records leave the active scope.
	_, err = svc.Get(context.Background(), admin.ID, id)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Activate(context.Background(), admin.ID, id))

	got, err := svc.Get(context.Background(), admin.ID, id)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestRestoreRejectedForFinishedPetition(t *testing.T) {
	f := newFixture(t)
	svc := newPetitionService(f, &recordingMailer{})

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	created, err := svc.Create(context.Background(), admin.ID, CreatePetitionRequest{
		Title:        "Final",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)
	id := mustParse(t, created.ID)

	_, err = svc.Update(context.Background(), admin.ID, id, UpdatePetitionRequest{StatusApproval: model.StatusApproved})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), admin.ID, id, UpdatePetitionRequest{StatusApproval: model.StatusDone})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), admin.ID, id))

	err = svc.Activate(context.Background(), admin.ID, id)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestFanOutAddressesPushToRecipientsOnly(t *testing.T) {
	f := newFixture(t)
	hub := ws.NewHub()
	notifier := NewNotifier(f.db, f.notificationRepo, &recordingMailer{}, hub, "http://localhost:5173")
	svc := NewPetitionService(f.db, f.petitionRepo, f.departmentRepo, f.companyRepo, f.auditRepo, f.txManager, notifier)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	author := f.seedUser(t, "author", model.RoleEmployee)
	company := f.seedCompany(t, "Acme")
	department := f.seedDepartment(t, "IT")

	_, err := svc.Create(context.Background(), author.ID, CreatePetitionRequest{
		Title:        "Confidencial",
		Description:  "desc",
		DepartmentID: department.ID.String(),
		CompanyID:    company.ID.String(),
	})
	require.NoError(t, err)

	// The envelope names the recipients; the author is not among them.
	select {
	case envelope := <-hub.Notify:
		assert.ElementsMatch(t, []uuid.UUID{admin.ID}, envelope.RecipientIDs)
		assert.Contains(t, string(envelope.Payload), "Se ha creado una nueva petición: Confidencial")
	default:
		t.Fatal("expected a websocket envelope")
	}
}
