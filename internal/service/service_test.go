package service

import (
	"testing"

	"taskflow/internal/database"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db *gorm.DB

	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	companyRepo      repository.CompanyRepository
	departmentRepo   repository.DepartmentRepository
	hrRepo           repository.HumanResourceRepository
	petitionRepo     repository.PetitionRepository
	commissionRepo   repository.CommissionRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditRepository
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:               db,
		txManager:        repository.NewTransactionManager(db),
		userRepo:         repository.NewUserRepository(db),
		companyRepo:      repository.NewCompanyRepository(db),
		departmentRepo:   repository.NewDepartmentRepository(db),
		hrRepo:           repository.NewHumanResourceRepository(db),
		petitionRepo:     repository.NewPetitionRepository(db),
		commissionRepo:   repository.NewCommissionRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		auditRepo:        repository.NewAuditRepository(db),
	}
}

func (f *fixture) seedUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
		Verified: true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) seedCompany(t *testing.T, name string) *model.Company {
	t.Helper()
	company := &model.Company{Name: name}
	require.NoError(t, f.db.Create(company).Error)
	return company
}

func (f *fixture) seedDepartment(t *testing.T, name string) *model.Department {
	t.Helper()
	department := &model.Department{Name: name}
	require.NoError(t, f.db.Create(department).Error)
	return department
}

func (f *fixture) seedProfile(t *testing.T, userID uuid.UUID, departmentID *uuid.UUID, companyID uuid.UUID) *model.HumanResource {
	t.Helper()
	hr := &model.HumanResource{
		UserID:       userID,
		DepartmentID: departmentID,
		CompanyID:    companyID,
	}
	require.NoError(t, f.db.Create(hr).Error)
	return hr
}

func mustParse(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	require.NoError(t, err)
	return id
}

// recordingMailer captures outgoing mail for assertions.
type recordingMailer struct {
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Text    string
}

func (m *recordingMailer) Send(to, subject, textBody, htmlBody string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Text: textBody})
	return nil
}
