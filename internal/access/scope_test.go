package access

import (
	"context"
	"testing"

	"taskflow/internal/database"
	"taskflow/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
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

func seedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPetition(t *testing.T, db *gorm.DB, title string, departmentID, companyID, userID uuid.UUID) *model.Petition {
	t.Helper()
	p := &model.Petition{
		Title:          title,
		Description:    "d",
		Priority:       model.PriorityLow,
		StatusApproval: model.StatusWaiting,
		DepartmentID:   departmentID,
		CompanyID:      companyID,
		UserID:         userID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func visiblePetitions(t *testing.T, db *gorm.DB, s Scope) []string {
	t.Helper()
	var petitions []model.Petition
	require.NoError(t, s.FilterPetitions(model.ScopeActive(db.Model(&model.Petition{}))).Find(&petitions).Error)
	titles := make([]string, 0, len(petitions))
	for _, p := range petitions {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestScopeVisibility(t *testing.T) {
	db := newTestDB(t)

	companyA := &model.Company{Name: "A"}
	companyB := &model.Company{Name: "B"}
	deptIT := &model.Department{Name: "IT"}
	deptHR := &model.Department{Name: "HR"}
	require.NoError(t, db.Create(companyA).Error)
	require.NoError(t, db.Create(companyB).Error)
	require.NoError(t, db.Create(deptIT).Error)
	require.NoError(t, db.Create(deptHR).Error)

	admin := seedUser(t, db, "admin", model.RoleAdmin)
	employee := seedUser(t, db, "employee", model.RoleEmployee)
	colleague := seedUser(t, db, "colleague", model.RoleEmployee)

	manager := seedUser(t, db, "manager", model.RoleManager)
	require.NoError(t, db.Create(&model.HumanResource{UserID: manager.ID, DepartmentID: &deptIT.ID, CompanyID: companyA.ID}).Error)

	lostManager := seedUser(t, db, "lostmanager", model.RoleManager)
	require.NoError(t, db.Create(&model.HumanResource{UserID: lostManager.ID, DepartmentID: nil, CompanyID: companyA.ID}).Error)

	client := seedUser(t, db, "client", model.RoleClient)
	require.NoError(t, db.Create(&model.HumanResource{UserID: client.ID, CompanyID: companyA.ID}).Error)

	seedPetition(t, db, "it-a", deptIT.ID, companyA.ID, employee.ID)
	seedPetition(t, db, "hr-a", deptHR.ID, companyA.ID, colleague.ID)
	seedPetition(t, db, "it-b", deptIT.ID, companyB.ID, colleague.ID)

	ctx := context.Background()

	adminScope, err := Resolve(ctx, db, admin.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"it-a", "hr-a", "it-b"}, visiblePetitions(t, db, adminScope))

	managerScope, err := Resolve(ctx, db, manager.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"it-a", "it-b"}, visiblePetitions(t, db, managerScope))

	// A manager without a department sees nothing, never everything.
	lostScope, err := Resolve(ctx, db, lostManager.ID)
	require.NoError(t, err)
	assert.Empty(t, visiblePetitions(t, db, lostScope))

	employeeScope, err := Resolve(ctx, db, employee.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"it-a"}, visiblePetitions(t, db, employeeScope))

	clientScope, err := Resolve(ctx, db, client.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"it-a", "hr-a"}, visiblePetitions(t, db, clientScope))
}

func TestClientBridgesReplacePrimaryCompany(t *testing.T) {
	db := newTestDB(t)

	companyA := &model.Company{Name: "A"}
	companyB := &model.Company{Name: "B"}
	require.NoError(t, db.Create(companyA).Error)
	require.NoError(t, db.Create(companyB).Error)
	dept := &model.Department{Name: "IT"}
	require.NoError(t, db.Create(dept).Error)

	author := seedUser(t, db, "author", model.RoleEmployee)
	client := seedUser(t, db, "client", model.RoleClient)
	hr := &model.HumanResource{UserID: client.ID, CompanyID: companyA.ID}
	require.NoError(t, db.Create(hr).Error)
	require.NoError(t, db.Create(&model.ClientCompany{HumanResourceID: hr.ID, CompanyID: companyB.ID}).Error)

	seedPetition(t, db, "in-a", dept.ID, companyA.ID, author.ID)
	seedPetition(t, db, "in-b", dept.ID, companyB.ID, author.ID)

	scope, err := Resolve(context.Background(), db, client.ID)
	require.NoError(t, err)

	// Explicit links define the boundary once they exist.
	assert.ElementsMatch(t, []string{"in-b"}, visiblePetitions(t, db, scope))
}

func TestCanViewPetition(t *testing.T) {
	deptID := uuid.New()
	companyID := uuid.New()
	userID := uuid.New()

	p := &model.Petition{DepartmentID: deptID, CompanyID: companyID, UserID: userID}

	assert.True(t, Scope{Role: model.RoleAdmin}.CanViewPetition(p))
	assert.True(t, Scope{Role: model.RoleManager, DepartmentID: &deptID}.CanViewPetition(p))
	assert.False(t, Scope{Role: model.RoleManager}.CanViewPetition(p))
	assert.True(t, Scope{Role: model.RoleEmployee, UserID: userID}.CanViewPetition(p))
	assert.False(t, Scope{Role: model.RoleEmployee, UserID: uuid.New()}.CanViewPetition(p))
	assert.True(t, Scope{Role: model.RoleClient, CompanyIDs: []uuid.UUID{companyID}}.CanViewPetition(p))
	assert.False(t, Scope{Role: model.RoleClient}.CanViewPetition(p))
	assert.False(t, Scope{}.CanViewPetition(p))
}

func TestResolveUnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := Resolve(context.Background(), db, uuid.New())
	require.Error(t, err)
}
