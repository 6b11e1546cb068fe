package services

import (
	"testing"

	"consortium-planner-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.UserAvailability{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Invitation{},
		&models.Partner{},
		&models.Organization{},
		&models.PartnerAssignment{},
		&models.Section{},
		&models.Work{},
		&models.Task{},
		&models.Activity{},
		&models.Module{},
		&models.TextComponent{},
		&models.ModuleMember{},
		&models.Assignment{},
		&models.TimesheetEntry{},
		&models.StandardCost{},
		&models.ProjectSnapshot{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func createTestProject(t *testing.T, db *gorm.DB, title string) *models.Project {
	t.Helper()
	project := &models.Project{Title: title, Status: models.ProjectStatusActive}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{FirstName: "Test", LastName: "User", Email: email}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}
