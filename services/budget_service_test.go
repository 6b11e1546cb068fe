package services

import (
	"testing"
	"time"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

func createAssignment(t *testing.T, db *gorm.DB, projectID, userID uint, days float64, rate *float64, ref models.ContainerRef, months []string) *models.Assignment {
	t.Helper()
	assignment := &models.Assignment{
		ProjectID: projectID,
		UserID:    userID,
		Days:      days,
		DailyRate: rate,
	}
	if !ref.IsZero() {
		assignment.SetContainerRef(ref)
	}
	if err := assignment.SetMonthList(months); err != nil {
		t.Fatalf("SetMonthList failed: %v", err)
	}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("failed to create assignment: %v", err)
	}
	return assignment
}

func logHours(t *testing.T, db *gorm.DB, projectID, userID uint, day string, hours float64) {
	t.Helper()
	workDate, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad test date %q: %v", day, err)
	}
	entry := models.TimesheetEntry{
		ProjectID: projectID,
		UserID:    userID,
		WorkDate:  workDate,
		Hours:     hours,
		Status:    models.TimesheetStatusApproved,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to create timesheet entry: %v", err)
	}
}

func TestProjectEffortSummaryVariance(t *testing.T) {
	db := newTestDB(t)
	svc := NewBudgetService(db)
	project := createTestProject(t, db, "Variance")
	user := createTestUser(t, db, "variance@example.org")

	rate := 300.0
	createAssignment(t, db, project.ProjectID, user.UserID, 5, &rate, models.ContainerRef{}, []string{"2026-03"})
	logHours(t, db, project.ProjectID, user.UserID, "2026-03-02", 8)
	logHours(t, db, project.ProjectID, user.UserID, "2026-03-03", 8)
	logHours(t, db, project.ProjectID, user.UserID, "2026-03-04", 8)
	logHours(t, db, project.ProjectID, user.UserID, "2026-03-05", 8)

	summaries, err := svc.ProjectEffortSummary(project.ProjectID)
	if err != nil {
		t.Fatalf("ProjectEffortSummary failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary line, got %d", len(summaries))
	}
	entry := summaries[0]
	if entry.PlannedDays != 5 || entry.PlannedHours != 40 {
		t.Fatalf("planned effort mismatch: %+v", entry)
	}
	if entry.ActualHours != 32 {
		t.Fatalf("actual hours mismatch: %+v", entry)
	}
	if entry.Variance != 8 {
		t.Fatalf("variance mismatch: got %v, want 8", entry.Variance)
	}
	if entry.Utilization != 80 {
		t.Fatalf("utilization mismatch: got %v, want 80", entry.Utilization)
	}
	// 5 days x 300.00 = 150000 cents.
	if entry.PlannedCost != 150000 {
		t.Fatalf("planned cost mismatch: got %d cents, want 150000", entry.PlannedCost)
	}
}

func TestProjectEffortSummaryIncludesActualOnlyUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewBudgetService(db)
	project := createTestProject(t, db, "ActualOnly")
	user := createTestUser(t, db, "actual@example.org")

	logHours(t, db, project.ProjectID, user.UserID, "2026-02-10", 6)

	summaries, err := svc.ProjectEffortSummary(project.ProjectID)
	if err != nil {
		t.Fatalf("ProjectEffortSummary failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary line, got %d", len(summaries))
	}
	entry := summaries[0]
	if entry.PlannedDays != 0 || entry.ActualHours != 6 {
		t.Fatalf("actual-only user mismatch: %+v", entry)
	}
	if entry.Utilization != 0 {
		t.Fatalf("utilization with zero plan must stay 0, got %v", entry.Utilization)
	}
}

func TestPartnerBudgetsUseLegacyAttribution(t *testing.T) {
	db := newTestDB(t)
	svc := NewBudgetService(db)
	project := createTestProject(t, db, "PartnerBudgets")

	partner := models.Partner{ProjectID: project.ProjectID, Name: "Coordinator", Role: models.PartnerRoleCoordinator, Budget: 10000}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("failed to create partner: %v", err)
	}

	// The user is attributed through the legacy direct link, not through
	// a ProjectMember row.
	user := createTestUser(t, db, "legacy@example.org")
	if err := db.Model(&models.User{}).Where("user_id = ?", user.UserID).
		Update("partner_id", partner.PartnerID).Error; err != nil {
		t.Fatalf("failed to set legacy partner link: %v", err)
	}

	rate := 250.0
	createAssignment(t, db, project.ProjectID, user.UserID, 10, &rate, models.ContainerRef{}, []string{"2026-05"})

	budgets, err := svc.PartnerBudgets(project.ProjectID)
	if err != nil {
		t.Fatalf("PartnerBudgets failed: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected one partner line, got %d", len(budgets))
	}
	line := budgets[0]
	if line.Declared != 1000000 {
		t.Fatalf("declared mismatch: got %d cents", line.Declared)
	}
	if line.Consumed != 250000 {
		t.Fatalf("consumed mismatch: got %d cents, want 250000", line.Consumed)
	}
	if line.Remaining != 750000 {
		t.Fatalf("remaining mismatch: got %d cents, want 750000", line.Remaining)
	}
}

func TestContainerBudgetRollsUpDescendants(t *testing.T) {
	db := newTestDB(t)
	tree := NewTreeService(db)
	svc := NewBudgetService(db)
	project := createTestProject(t, db, "Rollup")
	user := createTestUser(t, db, "rollup@example.org")

	budget := 5000.0
	section, err := tree.CreateSection(project.ProjectID, NodeAttrs{Title: "WP block", Budget: &budget})
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	work, err := tree.CreateWork(models.SectionRef(section.SectionID), NodeAttrs{Title: "WP1"})
	if err != nil {
		t.Fatalf("CreateWork failed: %v", err)
	}
	task, err := tree.CreateTask(work.WorkID, NodeAttrs{Title: "T1"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	rate := 100.0
	createAssignment(t, db, project.ProjectID, user.UserID, 3, &rate, models.SectionRef(section.SectionID), []string{"2026-01"})
	createAssignment(t, db, project.ProjectID, user.UserID, 2, &rate, models.TaskRef(task.TaskID), []string{"2026-02"})

	report, err := svc.ContainerBudget(project.ProjectID, models.SectionRef(section.SectionID))
	if err != nil {
		t.Fatalf("ContainerBudget failed: %v", err)
	}
	// 3 + 2 days at 100.00/day, the task assignment counted through the
	// section's subtree.
	if report.Consumed != 50000 {
		t.Fatalf("consumed mismatch: got %d cents, want 50000", report.Consumed)
	}
	if report.Declared == nil || *report.Declared != 500000 {
		t.Fatalf("declared mismatch: %+v", report.Declared)
	}
	if report.Remaining == nil || *report.Remaining != 450000 {
		t.Fatalf("remaining mismatch: %+v", report.Remaining)
	}
}
