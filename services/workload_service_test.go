package services

import (
	"testing"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

func declareAvailability(t *testing.T, db *gorm.DB, userID uint, year int, caps [12]int) {
	t.Helper()
	availability := models.UserAvailability{UserID: userID, Year: year}
	if err := availability.SetCapacities(caps); err != nil {
		t.Fatalf("SetCapacities failed: %v", err)
	}
	if err := db.Create(&availability).Error; err != nil {
		t.Fatalf("failed to create availability: %v", err)
	}
}

func TestCheckWorkloadOverload(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkloadService(db)
	project := createTestProject(t, db, "Overload")
	user := createTestUser(t, db, "overload@example.org")

	declareAvailability(t, db, user.UserID, 2026, [12]int{8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8})
	createAssignment(t, db, project.ProjectID, user.UserID, 10, nil, models.ContainerRef{}, []string{"2026-04"})

	report, err := svc.CheckWorkload(user.UserID, 2026, 4)
	if err != nil {
		t.Fatalf("CheckWorkload failed: %v", err)
	}
	if report.PlannedDays != 10 || report.CapacityDays != 8 {
		t.Fatalf("demand/capacity mismatch: %+v", report)
	}
	if report.Percentage != 125 {
		t.Fatalf("percentage mismatch: got %v, want 125", report.Percentage)
	}
	if report.Status != WorkloadOverload {
		t.Fatalf("status mismatch: got %s, want %s", report.Status, WorkloadOverload)
	}
}

func TestCheckWorkloadWarningBand(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkloadService(db)
	project := createTestProject(t, db, "Warning")
	user := createTestUser(t, db, "warning@example.org")

	declareAvailability(t, db, user.UserID, 2026, [12]int{0, 0, 0, 0, 10, 0, 0, 0, 0, 0, 0, 0})
	createAssignment(t, db, project.ProjectID, user.UserID, 8, nil, models.ContainerRef{}, []string{"2026-05"})

	report, err := svc.CheckWorkload(user.UserID, 2026, 5)
	if err != nil {
		t.Fatalf("CheckWorkload failed: %v", err)
	}
	if report.Status != WorkloadWarning {
		t.Fatalf("80%% load should warn: %+v", report)
	}

	// Exactly 100% is still a warning, not an overload.
	createAssignment(t, db, project.ProjectID, user.UserID, 2, nil, models.ContainerRef{}, []string{"2026-05"})
	report, err = svc.CheckWorkload(user.UserID, 2026, 5)
	if err != nil {
		t.Fatalf("CheckWorkload failed: %v", err)
	}
	if report.Status != WorkloadWarning {
		t.Fatalf("100%% load should warn, not overload: %+v", report)
	}
}

func TestCheckWorkloadIsCrossProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkloadService(db)
	first := createTestProject(t, db, "First")
	second := createTestProject(t, db, "Second")
	user := createTestUser(t, db, "shared@example.org")

	declareAvailability(t, db, user.UserID, 2026, [12]int{0, 0, 0, 0, 0, 0, 0, 0, 10, 0, 0, 0})
	createAssignment(t, db, first.ProjectID, user.UserID, 6, nil, models.ContainerRef{}, []string{"2026-09"})
	createAssignment(t, db, second.ProjectID, user.UserID, 6, nil, models.ContainerRef{}, []string{"2026-09"})

	report, err := svc.CheckWorkload(user.UserID, 2026, 9)
	if err != nil {
		t.Fatalf("CheckWorkload failed: %v", err)
	}
	if report.PlannedDays != 12 {
		t.Fatalf("demand must sum across projects: got %v days", report.PlannedDays)
	}
	if report.Status != WorkloadOverload {
		t.Fatalf("status mismatch: %+v", report)
	}
}

func TestCheckWorkloadNoCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkloadService(db)
	project := createTestProject(t, db, "NoCapacity")
	user := createTestUser(t, db, "nocap@example.org")

	// No availability record at all, demand present.
	createAssignment(t, db, project.ProjectID, user.UserID, 3, nil, models.ContainerRef{}, []string{"2026-07"})
	report, err := svc.CheckWorkload(user.UserID, 2026, 7)
	if err != nil {
		t.Fatalf("CheckWorkload failed: %v", err)
	}
	if report.Status != WorkloadNoCapacity {
		t.Fatalf("demand against zero capacity should be NO_CAPACITY: %+v", report)
	}

	// Zero capacity and zero demand is simply OK.
	report, err = svc.CheckWorkload(user.UserID, 2026, 8)
	if err != nil {
		t.Fatalf("CheckWorkload failed: %v", err)
	}
	if report.Status != WorkloadOK {
		t.Fatalf("idle month should be OK: %+v", report)
	}
}

func TestCheckWorkloadRejectsBadMonth(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkloadService(db)
	if _, err := svc.CheckWorkload(1, 2026, 13); err == nil {
		t.Fatal("month 13 must be rejected")
	}
}

func TestYearWorkloadReportsTwelveMonths(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkloadService(db)
	user := createTestUser(t, db, "year@example.org")

	reports, err := svc.YearWorkload(user.UserID, 2026)
	if err != nil {
		t.Fatalf("YearWorkload failed: %v", err)
	}
	if len(reports) != 12 {
		t.Fatalf("expected 12 reports, got %d", len(reports))
	}
	for i, report := range reports {
		if report.Month != i+1 {
			t.Fatalf("report %d has month %d", i, report.Month)
		}
	}
}
