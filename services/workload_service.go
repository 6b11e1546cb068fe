package services

import (
	"errors"
	"log"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// Workload statuses
const (
	WorkloadOK         = "OK"
	WorkloadWarning    = "WARNING"
	WorkloadOverload   = "OVERLOAD"
	WorkloadNoCapacity = "NO_CAPACITY"
)

// WorkloadReport is the outcome of one monthly overload check.
type WorkloadReport struct {
	UserID       uint    `json:"user_id"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	PlannedDays  float64 `json:"planned_days"`
	CapacityDays int     `json:"capacity_days"`
	Percentage   float64 `json:"percentage"`
	Status       string  `json:"status"`
}

// WorkloadService checks planned demand against per-month availability.
// The check is cross-project: a user's time is one shared pool no
// matter how many projects assign them.
type WorkloadService struct {
	db *gorm.DB
}

func NewWorkloadService(db *gorm.DB) *WorkloadService {
	return &WorkloadService{db: db}
}

// CheckWorkload sums the user's assignment days across all projects
// whose month set includes the given month and classifies the ratio
// against the user's availability. Missing availability degrades to
// NO_CAPACITY, never an error.
func (s *WorkloadService) CheckWorkload(userID uint, year, month int) (*WorkloadReport, error) {
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Message: "month must be 1-12"}
	}

	report := &WorkloadReport{UserID: userID, Year: year, Month: month, Status: WorkloadOK}

	var assignments []models.Assignment
	if err := s.db.Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i].CoversMonth(year, month) {
			report.PlannedDays += assignments[i].Days
		}
	}

	var availability models.UserAvailability
	err := s.db.Where("user_id = ? AND year = ?", userID, year).First(&availability).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Warning: availability lookup for user %d year %d failed: %v", userID, year, err)
		}
	} else {
		report.CapacityDays = availability.CapacityFor(month)
	}

	if report.CapacityDays == 0 {
		if report.PlannedDays > 0 {
			report.Status = WorkloadNoCapacity
		}
		return report, nil
	}

	report.Percentage = report.PlannedDays / float64(report.CapacityDays) * 100
	switch {
	case report.Percentage > 100:
		report.Status = WorkloadOverload
	case report.Percentage >= 80:
		report.Status = WorkloadWarning
	}
	return report, nil
}

// YearWorkload runs the monthly check for all twelve months of a year.
func (s *WorkloadService) YearWorkload(userID uint, year int) ([]WorkloadReport, error) {
	reports := make([]WorkloadReport, 0, 12)
	for month := 1; month <= 12; month++ {
		report, err := s.CheckWorkload(userID, year, month)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
