package models

import (
	"encoding/json"
	"time"
)

// TimesheetEntry statuses
const (
	TimesheetStatusDraft     = "DRAFT"
	TimesheetStatusSubmitted = "SUBMITTED"
	TimesheetStatusApproved  = "APPROVED"
)

// Assignment is planned effort: days of one user against one tree
// container, spread across a set of calendar months. Months is a JSON
// array of "YYYY-MM" tokens.
type Assignment struct {
	AssignmentID uint     `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	ProjectID    uint     `gorm:"column:project_id;index" json:"project_id"`
	UserID       uint     `gorm:"column:user_id;index" json:"user_id"`
	Days         float64  `gorm:"column:days" json:"days"`
	DailyRate    *float64 `gorm:"column:daily_rate" json:"daily_rate"`
	Months       string   `gorm:"column:months;type:text" json:"-"`

	SectionID  *uint `gorm:"column:section_id" json:"section_id"`
	WorkID     *uint `gorm:"column:work_id" json:"work_id"`
	TaskID     *uint `gorm:"column:task_id" json:"task_id"`
	ActivityID *uint `gorm:"column:activity_id" json:"activity_id"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// ContainerRef resolves the assignment's single populated container column.
func (a *Assignment) ContainerRef() (ContainerRef, bool) {
	return RefFromColumns(nil, a.SectionID, a.WorkID, a.TaskID, a.ActivityID, nil)
}

// SetContainerRef stores the ref into the nullable container columns.
func (a *Assignment) SetContainerRef(ref ContainerRef) {
	_, a.SectionID, a.WorkID, a.TaskID, a.ActivityID, _ = ref.Columns()
}

// MonthList decodes the "YYYY-MM" tokens; malformed data yields nil.
func (a *Assignment) MonthList() []string {
	if a.Months == "" {
		return nil
	}
	var months []string
	if err := json.Unmarshal([]byte(a.Months), &months); err != nil {
		return nil
	}
	return months
}

// SetMonthList encodes the "YYYY-MM" tokens.
func (a *Assignment) SetMonthList(months []string) error {
	if months == nil {
		months = []string{}
	}
	data, err := json.Marshal(months)
	if err != nil {
		return err
	}
	a.Months = string(data)
	return nil
}

// CoversMonth reports whether the assignment's month set contains the
// given 1-based calendar month of a year.
func (a *Assignment) CoversMonth(year, month int) bool {
	token := MonthToken(year, month)
	for _, m := range a.MonthList() {
		if m == token {
			return true
		}
	}
	return false
}

// MonthToken formats a year and 1-based month as "YYYY-MM".
func MonthToken(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// TimesheetEntry is actual logged effort of a user against a project,
// optionally scoped to a tree container.
type TimesheetEntry struct {
	EntryID   uint      `gorm:"primaryKey;column:entry_id" json:"entry_id"`
	ProjectID uint      `gorm:"column:project_id;index" json:"project_id"`
	UserID    uint      `gorm:"column:user_id;index" json:"user_id"`
	WorkDate  time.Time `gorm:"column:work_date" json:"work_date"`
	Hours     float64   `gorm:"column:hours" json:"hours"`
	Status    string    `gorm:"column:status;default:DRAFT" json:"status"`

	SectionID  *uint `gorm:"column:section_id" json:"section_id"`
	WorkID     *uint `gorm:"column:work_id" json:"work_id"`
	TaskID     *uint `gorm:"column:task_id" json:"task_id"`
	ActivityID *uint `gorm:"column:activity_id" json:"activity_id"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// SetContainerRef stores the ref into the nullable container columns.
func (e *TimesheetEntry) SetContainerRef(ref ContainerRef) {
	_, e.SectionID, e.WorkID, e.TaskID, e.ActivityID, _ = ref.Columns()
}

// StandardCost is one row of the (area, nation, role) rate card.
type StandardCost struct {
	CostID    uint       `gorm:"primaryKey;column:cost_id" json:"cost_id"`
	Area      string     `gorm:"column:area;index:idx_cost_key,unique" json:"area"`
	Nation    string     `gorm:"column:nation;index:idx_cost_key,unique" json:"nation"`
	Role      string     `gorm:"column:role;index:idx_cost_key,unique" json:"role"`
	DailyRate float64    `gorm:"column:daily_rate" json:"daily_rate"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides
func (Assignment) TableName() string {
	return "assignments"
}

func (TimesheetEntry) TableName() string {
	return "timesheet_entries"
}

func (StandardCost) TableName() string {
	return "standard_costs"
}
