package models

import "time"

// Section is the top structural level under a project.
type Section struct {
	SectionID     uint       `gorm:"primaryKey;column:section_id" json:"section_id"`
	ProjectID     uint       `gorm:"column:project_id;index" json:"project_id"`
	Title         string     `gorm:"column:title" json:"title"`
	StartDate     *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate       *time.Time `gorm:"column:end_date" json:"end_date"`
	Budget        *float64   `gorm:"column:budget" json:"budget"`
	OrderIndex    int        `gorm:"column:order_index" json:"order_index"`
	LeadPartnerID *uint      `gorm:"column:lead_partner_id" json:"lead_partner_id"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Works   []Work   `gorm:"foreignKey:SectionID;references:SectionID" json:"works,omitempty"`
	Modules []Module `gorm:"foreignKey:SectionID;references:SectionID" json:"modules,omitempty"`
}

// Work is a work package. Its parent is either a section or, when the
// project has no sections, the project itself; exactly one of SectionID
// and ProjectID is set.
type Work struct {
	WorkID        uint       `gorm:"primaryKey;column:work_id" json:"work_id"`
	ProjectID     *uint      `gorm:"column:project_id" json:"project_id"`
	SectionID     *uint      `gorm:"column:section_id" json:"section_id"`
	Title         string     `gorm:"column:title" json:"title"`
	StartDate     *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate       *time.Time `gorm:"column:end_date" json:"end_date"`
	Budget        *float64   `gorm:"column:budget" json:"budget"`
	OrderIndex    int        `gorm:"column:order_index" json:"order_index"`
	LeadPartnerID *uint      `gorm:"column:lead_partner_id" json:"lead_partner_id"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Tasks   []Task   `gorm:"foreignKey:WorkID;references:WorkID" json:"tasks,omitempty"`
	Modules []Module `gorm:"foreignKey:WorkID;references:WorkID" json:"modules,omitempty"`
}

// ParentRef resolves the work's single populated parent column.
func (w *Work) ParentRef() (ContainerRef, bool) {
	return RefFromColumns(w.ProjectID, w.SectionID, nil, nil, nil, nil)
}

// Task always lives under a work package.
type Task struct {
	TaskID        uint       `gorm:"primaryKey;column:task_id" json:"task_id"`
	WorkID        uint       `gorm:"column:work_id;index" json:"work_id"`
	Title         string     `gorm:"column:title" json:"title"`
	StartDate     *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate       *time.Time `gorm:"column:end_date" json:"end_date"`
	Budget        *float64   `gorm:"column:budget" json:"budget"`
	OrderIndex    int        `gorm:"column:order_index" json:"order_index"`
	LeadPartnerID *uint      `gorm:"column:lead_partner_id" json:"lead_partner_id"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Activities []Activity `gorm:"foreignKey:TaskID;references:TaskID" json:"activities,omitempty"`
	Modules    []Module   `gorm:"foreignKey:TaskID;references:TaskID" json:"modules,omitempty"`
}

// Activity is the leaf structural level under a task.
type Activity struct {
	ActivityID    uint       `gorm:"primaryKey;column:activity_id" json:"activity_id"`
	TaskID        uint       `gorm:"column:task_id;index" json:"task_id"`
	Title         string     `gorm:"column:title" json:"title"`
	StartDate     *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate       *time.Time `gorm:"column:end_date" json:"end_date"`
	Budget        *float64   `gorm:"column:budget" json:"budget"`
	OrderIndex    int        `gorm:"column:order_index" json:"order_index"`
	LeadPartnerID *uint      `gorm:"column:lead_partner_id" json:"lead_partner_id"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Modules []Module `gorm:"foreignKey:ActivityID;references:ActivityID" json:"modules,omitempty"`
}

// TableName overrides
func (Section) TableName() string {
	return "sections"
}

func (Work) TableName() string {
	return "works"
}

func (Task) TableName() string {
	return "tasks"
}

func (Activity) TableName() string {
	return "activities"
}
