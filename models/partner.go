package models

import "time"

// Partner roles within a consortium
const (
	PartnerRoleCoordinator = "COORDINATOR"
	PartnerRolePartner     = "PARTNER"
	PartnerRoleAssociated  = "ASSOCIATED"
)

// PartnerAssignment roles on a tree container
const (
	AssignmentRoleLead        = "LEAD"
	AssignmentRoleCoLead      = "CO_LEAD"
	AssignmentRoleBeneficiary = "BENEFICIARY"
)

// Partner is a consortium organization participating in exactly one
// project. Organization is the cross-project directory entry.
type Partner struct {
	PartnerID    uint       `gorm:"primaryKey;column:partner_id" json:"partner_id"`
	ProjectID    uint       `gorm:"column:project_id;index" json:"project_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Nation       string     `gorm:"column:nation" json:"nation"`
	City         string     `gorm:"column:city" json:"city"`
	Role         string     `gorm:"column:role;default:PARTNER" json:"role"`
	Type         string     `gorm:"column:type" json:"type"`
	Budget       float64    `gorm:"column:budget" json:"budget"`
	ContactName  string     `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail string     `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone string     `gorm:"column:contact_phone" json:"contact_phone"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// Organization is the global, cross-project partner directory.
type Organization struct {
	OrganizationID uint       `gorm:"primaryKey;column:organization_id" json:"organization_id"`
	Name           string     `gorm:"column:name" json:"name"`
	Nation         string     `gorm:"column:nation" json:"nation"`
	City           string     `gorm:"column:city" json:"city"`
	Type           string     `gorm:"column:type" json:"type"`
	Website        string     `gorm:"column:website" json:"website"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// PartnerAssignment joins a partner to one tree container with a role.
// Supersedes the legacy single LeadPartnerID column on the containers.
type PartnerAssignment struct {
	PartnerAssignmentID uint     `gorm:"primaryKey;column:partner_assignment_id" json:"partner_assignment_id"`
	PartnerID           uint     `gorm:"column:partner_id;index" json:"partner_id"`
	Role                string   `gorm:"column:role;default:BENEFICIARY" json:"role"`
	BudgetShare         *float64 `gorm:"column:budget_share" json:"budget_share"`
	ResponsibleUserID   *uint    `gorm:"column:responsible_user_id" json:"responsible_user_id"`

	SectionID  *uint `gorm:"column:section_id" json:"section_id"`
	WorkID     *uint `gorm:"column:work_id" json:"work_id"`
	TaskID     *uint `gorm:"column:task_id" json:"task_id"`
	ActivityID *uint `gorm:"column:activity_id" json:"activity_id"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	Partner Partner `gorm:"foreignKey:PartnerID;references:PartnerID" json:"partner,omitempty"`
}

// ContainerRef resolves the assignment's single populated container column.
func (a *PartnerAssignment) ContainerRef() (ContainerRef, bool) {
	return RefFromColumns(nil, a.SectionID, a.WorkID, a.TaskID, a.ActivityID, nil)
}

// SetContainerRef stores the ref into the nullable container columns.
func (a *PartnerAssignment) SetContainerRef(ref ContainerRef) {
	_, a.SectionID, a.WorkID, a.TaskID, a.ActivityID, _ = ref.Columns()
}

// TableName overrides
func (Partner) TableName() string {
	return "partners"
}

func (Organization) TableName() string {
	return "organizations"
}

func (PartnerAssignment) TableName() string {
	return "partner_assignments"
}
