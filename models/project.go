package models

import (
	"encoding/json"
	"time"
)

// Project statuses
const (
	ProjectStatusDraft     = "DRAFT"
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusArchived  = "ARCHIVED"
)

// Project is the root aggregate of a consortium work plan.
type Project struct {
	ProjectID      uint       `gorm:"primaryKey;column:project_id" json:"project_id"`
	Title          string     `gorm:"column:title" json:"title"`
	Acronym        string     `gorm:"column:acronym" json:"acronym"`
	StartDate      *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate        *time.Time `gorm:"column:end_date" json:"end_date"`
	DurationMonths int        `gorm:"column:duration_months" json:"duration_months"`
	Status         string     `gorm:"column:status;default:DRAFT" json:"status"`
	IsTemplate     bool       `gorm:"column:is_template" json:"is_template"`
	CreatedBy      *uint      `gorm:"column:created_by" json:"created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Partners    []Partner         `gorm:"foreignKey:ProjectID;references:ProjectID" json:"partners,omitempty"`
	Sections    []Section         `gorm:"foreignKey:ProjectID;references:ProjectID" json:"sections,omitempty"`
	Works       []Work            `gorm:"foreignKey:ProjectID;references:ProjectID" json:"works,omitempty"`
	Modules     []Module          `gorm:"foreignKey:ProjectID;references:ProjectID" json:"modules,omitempty"`
	Members     []ProjectMember   `gorm:"foreignKey:ProjectID;references:ProjectID" json:"members,omitempty"`
	Invitations []Invitation      `gorm:"foreignKey:ProjectID;references:ProjectID" json:"invitations,omitempty"`
	Snapshots   []ProjectSnapshot `gorm:"foreignKey:ProjectID;references:ProjectID" json:"snapshots,omitempty"`
}

// ProjectMember binds a user to a project and a partner with a set of
// roles. Canonical membership link; see User.PartnerID for the legacy one.
type ProjectMember struct {
	MemberID          uint       `gorm:"primaryKey;column:member_id" json:"member_id"`
	ProjectID         uint       `gorm:"column:project_id;index:idx_member_project_user,unique" json:"project_id"`
	UserID            uint       `gorm:"column:user_id;index:idx_member_project_user,unique" json:"user_id"`
	PartnerID         *uint      `gorm:"column:partner_id" json:"partner_id"`
	Roles             string     `gorm:"column:roles;type:text" json:"-"`
	CustomDailyRate   *float64   `gorm:"column:custom_daily_rate" json:"custom_daily_rate"`
	ParticipationMode string     `gorm:"column:participation_mode" json:"participation_mode"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         *time.Time `gorm:"column:updated_at" json:"updated_at"`

	User    User     `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Partner *Partner `gorm:"foreignKey:PartnerID;references:PartnerID" json:"partner,omitempty"`
}

// RoleList decodes the member's roles; malformed data yields an empty list.
func (m *ProjectMember) RoleList() []string {
	if m.Roles == "" {
		return nil
	}
	var roles []string
	if err := json.Unmarshal([]byte(m.Roles), &roles); err != nil {
		return nil
	}
	return roles
}

// SetRoleList encodes the member's roles.
func (m *ProjectMember) SetRoleList(roles []string) error {
	if roles == nil {
		roles = []string{}
	}
	data, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	m.Roles = string(data)
	return nil
}

// Invitation is a pending, token-addressed offer to join a project.
type Invitation struct {
	InvitationID uint       `gorm:"primaryKey;column:invitation_id" json:"invitation_id"`
	ProjectID    uint       `gorm:"column:project_id" json:"project_id"`
	Email        string     `gorm:"column:email" json:"email"`
	PartnerID    *uint      `gorm:"column:partner_id" json:"partner_id"`
	Roles        string     `gorm:"column:roles;type:text" json:"-"`
	Token        string     `gorm:"column:token;unique" json:"-"`
	ExpiresAt    time.Time  `gorm:"column:expires_at" json:"expires_at"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at" json:"accepted_at"`
	CreatedBy    uint       `gorm:"column:created_by" json:"created_by"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
}

// IsExpired reports whether the invitation can no longer be accepted.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// TableName overrides
func (Project) TableName() string {
	return "projects"
}

func (ProjectMember) TableName() string {
	return "project_members"
}

func (Invitation) TableName() string {
	return "invitations"
}
