package models

import (
	"encoding/json"
	"time"
)

// Module statuses. WRITING is derived (non-empty official text while
// still TO_DO) and never stored; see EffectiveStatus.
const (
	ModuleStatusToDo        = "TO_DO"
	ModuleStatusWriting     = "WRITING"
	ModuleStatusUnderReview = "UNDER_REVIEW"
	ModuleStatusDone        = "DONE"
	ModuleStatusAuthorized  = "AUTHORIZED"
	ModuleStatusValidated   = "VALIDATED"
)

// Module types
const (
	ModuleTypeText  = "TEXT"
	ModuleTypePopup = "POPUP"
)

// TextComponent types
const (
	ComponentTypeUserText  = "USER_TEXT"
	ComponentTypeCoordNote = "COORD_NOTE"
	ComponentTypeUserNote  = "USER_NOTE"
)

// TextComponent statuses
const (
	ComponentStatusToIntegrate = "TO_INTEGRATE"
	ComponentStatusAccepted    = "ACCEPTED"
	ComponentStatusRejected    = "REJECTED"
)

// ModuleMember roles
const (
	ModuleRoleSupervisor = "SUPERVISOR"
	ModuleRoleLeader     = "LEADER"
	ModuleRoleEditor     = "EDITOR"
	ModuleRoleViewer     = "VIEWER"
)

// Module is a narrative unit attachable to any tree container, or
// nested under another module. Exactly one parent column is set.
type Module struct {
	ModuleID     uint       `gorm:"primaryKey;column:module_id" json:"module_id"`
	Title        string     `gorm:"column:title" json:"title"`
	Subtitle     string     `gorm:"column:subtitle" json:"subtitle"`
	Type         string     `gorm:"column:type;default:TEXT" json:"type"`
	OfficialText string     `gorm:"column:official_text;type:longtext" json:"official_text"`
	Guidelines   *string    `gorm:"column:guidelines;type:text" json:"guidelines"`
	MaxChars     *int       `gorm:"column:max_chars" json:"max_chars"`
	Status       string     `gorm:"column:status;default:TO_DO" json:"status"`
	Completion   int        `gorm:"column:completion" json:"completion"`
	OrderIndex   int        `gorm:"column:order_index" json:"order_index"`
	AuthorizedBy *uint      `gorm:"column:authorized_by" json:"authorized_by"`
	AuthorizedAt *time.Time `gorm:"column:authorized_at" json:"authorized_at"`
	ValidatedBy  *uint      `gorm:"column:validated_by" json:"validated_by"`
	ValidatedAt  *time.Time `gorm:"column:validated_at" json:"validated_at"`

	// POPUP configuration
	PopupOptions  string `gorm:"column:popup_options;type:text" json:"-"`
	MaxSelections *int   `gorm:"column:max_selections" json:"max_selections"`

	ProjectID      *uint `gorm:"column:project_id" json:"project_id"`
	SectionID      *uint `gorm:"column:section_id" json:"section_id"`
	WorkID         *uint `gorm:"column:work_id" json:"work_id"`
	TaskID         *uint `gorm:"column:task_id" json:"task_id"`
	ActivityID     *uint `gorm:"column:activity_id" json:"activity_id"`
	ParentModuleID *uint `gorm:"column:parent_module_id" json:"parent_module_id"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Components []TextComponent `gorm:"foreignKey:ModuleID;references:ModuleID" json:"components,omitempty"`
	Members    []ModuleMember  `gorm:"foreignKey:ModuleID;references:ModuleID" json:"members,omitempty"`
	Submodules []Module        `gorm:"foreignKey:ParentModuleID;references:ModuleID" json:"submodules,omitempty"`
}

// ParentRef resolves the module's single populated parent column.
func (m *Module) ParentRef() (ContainerRef, bool) {
	return RefFromColumns(m.ProjectID, m.SectionID, m.WorkID, m.TaskID, m.ActivityID, m.ParentModuleID)
}

// SetParentRef stores the ref into the nullable parent columns.
func (m *Module) SetParentRef(ref ContainerRef) {
	m.ProjectID, m.SectionID, m.WorkID, m.TaskID, m.ActivityID, m.ParentModuleID = ref.Columns()
}

// EffectiveStatus reports WRITING for a TO_DO module that already has
// official text; otherwise the stored status.
func (m *Module) EffectiveStatus() string {
	if m.Status == ModuleStatusToDo && m.OfficialText != "" {
		return ModuleStatusWriting
	}
	return m.Status
}

// PopupOptionList decodes the POPUP option labels.
func (m *Module) PopupOptionList() []string {
	if m.PopupOptions == "" {
		return nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(m.PopupOptions), &opts); err != nil {
		return nil
	}
	return opts
}

// SetPopupOptionList encodes the POPUP option labels.
func (m *Module) SetPopupOptionList(opts []string) error {
	if opts == nil {
		opts = []string{}
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	m.PopupOptions = string(data)
	return nil
}

// TextComponent is a single authored contribution to a module. Merging
// appends its content to the module's official text and is one-way.
type TextComponent struct {
	ComponentID uint       `gorm:"primaryKey;column:component_id" json:"component_id"`
	ModuleID    uint       `gorm:"column:module_id;index" json:"module_id"`
	AuthorID    uint       `gorm:"column:author_id" json:"author_id"`
	Type        string     `gorm:"column:type;default:USER_TEXT" json:"type"`
	Content     string     `gorm:"column:content;type:longtext" json:"content"`
	OrderIndex  int        `gorm:"column:order_index" json:"order_index"`
	Status      string     `gorm:"column:status;default:TO_INTEGRATE" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// ModuleMember binds a user to a module with exactly one role.
type ModuleMember struct {
	ModuleMemberID uint      `gorm:"primaryKey;column:module_member_id" json:"module_member_id"`
	ModuleID       uint      `gorm:"column:module_id;index:idx_module_member,unique" json:"module_id"`
	UserID         uint      `gorm:"column:user_id;index:idx_module_member,unique" json:"user_id"`
	Role           string    `gorm:"column:role;default:VIEWER" json:"role"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Module) TableName() string {
	return "modules"
}

func (TextComponent) TableName() string {
	return "text_components"
}

func (ModuleMember) TableName() string {
	return "module_members"
}
