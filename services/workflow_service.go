package services

import (
	"errors"
	"fmt"
	"time"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// manuallySettable is the canonical set of manually-settable module
// statuses. WRITING is derived and never accepted as a target.
var manuallySettable = map[string]bool{
	models.ModuleStatusToDo:        true,
	models.ModuleStatusUnderReview: true,
	models.ModuleStatusDone:        true,
	models.ModuleStatusAuthorized:  true,
	models.ModuleStatusValidated:   true,
}

// contentStates are freely reachable by editors and leaders.
var contentStates = map[string]bool{
	models.ModuleStatusToDo:        true,
	models.ModuleStatusUnderReview: true,
	models.ModuleStatusDone:        true,
}

// ModuleMemberSpec is one entry of a full member-set replacement.
type ModuleMemberSpec struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// WorkflowService gates module status transitions and contribution
// merging by module-level roles. Module role bindings are the sole
// authority; project roles do not leak in. The explicit isManager
// capability is the one bypass.
type WorkflowService struct {
	db *gorm.DB
}

func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db}
}

// Transition moves a module to a target status, enforcing the role and
// precondition gates. A transition whose precondition does not hold is
// rejected with an explicit error, never silently absorbed.
func (s *WorkflowService) Transition(actor Actor, moduleID uint, target string) (*models.Module, error) {
	if !manuallySettable[target] {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("%q is not a settable status", target)}
	}

	var module models.Module
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&module, "module_id = ?", moduleID).Error; err != nil {
			return wrapNotFound(err, "module", moduleID)
		}
		role, err := s.roleIn(tx, moduleID, actor.UserID)
		if err != nil {
			return err
		}

		if module.Status == target {
			return &InvalidTransitionError{From: module.Status, To: target, Required: "a different current status"}
		}

		now := time.Now()
		switch target {
		case models.ModuleStatusAuthorized:
			if module.Status != models.ModuleStatusDone && module.Status != models.ModuleStatusUnderReview {
				return &InvalidTransitionError{From: module.Status, To: target, Required: "current status DONE or UNDER_REVIEW"}
			}
			if role != models.ModuleRoleLeader && !actor.IsManager {
				return &UnauthorizedError{Reason: "only the module LEADER may authorize"}
			}
			module.AuthorizedBy = &actor.UserID
			module.AuthorizedAt = &now
		case models.ModuleStatusValidated:
			if module.Status != models.ModuleStatusAuthorized {
				return &InvalidTransitionError{From: module.Status, To: target, Required: "current status AUTHORIZED"}
			}
			if role != models.ModuleRoleSupervisor && !actor.IsManager {
				return &UnauthorizedError{Reason: "only the module SUPERVISOR may validate"}
			}
			module.ValidatedBy = &actor.UserID
			module.ValidatedAt = &now
		default:
			// Content states: TO_DO, UNDER_REVIEW, DONE.
			if !contentStates[module.Status] {
				return &InvalidTransitionError{From: module.Status, To: target, Required: "current status TO_DO, UNDER_REVIEW or DONE"}
			}
			if role != models.ModuleRoleEditor && role != models.ModuleRoleLeader && !actor.IsManager {
				return &UnauthorizedError{Reason: "only an EDITOR or LEADER may change content status"}
			}
		}

		module.Status = target
		module.UpdatedAt = &now
		return tx.Save(&module).Error
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// CreateComponent appends a new contribution to a module's component list.
func (s *WorkflowService) CreateComponent(actor Actor, moduleID uint, componentType, content string) (*models.TextComponent, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "content is required"}
	}
	switch componentType {
	case "":
		componentType = models.ComponentTypeUserText
	case models.ComponentTypeUserText, models.ComponentTypeCoordNote, models.ComponentTypeUserNote:
	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown component type %q", componentType)}
	}

	var component *models.TextComponent
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Module{}, "module_id", moduleID, "module"); err != nil {
			return err
		}
		role, err := s.roleIn(tx, moduleID, actor.UserID)
		if err != nil {
			return err
		}
		if role == models.ModuleRoleViewer && !actor.IsManager {
			return &UnauthorizedError{Reason: "viewers cannot contribute to a module"}
		}
		var count int64
		if err := tx.Model(&models.TextComponent{}).Where("module_id = ?", moduleID).Count(&count).Error; err != nil {
			return err
		}
		component = &models.TextComponent{
			ModuleID:   moduleID,
			AuthorID:   actor.UserID,
			Type:       componentType,
			Content:    content,
			OrderIndex: int(count),
			Status:     models.ComponentStatusToIntegrate,
		}
		return tx.Create(component).Error
	})
	if err != nil {
		return nil, err
	}
	return component, nil
}

// MergeContribution appends an accepted component's content to the
// module's official text, with a blank-line separator when text is
// already present, and flips the component to ACCEPTED. Both writes
// commit together or neither does. Merging is one-way: a component that
// is already ACCEPTED is rejected, so the text is never duplicated.
func (s *WorkflowService) MergeContribution(actor Actor, moduleID, componentID uint) (*models.Module, error) {
	var module models.Module
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&module, "module_id = ?", moduleID).Error; err != nil {
			return wrapNotFound(err, "module", moduleID)
		}
		role, err := s.roleIn(tx, moduleID, actor.UserID)
		if err != nil {
			return err
		}
		if role == models.ModuleRoleViewer && !actor.IsManager {
			return &UnauthorizedError{Reason: "viewers cannot merge contributions"}
		}

		var component models.TextComponent
		if err := tx.First(&component, "component_id = ? AND module_id = ?", componentID, moduleID).Error; err != nil {
			return wrapNotFound(err, "text component", componentID)
		}
		if component.Status == models.ComponentStatusAccepted {
			return &InvalidTransitionError{From: component.Status, To: models.ComponentStatusAccepted, Required: "component status TO_INTEGRATE"}
		}

		merged := component.Content
		if module.OfficialText != "" {
			merged = module.OfficialText + "\n\n" + component.Content
		}
		if module.MaxChars != nil && len([]rune(merged)) > *module.MaxChars {
			return &ValidationError{Field: "content", Message: fmt.Sprintf("merged text exceeds the %d character limit", *module.MaxChars)}
		}

		now := time.Now()
		module.OfficialText = merged
		module.UpdatedAt = &now
		if err := tx.Save(&module).Error; err != nil {
			return err
		}
		component.Status = models.ComponentStatusAccepted
		component.UpdatedAt = &now
		return tx.Save(&component).Error
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// ReplaceMembers swaps a module's whole member set in one transaction:
// delete all, then insert. Small sets, infrequent writes; no diffing.
func (s *WorkflowService) ReplaceMembers(actor Actor, moduleID uint, specs []ModuleMemberSpec) error {
	seen := make(map[uint]bool, len(specs))
	for _, spec := range specs {
		switch spec.Role {
		case models.ModuleRoleSupervisor, models.ModuleRoleLeader, models.ModuleRoleEditor, models.ModuleRoleViewer:
		default:
			return &ValidationError{Field: "role", Message: fmt.Sprintf("unknown module role %q", spec.Role)}
		}
		if seen[spec.UserID] {
			return &ValidationError{Field: "members", Message: fmt.Sprintf("user %d listed more than once", spec.UserID)}
		}
		seen[spec.UserID] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Module{}, "module_id", moduleID, "module"); err != nil {
			return err
		}
		role, err := s.roleIn(tx, moduleID, actor.UserID)
		if err != nil {
			return err
		}
		if role != models.ModuleRoleLeader && role != models.ModuleRoleSupervisor && !actor.IsManager {
			return &UnauthorizedError{Reason: "only a LEADER or SUPERVISOR may replace the member set"}
		}
		if err := tx.Where("module_id = ?", moduleID).Delete(&models.ModuleMember{}).Error; err != nil {
			return err
		}
		for _, spec := range specs {
			member := models.ModuleMember{ModuleID: moduleID, UserID: spec.UserID, Role: spec.Role}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *WorkflowService) roleIn(tx *gorm.DB, moduleID, userID uint) (string, error) {
	var member models.ModuleMember
	err := tx.Where("module_id = ? AND user_id = ?", moduleID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ModuleRoleViewer, nil
		}
		return "", err
	}
	return member.Role, nil
}
