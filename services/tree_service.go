package services

import (
	"errors"
	"fmt"
	"time"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// Move directions
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// TreeService owns the work-breakdown hierarchy: node creation under a
// tagged parent ref, sibling ordering, moves and cascading deletes.
// Sibling order is kept dense (0..n-1) by renumbering the whole sibling
// set inside one transaction on every mutation.
type TreeService struct {
	db *gorm.DB
}

func NewTreeService(db *gorm.DB) *TreeService {
	return &TreeService{db: db}
}

// NodeAttrs carries the caller-settable attributes of a tree node.
type NodeAttrs struct {
	Title         string
	StartDate     *time.Time
	EndDate       *time.Time
	Budget        *float64
	LeadPartnerID *uint
}

// NodeOrder is one entry of an explicit reorder request.
type NodeOrder struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

type kindMeta struct {
	table      string
	pk         string
	parentCols map[models.ContainerKind]string
}

var treeKinds = map[models.ContainerKind]kindMeta{
	models.ContainerSection: {
		table: "sections", pk: "section_id",
		parentCols: map[models.ContainerKind]string{models.ContainerProject: "project_id"},
	},
	models.ContainerWork: {
		table: "works", pk: "work_id",
		parentCols: map[models.ContainerKind]string{
			models.ContainerProject: "project_id",
			models.ContainerSection: "section_id",
		},
	},
	models.ContainerTask: {
		table: "tasks", pk: "task_id",
		parentCols: map[models.ContainerKind]string{models.ContainerWork: "work_id"},
	},
	models.ContainerActivity: {
		table: "activities", pk: "activity_id",
		parentCols: map[models.ContainerKind]string{models.ContainerTask: "task_id"},
	},
	models.ContainerModule: {
		table: "modules", pk: "module_id",
		parentCols: map[models.ContainerKind]string{
			models.ContainerProject:  "project_id",
			models.ContainerSection:  "section_id",
			models.ContainerWork:     "work_id",
			models.ContainerTask:     "task_id",
			models.ContainerActivity: "activity_id",
			models.ContainerModule:   "parent_module_id",
		},
	},
}

// CreateSection creates a section under a project, appended at the end
// of the sibling order.
func (s *TreeService) CreateSection(projectID uint, attrs NodeAttrs) (*models.Section, error) {
	if attrs.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	var section *models.Section
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Project{}, "project_id", projectID, "project"); err != nil {
			return err
		}
		order, err := nextOrderIndex(tx, models.ContainerSection, models.ProjectRef(projectID))
		if err != nil {
			return err
		}
		section = &models.Section{
			ProjectID:     projectID,
			Title:         attrs.Title,
			StartDate:     attrs.StartDate,
			EndDate:       attrs.EndDate,
			Budget:        attrs.Budget,
			LeadPartnerID: attrs.LeadPartnerID,
			OrderIndex:    order,
		}
		return tx.Create(section).Error
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

// CreateWork creates a work package under a section, or directly under
// a project when the project has no sections.
func (s *TreeService) CreateWork(parent models.ContainerRef, attrs NodeAttrs) (*models.Work, error) {
	if attrs.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if parent.Kind != models.ContainerProject && parent.Kind != models.ContainerSection {
		return nil, &ValidationError{Field: "parent", Message: "work parent must be a project or a section"}
	}
	var work *models.Work
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureParentExists(tx, parent); err != nil {
			return err
		}
		order, err := nextOrderIndex(tx, models.ContainerWork, parent)
		if err != nil {
			return err
		}
		work = &models.Work{
			Title:         attrs.Title,
			StartDate:     attrs.StartDate,
			EndDate:       attrs.EndDate,
			Budget:        attrs.Budget,
			LeadPartnerID: attrs.LeadPartnerID,
			OrderIndex:    order,
		}
		switch parent.Kind {
		case models.ContainerProject:
			id := parent.ID
			work.ProjectID = &id
		case models.ContainerSection:
			id := parent.ID
			work.SectionID = &id
		}
		return tx.Create(work).Error
	})
	if err != nil {
		return nil, err
	}
	return work, nil
}

// CreateTask creates a task under a work package.
func (s *TreeService) CreateTask(workID uint, attrs NodeAttrs) (*models.Task, error) {
	if attrs.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	var task *models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Work{}, "work_id", workID, "work"); err != nil {
			return err
		}
		order, err := nextOrderIndex(tx, models.ContainerTask, models.WorkRef(workID))
		if err != nil {
			return err
		}
		task = &models.Task{
			WorkID:        workID,
			Title:         attrs.Title,
			StartDate:     attrs.StartDate,
			EndDate:       attrs.EndDate,
			Budget:        attrs.Budget,
			LeadPartnerID: attrs.LeadPartnerID,
			OrderIndex:    order,
		}
		return tx.Create(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CreateActivity creates an activity under a task.
func (s *TreeService) CreateActivity(taskID uint, attrs NodeAttrs) (*models.Activity, error) {
	if attrs.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	var activity *models.Activity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Task{}, "task_id", taskID, "task"); err != nil {
			return err
		}
		order, err := nextOrderIndex(tx, models.ContainerActivity, models.TaskRef(taskID))
		if err != nil {
			return err
		}
		activity = &models.Activity{
			TaskID:        taskID,
			Title:         attrs.Title,
			StartDate:     attrs.StartDate,
			EndDate:       attrs.EndDate,
			Budget:        attrs.Budget,
			LeadPartnerID: attrs.LeadPartnerID,
			OrderIndex:    order,
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// CreateModule attaches a module to any tree container or under another
// module.
func (s *TreeService) CreateModule(parent models.ContainerRef, module *models.Module) (*models.Module, error) {
	if module.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if module.Type == "" {
		module.Type = models.ModuleTypeText
	}
	if module.Type != models.ModuleTypeText && module.Type != models.ModuleTypePopup {
		return nil, &ValidationError{Field: "type", Message: "type must be TEXT or POPUP"}
	}
	if _, ok := treeKinds[models.ContainerModule].parentCols[parent.Kind]; !ok || parent.IsZero() {
		return nil, &ValidationError{Field: "parent", Message: "module parent must reference exactly one container"}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureParentExists(tx, parent); err != nil {
			return err
		}
		order, err := nextOrderIndex(tx, models.ContainerModule, parent)
		if err != nil {
			return err
		}
		module.SetParentRef(parent)
		module.OrderIndex = order
		module.Status = models.ModuleStatusToDo
		return tx.Create(module).Error
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// MoveNode swaps a node with its adjacent sibling in the given
// direction, then renumbers the whole sibling set to 0..n-1 in the same
// transaction. Moving past either boundary is a no-op, not an error.
func (s *TreeService) MoveNode(kind models.ContainerKind, id uint, direction string) (bool, error) {
	if direction != MoveUp && direction != MoveDown {
		return false, &ValidationError{Field: "direction", Message: "direction must be up or down"}
	}
	meta, ok := treeKinds[kind]
	if !ok {
		return false, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown node kind %q", kind)}
	}

	moved := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		parent, err := parentRefOf(tx, kind, id)
		if err != nil {
			return err
		}
		rows, err := siblingRows(tx, meta, parent)
		if err != nil {
			return err
		}
		idx := -1
		for i, row := range rows {
			if row.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NotFoundError{Entity: string(kind), ID: id}
		}
		target := idx - 1
		if direction == MoveDown {
			target = idx + 1
		}
		if target < 0 || target >= len(rows) {
			return nil // boundary: leave every order untouched
		}
		rows[idx], rows[target] = rows[target], rows[idx]
		moved = true
		return renumber(tx, meta, rows)
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// Reorder applies an explicit {id, order} list over one sibling set and
// renumbers it densely. The list must cover the sibling set exactly.
func (s *TreeService) Reorder(kind models.ContainerKind, parent models.ContainerRef, orders []NodeOrder) error {
	meta, ok := treeKinds[kind]
	if !ok {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown node kind %q", kind)}
	}
	if _, ok := meta.parentCols[parent.Kind]; !ok || parent.IsZero() {
		return &ValidationError{Field: "parent", Message: "parent must reference exactly one container"}
	}
	if len(orders) == 0 {
		return &ValidationError{Field: "siblings", Message: "sibling list is required"}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := siblingRows(tx, meta, parent)
		if err != nil {
			return err
		}
		if len(rows) != len(orders) {
			return &ValidationError{Field: "siblings", Message: "sibling list does not match the stored sibling set"}
		}
		requested := make(map[uint]int, len(orders))
		for _, o := range orders {
			if _, dup := requested[o.ID]; dup {
				return &ValidationError{Field: "siblings", Message: fmt.Sprintf("duplicate node id %d", o.ID)}
			}
			requested[o.ID] = o.Order
		}
		for _, row := range rows {
			if _, ok := requested[row.ID]; !ok {
				return &ValidationError{Field: "siblings", Message: fmt.Sprintf("node %d missing from sibling list", row.ID)}
			}
		}
		sortRowsBy(rows, requested)
		return renumber(tx, meta, rows)
	})
}

// NodeUpdate carries a partial attribute update; nil fields are left
// untouched. ClearDates resets both date fields regardless of the
// pointer values.
type NodeUpdate struct {
	Title         *string
	StartDate     *time.Time
	EndDate       *time.Time
	Budget        *float64
	LeadPartnerID *uint
	ClearDates    bool
}

// UpdateNode patches a container node's own attributes. Parent links and
// sibling order are out of scope here; MoveNode and Reorder own those.
func (s *TreeService) UpdateNode(kind models.ContainerKind, id uint, patch NodeUpdate) error {
	meta, ok := treeKinds[kind]
	if !ok || kind == models.ContainerModule {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("cannot update node kind %q here", kind)}
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		if *patch.Title == "" {
			return &ValidationError{Field: "title", Message: "title cannot be empty"}
		}
		updates["title"] = *patch.Title
	}
	if patch.ClearDates {
		updates["start_date"] = nil
		updates["end_date"] = nil
	} else {
		if patch.StartDate != nil {
			updates["start_date"] = *patch.StartDate
		}
		if patch.EndDate != nil {
			updates["end_date"] = *patch.EndDate
		}
	}
	if patch.Budget != nil {
		updates["budget"] = *patch.Budget
	}
	if patch.LeadPartnerID != nil {
		updates["lead_partner_id"] = *patch.LeadPartnerID
	}
	if len(updates) == 0 {
		return &ValidationError{Field: "body", Message: "nothing to update"}
	}

	result := s.db.Table(meta.table).Where(meta.pk+" = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: string(kind), ID: id}
	}
	return nil
}

// DeleteNode removes a node and its entire subtree, including modules,
// partner assignments and planned assignments bound to any removed
// container. One transaction, leaf-first.
func (s *TreeService) DeleteNode(kind models.ContainerKind, id uint) error {
	meta, ok := treeKinds[kind]
	if !ok || kind == models.ContainerModule {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("cannot delete node kind %q here", kind)}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		parent, err := parentRefOf(tx, kind, id)
		if err != nil {
			return err
		}
		sub, err := CollectSubtree(tx, models.ContainerRef{Kind: kind, ID: id})
		if err != nil {
			return err
		}
		if err := deleteSubtreeRecords(tx, sub); err != nil {
			return err
		}
		// Renumber the survivors so the sibling order stays dense.
		rows, err := siblingRows(tx, meta, parent)
		if err != nil {
			return err
		}
		return renumber(tx, meta, rows)
	})
}

// DeleteModule removes a module with its nested submodules, text
// components and member bindings, then keeps the sibling order dense.
func (s *TreeService) DeleteModule(id uint) error {
	meta := treeKinds[models.ContainerModule]
	return s.db.Transaction(func(tx *gorm.DB) error {
		parent, err := parentRefOf(tx, models.ContainerModule, id)
		if err != nil {
			return err
		}
		ids := []uint{id}
		frontier := ids
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Module{}).Where("parent_module_id IN ?", frontier).
				Pluck("module_id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}
		if err := tx.Where("module_id IN ?", ids).Delete(&models.TextComponent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN ?", ids).Delete(&models.ModuleMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN ?", ids).Delete(&models.Module{}).Error; err != nil {
			return err
		}
		rows, err := siblingRows(tx, meta, parent)
		if err != nil {
			return err
		}
		return renumber(tx, meta, rows)
	})
}

// DeleteProject removes a project and everything it owns. Projects are
// never deleted implicitly; this is the one explicit cascade.
func (s *TreeService) DeleteProject(projectID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Project{}, "project_id", projectID, "project"); err != nil {
			return err
		}
		if err := wipeProjectTree(tx, projectID); err != nil {
			return err
		}
		owned := []interface{}{
			&models.Assignment{},
			&models.TimesheetEntry{},
			&models.ProjectMember{},
			&models.Invitation{},
			&models.ProjectSnapshot{},
		}
		for _, model := range owned {
			if err := tx.Where("project_id = ?", projectID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Project{}, "project_id = ?", projectID).Error
	})
}

// Subtree holds the container ids of a node and all its descendants.
type Subtree struct {
	Sections   []uint
	Works      []uint
	Tasks      []uint
	Activities []uint
}

// ContainsRef reports whether the subtree includes the given container.
func (t *Subtree) ContainsRef(ref models.ContainerRef) bool {
	var ids []uint
	switch ref.Kind {
	case models.ContainerSection:
		ids = t.Sections
	case models.ContainerWork:
		ids = t.Works
	case models.ContainerTask:
		ids = t.Tasks
	case models.ContainerActivity:
		ids = t.Activities
	}
	for _, id := range ids {
		if id == ref.ID {
			return true
		}
	}
	return false
}

// CollectSubtree walks the containment chain downward from ref and
// returns every container id underneath it (ref included). Iterative,
// level by level.
func CollectSubtree(tx *gorm.DB, ref models.ContainerRef) (*Subtree, error) {
	sub := &Subtree{}
	switch ref.Kind {
	case models.ContainerProject:
		if err := tx.Model(&models.Section{}).Where("project_id = ?", ref.ID).
			Pluck("section_id", &sub.Sections).Error; err != nil {
			return nil, err
		}
		// Works directly under the project (section-less layout).
		if err := tx.Model(&models.Work{}).Where("project_id = ?", ref.ID).
			Pluck("work_id", &sub.Works).Error; err != nil {
			return nil, err
		}
	case models.ContainerSection:
		sub.Sections = []uint{ref.ID}
	case models.ContainerWork:
		sub.Works = []uint{ref.ID}
	case models.ContainerTask:
		sub.Tasks = []uint{ref.ID}
	case models.ContainerActivity:
		sub.Activities = []uint{ref.ID}
	default:
		return nil, &ValidationError{Field: "ref", Message: fmt.Sprintf("not a container kind: %q", ref.Kind)}
	}

	if len(sub.Sections) > 0 {
		var workIDs []uint
		if err := tx.Model(&models.Work{}).Where("section_id IN ?", sub.Sections).
			Pluck("work_id", &workIDs).Error; err != nil {
			return nil, err
		}
		sub.Works = append(sub.Works, workIDs...)
	}
	if len(sub.Works) > 0 {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("work_id IN ?", sub.Works).
			Pluck("task_id", &taskIDs).Error; err != nil {
			return nil, err
		}
		sub.Tasks = append(sub.Tasks, taskIDs...)
	}
	if len(sub.Tasks) > 0 {
		var activityIDs []uint
		if err := tx.Model(&models.Activity{}).Where("task_id IN ?", sub.Tasks).
			Pluck("activity_id", &activityIDs).Error; err != nil {
			return nil, err
		}
		sub.Activities = append(sub.Activities, activityIDs...)
	}
	return sub, nil
}

func deleteSubtreeRecords(tx *gorm.DB, sub *Subtree) error {
	// Modules anywhere in the subtree, nested submodules included.
	moduleIDs, err := subtreeModuleIDs(tx, sub)
	if err != nil {
		return err
	}
	if len(moduleIDs) > 0 {
		if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.TextComponent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.ModuleMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.Module{}).Error; err != nil {
			return err
		}
	}

	type containerScope struct {
		col string
		ids []uint
	}
	scopes := []containerScope{
		{"section_id", sub.Sections},
		{"work_id", sub.Works},
		{"task_id", sub.Tasks},
		{"activity_id", sub.Activities},
	}
	for _, scope := range scopes {
		if len(scope.ids) == 0 {
			continue
		}
		if err := tx.Where(scope.col+" IN ?", scope.ids).Delete(&models.PartnerAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where(scope.col+" IN ?", scope.ids).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
	}

	if len(sub.Activities) > 0 {
		if err := tx.Where("activity_id IN ?", sub.Activities).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
	}
	if len(sub.Tasks) > 0 {
		if err := tx.Where("task_id IN ?", sub.Tasks).Delete(&models.Task{}).Error; err != nil {
			return err
		}
	}
	if len(sub.Works) > 0 {
		if err := tx.Where("work_id IN ?", sub.Works).Delete(&models.Work{}).Error; err != nil {
			return err
		}
	}
	if len(sub.Sections) > 0 {
		if err := tx.Where("section_id IN ?", sub.Sections).Delete(&models.Section{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// subtreeModuleIDs gathers module ids attached to the subtree's
// containers plus all nested submodules, breadth-first.
func subtreeModuleIDs(tx *gorm.DB, sub *Subtree) ([]uint, error) {
	query := tx.Model(&models.Module{}).Where("1 = 0")
	if len(sub.Sections) > 0 {
		query = query.Or("section_id IN ?", sub.Sections)
	}
	if len(sub.Works) > 0 {
		query = query.Or("work_id IN ?", sub.Works)
	}
	if len(sub.Tasks) > 0 {
		query = query.Or("task_id IN ?", sub.Tasks)
	}
	if len(sub.Activities) > 0 {
		query = query.Or("activity_id IN ?", sub.Activities)
	}
	var ids []uint
	if err := query.Pluck("module_id", &ids).Error; err != nil {
		return nil, err
	}
	frontier := ids
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Module{}).Where("parent_module_id IN ?", frontier).
			Pluck("module_id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

type siblingRow struct {
	ID         uint `gorm:"column:id"`
	OrderIndex int  `gorm:"column:order_index"`
}

func siblingRows(tx *gorm.DB, meta kindMeta, parent models.ContainerRef) ([]siblingRow, error) {
	col, ok := meta.parentCols[parent.Kind]
	if !ok {
		return nil, &ValidationError{Field: "parent", Message: fmt.Sprintf("%s cannot be a parent of %s", parent.Kind, meta.table)}
	}
	var rows []siblingRow
	err := tx.Table(meta.table).
		Select(meta.pk+" AS id, order_index").
		Where(col+" = ?", parent.ID).
		Order("order_index ASC, " + meta.pk + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func renumber(tx *gorm.DB, meta kindMeta, rows []siblingRow) error {
	for i, row := range rows {
		if err := tx.Table(meta.table).Where(meta.pk+" = ?", row.ID).
			Update("order_index", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func sortRowsBy(rows []siblingRow, requested map[uint]int) {
	// Stable insertion sort on the requested order; sibling sets are small.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && requested[rows[j].ID] < requested[rows[j-1].ID]; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

func nextOrderIndex(tx *gorm.DB, kind models.ContainerKind, parent models.ContainerRef) (int, error) {
	meta := treeKinds[kind]
	rows, err := siblingRows(tx, meta, parent)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// parentRefOf resolves the single populated parent column of a node.
// A node with no parent is corrupt data, reported as OrphanNodeError.
func parentRefOf(tx *gorm.DB, kind models.ContainerKind, id uint) (models.ContainerRef, error) {
	switch kind {
	case models.ContainerSection:
		var section models.Section
		if err := tx.First(&section, "section_id = ?", id).Error; err != nil {
			return models.ContainerRef{}, wrapNotFound(err, "section", id)
		}
		if section.ProjectID == 0 {
			return models.ContainerRef{}, &OrphanNodeError{Kind: "section", ID: id}
		}
		return models.ProjectRef(section.ProjectID), nil
	case models.ContainerWork:
		var work models.Work
		if err := tx.First(&work, "work_id = ?", id).Error; err != nil {
			return models.ContainerRef{}, wrapNotFound(err, "work", id)
		}
		ref, ok := work.ParentRef()
		if !ok {
			return models.ContainerRef{}, &OrphanNodeError{Kind: "work", ID: id}
		}
		return ref, nil
	case models.ContainerTask:
		var task models.Task
		if err := tx.First(&task, "task_id = ?", id).Error; err != nil {
			return models.ContainerRef{}, wrapNotFound(err, "task", id)
		}
		if task.WorkID == 0 {
			return models.ContainerRef{}, &OrphanNodeError{Kind: "task", ID: id}
		}
		return models.WorkRef(task.WorkID), nil
	case models.ContainerActivity:
		var activity models.Activity
		if err := tx.First(&activity, "activity_id = ?", id).Error; err != nil {
			return models.ContainerRef{}, wrapNotFound(err, "activity", id)
		}
		if activity.TaskID == 0 {
			return models.ContainerRef{}, &OrphanNodeError{Kind: "activity", ID: id}
		}
		return models.TaskRef(activity.TaskID), nil
	case models.ContainerModule:
		var module models.Module
		if err := tx.First(&module, "module_id = ?", id).Error; err != nil {
			return models.ContainerRef{}, wrapNotFound(err, "module", id)
		}
		ref, ok := module.ParentRef()
		if !ok {
			return models.ContainerRef{}, &OrphanNodeError{Kind: "module", ID: id}
		}
		return ref, nil
	}
	return models.ContainerRef{}, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown node kind %q", kind)}
}

func ensureParentExists(tx *gorm.DB, parent models.ContainerRef) error {
	switch parent.Kind {
	case models.ContainerProject:
		return ensureExists(tx, &models.Project{}, "project_id", parent.ID, "project")
	case models.ContainerSection:
		return ensureExists(tx, &models.Section{}, "section_id", parent.ID, "section")
	case models.ContainerWork:
		return ensureExists(tx, &models.Work{}, "work_id", parent.ID, "work")
	case models.ContainerTask:
		return ensureExists(tx, &models.Task{}, "task_id", parent.ID, "task")
	case models.ContainerActivity:
		return ensureExists(tx, &models.Activity{}, "activity_id", parent.ID, "activity")
	case models.ContainerModule:
		return ensureExists(tx, &models.Module{}, "module_id", parent.ID, "module")
	}
	return &ValidationError{Field: "parent", Message: fmt.Sprintf("unknown parent kind %q", parent.Kind)}
}

func ensureExists(tx *gorm.DB, model interface{}, pk string, id uint, entity string) error {
	var count int64
	if err := tx.Model(model).Where(pk+" = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func wrapNotFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
