package services

import (
	"errors"
	"testing"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

func sectionOrders(t *testing.T, db *gorm.DB, projectID uint) map[uint]int {
	t.Helper()
	var sections []models.Section
	if err := db.Where("project_id = ?", projectID).Order("order_index ASC").Find(&sections).Error; err != nil {
		t.Fatalf("failed to load sections: %v", err)
	}
	orders := make(map[uint]int, len(sections))
	for _, s := range sections {
		orders[s.SectionID] = s.OrderIndex
	}
	return orders
}

func TestCreateSectionAppendsDenseOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Digital Skills")

	var ids []uint
	for _, title := range []string{"Management", "Dissemination", "Evaluation"} {
		section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: title})
		if err != nil {
			t.Fatalf("CreateSection(%q) failed: %v", title, err)
		}
		ids = append(ids, section.SectionID)
	}

	orders := sectionOrders(t, db, project.ProjectID)
	for i, id := range ids {
		if orders[id] != i {
			t.Fatalf("section %d has order %d, want %d", id, orders[id], i)
		}
	}
}

func TestCreateSectionRejectsMissingProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)

	_, err := svc.CreateSection(999, NodeAttrs{Title: "Orphan"})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreateWorkParentExclusivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Inclusion")
	section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: "WP block"})
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	underSection, err := svc.CreateWork(models.SectionRef(section.SectionID), NodeAttrs{Title: "WP1"})
	if err != nil {
		t.Fatalf("CreateWork under section failed: %v", err)
	}
	if underSection.SectionID == nil || underSection.ProjectID != nil {
		t.Fatalf("work under section should set only section_id, got project=%v section=%v",
			underSection.ProjectID, underSection.SectionID)
	}

	underProject, err := svc.CreateWork(models.ProjectRef(project.ProjectID), NodeAttrs{Title: "WP2"})
	if err != nil {
		t.Fatalf("CreateWork under project failed: %v", err)
	}
	if underProject.ProjectID == nil || underProject.SectionID != nil {
		t.Fatalf("work under project should set only project_id, got project=%v section=%v",
			underProject.ProjectID, underProject.SectionID)
	}

	if _, err := svc.CreateWork(models.TaskRef(1), NodeAttrs{Title: "bad"}); err == nil {
		t.Fatal("expected error for a task parent on a work")
	}
}

func TestMoveNodeSwapsAndRenumbers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Mobility")

	var ids []uint
	for _, title := range []string{"A", "B", "C"} {
		section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: title})
		if err != nil {
			t.Fatalf("CreateSection failed: %v", err)
		}
		ids = append(ids, section.SectionID)
	}

	moved, err := svc.MoveNode(models.ContainerSection, ids[2], MoveUp)
	if err != nil {
		t.Fatalf("MoveNode failed: %v", err)
	}
	if !moved {
		t.Fatal("expected the move to report success")
	}

	orders := sectionOrders(t, db, project.ProjectID)
	want := map[uint]int{ids[0]: 0, ids[2]: 1, ids[1]: 2}
	for id, order := range want {
		if orders[id] != order {
			t.Fatalf("after move, section %d has order %d, want %d", id, orders[id], order)
		}
	}
}

func TestMoveNodeBoundaryIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Boundary")

	var ids []uint
	for _, title := range []string{"First", "Last"} {
		section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: title})
		if err != nil {
			t.Fatalf("CreateSection failed: %v", err)
		}
		ids = append(ids, section.SectionID)
	}

	moved, err := svc.MoveNode(models.ContainerSection, ids[0], MoveUp)
	if err != nil {
		t.Fatalf("MoveNode up at top failed: %v", err)
	}
	if moved {
		t.Fatal("moving the first node up should be a no-op")
	}
	moved, err = svc.MoveNode(models.ContainerSection, ids[1], MoveDown)
	if err != nil {
		t.Fatalf("MoveNode down at bottom failed: %v", err)
	}
	if moved {
		t.Fatal("moving the last node down should be a no-op")
	}

	orders := sectionOrders(t, db, project.ProjectID)
	if orders[ids[0]] != 0 || orders[ids[1]] != 1 {
		t.Fatalf("boundary moves changed the order: %v", orders)
	}
}

func TestReorderValidatesSiblingSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Reorder")

	var ids []uint
	for _, title := range []string{"A", "B", "C"} {
		section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: title})
		if err != nil {
			t.Fatalf("CreateSection failed: %v", err)
		}
		ids = append(ids, section.SectionID)
	}
	parent := models.ProjectRef(project.ProjectID)

	// Partial sibling list is rejected.
	err := svc.Reorder(models.ContainerSection, parent, []NodeOrder{{ID: ids[0], Order: 0}})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for partial list, got %v", err)
	}

	// Full list with gapped orders still produces a dense 0..n-1 result.
	err = svc.Reorder(models.ContainerSection, parent, []NodeOrder{
		{ID: ids[0], Order: 30},
		{ID: ids[1], Order: 10},
		{ID: ids[2], Order: 20},
	})
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	orders := sectionOrders(t, db, project.ProjectID)
	want := map[uint]int{ids[1]: 0, ids[2]: 1, ids[0]: 2}
	for id, order := range want {
		if orders[id] != order {
			t.Fatalf("after reorder, section %d has order %d, want %d", id, orders[id], order)
		}
	}
}

func TestDeleteNodeCascadesAndRenumbers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Cascade")
	user := createTestUser(t, db, "worker@example.org")

	var sections []*models.Section
	for _, title := range []string{"Keep A", "Drop", "Keep B"} {
		section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: title})
		if err != nil {
			t.Fatalf("CreateSection failed: %v", err)
		}
		sections = append(sections, section)
	}
	work, err := svc.CreateWork(models.SectionRef(sections[1].SectionID), NodeAttrs{Title: "WP"})
	if err != nil {
		t.Fatalf("CreateWork failed: %v", err)
	}
	task, err := svc.CreateTask(work.WorkID, NodeAttrs{Title: "Task"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	activity, err := svc.CreateActivity(task.TaskID, NodeAttrs{Title: "Activity"})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	module, err := svc.CreateModule(models.TaskRef(task.TaskID), &models.Module{Title: "Narrative"})
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	nested, err := svc.CreateModule(models.ModuleRef(module.ModuleID), &models.Module{Title: "Nested"})
	if err != nil {
		t.Fatalf("CreateModule nested failed: %v", err)
	}

	assignment := models.Assignment{ProjectID: project.ProjectID, UserID: user.UserID, Days: 4}
	assignment.SetContainerRef(models.ActivityRef(activity.ActivityID))
	if err := assignment.SetMonthList([]string{"2026-01"}); err != nil {
		t.Fatalf("SetMonthList failed: %v", err)
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to create assignment: %v", err)
	}

	if err := svc.DeleteNode(models.ContainerSection, sections[1].SectionID); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}

	var count int64
	checks := []struct {
		name  string
		model interface{}
		where string
		id    uint
	}{
		{"work", &models.Work{}, "work_id = ?", work.WorkID},
		{"task", &models.Task{}, "task_id = ?", task.TaskID},
		{"activity", &models.Activity{}, "activity_id = ?", activity.ActivityID},
		{"module", &models.Module{}, "module_id = ?", module.ModuleID},
		{"nested module", &models.Module{}, "module_id = ?", nested.ModuleID},
		{"assignment", &models.Assignment{}, "assignment_id = ?", assignment.AssignmentID},
	}
	for _, check := range checks {
		if err := db.Model(check.model).Where(check.where, check.id).Count(&count).Error; err != nil {
			t.Fatalf("count of %s failed: %v", check.name, err)
		}
		if count != 0 {
			t.Fatalf("%s %d survived the cascade", check.name, check.id)
		}
	}

	orders := sectionOrders(t, db, project.ProjectID)
	if orders[sections[0].SectionID] != 0 || orders[sections[2].SectionID] != 1 {
		t.Fatalf("surviving siblings not renumbered densely: %v", orders)
	}
}

func TestParentRefOfReportsOrphans(t *testing.T) {
	db := newTestDB(t)

	// A work with neither parent column set is corrupt data.
	work := models.Work{Title: "floating"}
	if err := db.Create(&work).Error; err != nil {
		t.Fatalf("failed to create work: %v", err)
	}

	_, err := NewTreeService(db).MoveNode(models.ContainerWork, work.WorkID, MoveUp)
	var orphan *OrphanNodeError
	if !errors.As(err, &orphan) {
		t.Fatalf("expected OrphanNodeError, got %v", err)
	}
}

func TestCollectSubtreeFromProjectRoot(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Subtree")

	section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: "S"})
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	sectionWork, err := svc.CreateWork(models.SectionRef(section.SectionID), NodeAttrs{Title: "W1"})
	if err != nil {
		t.Fatalf("CreateWork failed: %v", err)
	}
	directWork, err := svc.CreateWork(models.ProjectRef(project.ProjectID), NodeAttrs{Title: "W2"})
	if err != nil {
		t.Fatalf("CreateWork failed: %v", err)
	}
	task, err := svc.CreateTask(sectionWork.WorkID, NodeAttrs{Title: "T"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	sub, err := CollectSubtree(db, models.ProjectRef(project.ProjectID))
	if err != nil {
		t.Fatalf("CollectSubtree failed: %v", err)
	}
	if !sub.ContainsRef(models.SectionRef(section.SectionID)) {
		t.Fatal("subtree misses the section")
	}
	if !sub.ContainsRef(models.WorkRef(sectionWork.WorkID)) || !sub.ContainsRef(models.WorkRef(directWork.WorkID)) {
		t.Fatal("subtree misses a work")
	}
	if !sub.ContainsRef(models.TaskRef(task.TaskID)) {
		t.Fatal("subtree misses the task")
	}
}

func TestUpdateNodePatchesOnlyGivenFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Patch Project")
	budget := 5000.0
	section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: "Original", Budget: &budget})
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	title := "Renamed"
	if err := svc.UpdateNode(models.ContainerSection, section.SectionID, NodeUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdateNode failed: %v", err)
	}

	var stored models.Section
	if err := db.First(&stored, "section_id = ?", section.SectionID).Error; err != nil {
		t.Fatalf("failed to reload section: %v", err)
	}
	if stored.Title != "Renamed" {
		t.Fatalf("title not updated: %q", stored.Title)
	}
	if stored.Budget == nil || *stored.Budget != 5000 {
		t.Fatalf("budget should be untouched, got %v", stored.Budget)
	}

	empty := ""
	if err := svc.UpdateNode(models.ContainerSection, section.SectionID, NodeUpdate{Title: &empty}); err == nil {
		t.Fatal("empty title must be rejected")
	}
	var notFound *NotFoundError
	err = svc.UpdateNode(models.ContainerSection, 99999, NodeUpdate{Title: &title})
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for missing section, got %v", err)
	}
}

func TestDeleteModuleCascadesNestedContent(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Module Cascade")
	author := createTestUser(t, db, "author@example.org")

	first := createTestModule(t, db, project.ProjectID, models.ModuleStatusToDo)
	second := createTestModule(t, db, project.ProjectID, models.ModuleStatusToDo)
	if err := db.Model(second).Update("order_index", 1).Error; err != nil {
		t.Fatalf("failed to order modules: %v", err)
	}
	nested := &models.Module{Title: "Nested", Type: models.ModuleTypeText, Status: models.ModuleStatusToDo}
	nested.SetParentRef(models.ModuleRef(first.ModuleID))
	if err := db.Create(nested).Error; err != nil {
		t.Fatalf("failed to create nested module: %v", err)
	}
	component := models.TextComponent{
		ModuleID: nested.ModuleID, AuthorID: author.UserID,
		Type: models.ComponentTypeUserText, Content: "text", Status: models.ComponentStatusToIntegrate,
	}
	if err := db.Create(&component).Error; err != nil {
		t.Fatalf("failed to create component: %v", err)
	}
	bindModuleRole(t, db, first.ModuleID, author.UserID, models.ModuleRoleEditor)

	if err := svc.DeleteModule(first.ModuleID); err != nil {
		t.Fatalf("DeleteModule failed: %v", err)
	}

	var moduleCount, componentCount, memberCount int64
	db.Model(&models.Module{}).Count(&moduleCount)
	db.Model(&models.TextComponent{}).Count(&componentCount)
	db.Model(&models.ModuleMember{}).Count(&memberCount)
	if moduleCount != 1 || componentCount != 0 || memberCount != 0 {
		t.Fatalf("cascade incomplete: %d modules, %d components, %d members",
			moduleCount, componentCount, memberCount)
	}
	var survivor models.Module
	if err := db.First(&survivor, "module_id = ?", second.ModuleID).Error; err != nil {
		t.Fatalf("failed to reload surviving module: %v", err)
	}
	if survivor.OrderIndex != 0 {
		t.Fatalf("surviving module not renumbered, order %d", survivor.OrderIndex)
	}
}

func TestDeleteProjectRemovesEverythingItOwns(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreeService(db)
	project := createTestProject(t, db, "Doomed")
	other := createTestProject(t, db, "Survivor")

	section, err := svc.CreateSection(project.ProjectID, NodeAttrs{Title: "Plan"})
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	if _, err := svc.CreateSection(other.ProjectID, NodeAttrs{Title: "Keep"}); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	user := createTestUser(t, db, "member@example.org")
	member := models.ProjectMember{ProjectID: project.ProjectID, UserID: user.UserID}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	if err := svc.DeleteProject(project.ProjectID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	var projectCount, sectionCount, memberCount int64
	db.Model(&models.Project{}).Count(&projectCount)
	db.Model(&models.Section{}).Count(&sectionCount)
	db.Model(&models.ProjectMember{}).Count(&memberCount)
	if projectCount != 1 || sectionCount != 1 || memberCount != 0 {
		t.Fatalf("delete incomplete: %d projects, %d sections, %d members",
			projectCount, sectionCount, memberCount)
	}
	var gone int64
	db.Model(&models.Section{}).Where("section_id = ?", section.SectionID).Count(&gone)
	if gone != 0 {
		t.Fatal("deleted project's section survived")
	}
}
