package services

import (
	"testing"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// buildFixtureProject builds a small but full-featured tree: partners,
// a section/work/task chain, a module with official text, components
// and members.
func buildFixtureProject(t *testing.T, db *gorm.DB) (*models.Project, *models.Module) {
	t.Helper()
	tree := NewTreeService(db)
	project := createTestProject(t, db, "Erasmus Fixture")

	coordinator := models.Partner{
		ProjectID: project.ProjectID, Name: "Universita di Bologna", Nation: "IT",
		Role: models.PartnerRoleCoordinator, Budget: 120000,
		ContactName: "M. Rossi", ContactEmail: "rossi@unibo.example",
	}
	partner := models.Partner{
		ProjectID: project.ProjectID, Name: "TU Dresden", Nation: "DE",
		Role: models.PartnerRolePartner, Budget: 80000,
	}
	if err := db.Create(&coordinator).Error; err != nil {
		t.Fatalf("failed to create coordinator: %v", err)
	}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("failed to create partner: %v", err)
	}

	sectionBudget := 45000.0
	section, err := tree.CreateSection(project.ProjectID, NodeAttrs{Title: "Work Plan", Budget: &sectionBudget})
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	work, err := tree.CreateWork(models.SectionRef(section.SectionID), NodeAttrs{Title: "WP1 Management"})
	if err != nil {
		t.Fatalf("CreateWork failed: %v", err)
	}
	task, err := tree.CreateTask(work.WorkID, NodeAttrs{Title: "Kick-off"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	author := createTestUser(t, db, "author@example.org")
	module, err := tree.CreateModule(models.TaskRef(task.TaskID), &models.Module{Title: "Methodology"})
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	if err := db.Model(module).Update("official_text", "Approved methodology text.").Error; err != nil {
		t.Fatalf("failed to set official text: %v", err)
	}
	module.OfficialText = "Approved methodology text."
	component := models.TextComponent{
		ModuleID: module.ModuleID, AuthorID: author.UserID,
		Type: models.ComponentTypeUserText, Content: "Draft paragraph.",
		Status: models.ComponentStatusToIntegrate,
	}
	if err := db.Create(&component).Error; err != nil {
		t.Fatalf("failed to create component: %v", err)
	}
	member := models.ModuleMember{ModuleID: module.ModuleID, UserID: author.UserID, Role: models.ModuleRoleEditor}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create module member: %v", err)
	}

	share := 60.0
	assignment := models.PartnerAssignment{
		PartnerID:         coordinator.PartnerID,
		Role:              models.AssignmentRoleLead,
		BudgetShare:       &share,
		ResponsibleUserID: &author.UserID,
	}
	assignment.SetContainerRef(models.SectionRef(section.SectionID))
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to create partner assignment: %v", err)
	}
	projectMember := models.ProjectMember{
		ProjectID: project.ProjectID, UserID: author.UserID, PartnerID: &coordinator.PartnerID,
	}
	if err := db.Create(&projectMember).Error; err != nil {
		t.Fatalf("failed to create project member: %v", err)
	}
	return project, module
}

func TestCreateTemplateSanitizes(t *testing.T) {
	db := newTestDB(t)
	svc := NewTemplateService(db)
	project, _ := buildFixtureProject(t, db)
	actor := Actor{UserID: 1, IsManager: true}

	templateID, err := svc.CreateTemplate(actor, project.ProjectID, "Standard Erasmus Layout")
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	var template models.Project
	if err := db.First(&template, "project_id = ?", templateID).Error; err != nil {
		t.Fatalf("failed to load template: %v", err)
	}
	if !template.IsTemplate || template.Status != models.ProjectStatusDraft {
		t.Fatalf("template flags wrong: %+v", template)
	}

	var partners []models.Partner
	if err := db.Where("project_id = ?", templateID).Order("partner_id ASC").Find(&partners).Error; err != nil {
		t.Fatalf("failed to load template partners: %v", err)
	}
	if len(partners) != 2 {
		t.Fatalf("expected 2 template partners, got %d", len(partners))
	}
	for _, p := range partners {
		if p.Budget != 0 {
			t.Fatalf("template partner %q kept a budget: %v", p.Name, p.Budget)
		}
		if p.ContactName != "" || p.ContactEmail != "" {
			t.Fatalf("template partner %q kept contact data", p.Name)
		}
		switch p.Role {
		case models.PartnerRoleCoordinator:
			if p.Name != "Coordinator Organization" {
				t.Fatalf("coordinator not genericized: %q", p.Name)
			}
		default:
			if p.Name != "Partner 1" {
				t.Fatalf("partner not genericized: %q", p.Name)
			}
		}
	}

	// Structure survives, content and money do not.
	var templateSection models.Section
	if err := db.First(&templateSection, "project_id = ?", templateID).Error; err != nil {
		t.Fatalf("failed to load template section: %v", err)
	}
	if templateSection.Budget != nil {
		t.Fatalf("template section kept a budget: %v", *templateSection.Budget)
	}

	var templateAssignment models.PartnerAssignment
	if err := db.First(&templateAssignment, "section_id = ?", templateSection.SectionID).Error; err != nil {
		t.Fatalf("failed to load template partner assignment: %v", err)
	}
	if templateAssignment.Role != models.AssignmentRoleLead {
		t.Fatalf("template assignment role wrong: %q", templateAssignment.Role)
	}
	if templateAssignment.BudgetShare != nil || templateAssignment.ResponsibleUserID != nil {
		t.Fatal("template assignment kept budget share or responsible user")
	}

	var moduleCount int64
	var modules []models.Module
	var taskIDs []uint
	if err := db.Model(&models.Task{}).Pluck("task_id", &taskIDs).Error; err != nil {
		t.Fatalf("task pluck failed: %v", err)
	}
	if err := db.Where("task_id IN ?", taskIDs).Find(&modules).Error; err != nil {
		t.Fatalf("failed to load template modules: %v", err)
	}
	moduleCount = 0
	for _, m := range modules {
		if m.OfficialText != "" {
			continue // source module keeps its text; template copies must not
		}
		moduleCount++
		var components int64
		if err := db.Model(&models.TextComponent{}).Where("module_id = ?", m.ModuleID).Count(&components).Error; err != nil {
			t.Fatalf("component count failed: %v", err)
		}
		if components != 0 {
			t.Fatalf("template module %d kept components", m.ModuleID)
		}
		if m.Status != models.ModuleStatusToDo {
			t.Fatalf("template module %d kept workflow status %s", m.ModuleID, m.Status)
		}
	}
	if moduleCount != 1 {
		t.Fatalf("expected exactly one sanitized template module, got %d", moduleCount)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewTemplateService(db)
	project, module := buildFixtureProject(t, db)
	actor := Actor{UserID: 1, IsManager: true}

	snapshot, err := svc.CreateSnapshot(actor, project.ProjectID, "before changes")
	if err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}

	// Mutate the live tree: drop the module's text and add a stray section.
	if err := db.Model(&models.Module{}).Where("module_id = ?", module.ModuleID).
		Update("official_text", "").Error; err != nil {
		t.Fatalf("failed to clear text: %v", err)
	}
	if _, err := NewTreeService(db).CreateSection(project.ProjectID, NodeAttrs{Title: "Stray"}); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	if err := svc.RestoreSnapshot(actor, project.ProjectID, snapshot.SnapshotID); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	// The project id survives; the stray section does not.
	var sections []models.Section
	if err := db.Where("project_id = ?", project.ProjectID).Find(&sections).Error; err != nil {
		t.Fatalf("failed to load sections: %v", err)
	}
	if len(sections) != 1 || sections[0].Title != "Work Plan" {
		t.Fatalf("restored sections wrong: %+v", sections)
	}

	// The module content came back, with its components and members.
	var taskIDs []uint
	if err := db.Model(&models.Task{}).Pluck("task_id", &taskIDs).Error; err != nil {
		t.Fatalf("task pluck failed: %v", err)
	}
	var restored models.Module
	if err := db.Where("task_id IN ?", taskIDs).First(&restored).Error; err != nil {
		t.Fatalf("failed to load restored module: %v", err)
	}
	if restored.OfficialText != "Approved methodology text." {
		t.Fatalf("official text not restored: %q", restored.OfficialText)
	}
	var componentCount, memberCount int64
	if err := db.Model(&models.TextComponent{}).Where("module_id = ?", restored.ModuleID).Count(&componentCount).Error; err != nil {
		t.Fatalf("component count failed: %v", err)
	}
	if err := db.Model(&models.ModuleMember{}).Where("module_id = ?", restored.ModuleID).Count(&memberCount).Error; err != nil {
		t.Fatalf("member count failed: %v", err)
	}
	if componentCount != 1 || memberCount != 1 {
		t.Fatalf("module bindings not restored: %d components, %d members", componentCount, memberCount)
	}

	// Partner assignments came back on the rebuilt container, pointing
	// at the recreated partner.
	var assignments []models.PartnerAssignment
	if err := db.Find(&assignments).Error; err != nil {
		t.Fatalf("failed to load partner assignments: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("expected 1 restored partner assignment, got %d", len(assignments))
	}
	restoredAssignment := assignments[0]
	if restoredAssignment.Role != models.AssignmentRoleLead {
		t.Fatalf("assignment role wrong: %q", restoredAssignment.Role)
	}
	if restoredAssignment.SectionID == nil || *restoredAssignment.SectionID != sections[0].SectionID {
		t.Fatalf("assignment not bound to the restored section: %+v", restoredAssignment)
	}
	if restoredAssignment.BudgetShare == nil || *restoredAssignment.BudgetShare != 60 {
		t.Fatalf("assignment budget share lost: %+v", restoredAssignment.BudgetShare)
	}
	var assignmentPartner models.Partner
	if err := db.First(&assignmentPartner, "partner_id = ?", restoredAssignment.PartnerID).Error; err != nil {
		t.Fatalf("failed to load assignment partner: %v", err)
	}
	if assignmentPartner.ProjectID != project.ProjectID || assignmentPartner.Name != "Universita di Bologna" {
		t.Fatalf("assignment partner not remapped: %+v", assignmentPartner)
	}

	// The member's partner link follows the recreated partner row.
	var restoredMember models.ProjectMember
	if err := db.First(&restoredMember, "project_id = ?", project.ProjectID).Error; err != nil {
		t.Fatalf("failed to load project member: %v", err)
	}
	if restoredMember.PartnerID == nil || *restoredMember.PartnerID != assignmentPartner.PartnerID {
		t.Fatalf("member partner link not relinked: %+v", restoredMember.PartnerID)
	}

	// Restore wrote a safety snapshot alongside the original.
	snapshots, err := svc.ListSnapshots(project.ProjectID)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected original + safety snapshot, got %d", len(snapshots))
	}
}

func TestRestoreSnapshotRejectsForeignSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := NewTemplateService(db)
	first, _ := buildFixtureProject(t, db)
	second := createTestProject(t, db, "Other")
	actor := Actor{UserID: 1, IsManager: true}

	snapshot, err := svc.CreateSnapshot(actor, first.ProjectID, "mine")
	if err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}
	if err := svc.RestoreSnapshot(actor, second.ProjectID, snapshot.SnapshotID); err == nil {
		t.Fatal("restoring another project's snapshot must fail")
	}
}
