package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// cloneTimeout bounds snapshot capture and restore over very large
// trees. Exceeding it rolls the transaction back; never a partial
// commit.
const cloneTimeout = 2 * time.Minute

// TemplateService deep-clones project trees: template creation,
// point-in-time snapshots and full-tree restore. Every operation is one
// transaction over a flat document with explicit old-id maps, so the
// traversal is iterative and the clone is all-or-nothing.
type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// The snapshot document: flat lists keyed by the source row ids, so the
// rebuild is plain loops over id maps, parents before children.

type snapshotPartner struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Nation       string  `json:"nation"`
	City         string  `json:"city"`
	Role         string  `json:"role"`
	Type         string  `json:"type"`
	Budget       float64 `json:"budget"`
	ContactName  string  `json:"contact_name,omitempty"`
	ContactEmail string  `json:"contact_email,omitempty"`
	ContactPhone string  `json:"contact_phone,omitempty"`
}

type snapshotNode struct {
	ID            uint       `json:"id"`
	ParentID      uint       `json:"parent_id,omitempty"` // section/work/task owner; zero means project
	Title         string     `json:"title"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Budget        *float64   `json:"budget,omitempty"`
	OrderIndex    int        `json:"order_index"`
	LeadPartnerID *uint      `json:"lead_partner_id,omitempty"`
}

type snapshotComponent struct {
	AuthorID   uint   `json:"author_id"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
	Status     string `json:"status"`
}

type snapshotMember struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type snapshotModule struct {
	ID            uint                 `json:"id"`
	ParentKind    models.ContainerKind `json:"parent_kind"`
	ParentID      uint                 `json:"parent_id"` // zero for project parents
	Title         string               `json:"title"`
	Subtitle      string               `json:"subtitle,omitempty"`
	Type          string               `json:"type"`
	Guidelines    *string              `json:"guidelines,omitempty"`
	MaxChars      *int                 `json:"max_chars,omitempty"`
	PopupOptions  string               `json:"popup_options,omitempty"`
	MaxSelections *int                 `json:"max_selections,omitempty"`
	OrderIndex    int                  `json:"order_index"`
	Completion    int                  `json:"completion,omitempty"`
	OfficialText  string               `json:"official_text,omitempty"`
	Status        string               `json:"status,omitempty"`
	AuthorizedBy  *uint                `json:"authorized_by,omitempty"`
	AuthorizedAt  *time.Time           `json:"authorized_at,omitempty"`
	ValidatedBy   *uint                `json:"validated_by,omitempty"`
	ValidatedAt   *time.Time           `json:"validated_at,omitempty"`
	Components    []snapshotComponent  `json:"components,omitempty"`
	Members       []snapshotMember     `json:"members,omitempty"`
}

type snapshotAssignment struct {
	PartnerID         uint                 `json:"partner_id"`
	Role              string               `json:"role"`
	BudgetShare       *float64             `json:"budget_share,omitempty"`
	ResponsibleUserID *uint                `json:"responsible_user_id,omitempty"`
	ContainerKind     models.ContainerKind `json:"container_kind"`
	ContainerID       uint                 `json:"container_id"`
}

type snapshotDoc struct {
	Title          string               `json:"title"`
	Acronym        string               `json:"acronym"`
	DurationMonths int                  `json:"duration_months"`
	Partners       []snapshotPartner    `json:"partners"`
	Sections       []snapshotNode       `json:"sections"`
	Works          []snapshotNode       `json:"works"` // ParentID = section id, zero for direct project works
	Tasks          []snapshotNode       `json:"tasks"`
	Activities     []snapshotNode       `json:"activities"`
	Assignments    []snapshotAssignment `json:"assignments"`
	Modules        []snapshotModule     `json:"modules"`
}

// CreateTemplate clones a project into a new template project. Partner
// identity and money are deliberately stripped (generic names, zero
// budgets) and module content is excluded: a template is a reusable
// skeleton, not a copy of proprietary text. One transaction; a failed
// node create rolls the whole template back.
func (s *TemplateService) CreateTemplate(actor Actor, projectID uint, name string) (uint, error) {
	if name == "" {
		return 0, &ValidationError{Field: "name", Message: "template name is required"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cloneTimeout)
	defer cancel()

	var newProjectID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.Project
		if err := tx.First(&source, "project_id = ?", projectID).Error; err != nil {
			return wrapNotFound(err, "project", projectID)
		}
		doc, err := captureDoc(tx, &source, false)
		if err != nil {
			return err
		}
		sanitizeForTemplate(doc)

		now := time.Now()
		template := models.Project{
			Title:          name,
			Acronym:        source.Acronym,
			StartDate:      &now,
			EndDate:        nil,
			DurationMonths: source.DurationMonths,
			Status:         models.ProjectStatusDraft,
			IsTemplate:     true,
			CreatedBy:      &actor.UserID,
		}
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
		newProjectID = template.ProjectID
		_, err = buildFromDoc(tx, template.ProjectID, doc)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newProjectID, nil
}

// CreateSnapshot captures the full structural tree, workflow state
// included, as one JSON document row.
func (s *TemplateService) CreateSnapshot(actor Actor, projectID uint, name string) (*models.ProjectSnapshot, error) {
	if name == "" {
		name = "Snapshot " + time.Now().Format("2006-01-02 15:04")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cloneTimeout)
	defer cancel()

	var snapshot *models.ProjectSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		snapshot, err = writeSnapshot(tx, actor, projectID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RestoreSnapshot atomically replaces the live project's tree with the
// snapshot's contents. The project id survives; every descendant id is
// regenerated. A safety snapshot of the pre-restore state is taken
// inside the same transaction, so a failed restore leaves everything
// intact and a successful one is still reversible.
func (s *TemplateService) RestoreSnapshot(actor Actor, projectID, snapshotID uint) error {
	ctx, cancel := context.WithTimeout(context.Background(), cloneTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snapshot models.ProjectSnapshot
		if err := tx.First(&snapshot, "snapshot_id = ?", snapshotID).Error; err != nil {
			return wrapNotFound(err, "snapshot", snapshotID)
		}
		if snapshot.ProjectID != projectID {
			return &ValidationError{Field: "snapshot", Message: "snapshot does not belong to this project"}
		}
		var doc snapshotDoc
		if err := json.Unmarshal([]byte(snapshot.Data), &doc); err != nil {
			return fmt.Errorf("snapshot %d is unreadable: %w", snapshotID, err)
		}

		safetyName := "Pre-restore " + time.Now().Format("2006-01-02 15:04:05")
		if _, err := writeSnapshot(tx, actor, projectID, safetyName); err != nil {
			return err
		}

		// Member and legacy user partner links reference partner rows by
		// id. Record them before the wipe so they can be relinked to the
		// recreated partners afterwards.
		memberLinks := map[uint]uint{}
		var members []models.ProjectMember
		if err := tx.Where("project_id = ? AND partner_id IS NOT NULL", projectID).Find(&members).Error; err != nil {
			return err
		}
		for _, m := range members {
			memberLinks[m.MemberID] = *m.PartnerID
		}
		userLinks := map[uint]uint{}
		var livePartnerIDs []uint
		if err := tx.Model(&models.Partner{}).Where("project_id = ?", projectID).
			Pluck("partner_id", &livePartnerIDs).Error; err != nil {
			return err
		}
		if len(livePartnerIDs) > 0 {
			var legacyUsers []models.User
			if err := tx.Where("partner_id IN ?", livePartnerIDs).Find(&legacyUsers).Error; err != nil {
				return err
			}
			for _, u := range legacyUsers {
				userLinks[u.UserID] = *u.PartnerID
			}
		}

		if err := wipeProjectTree(tx, projectID); err != nil {
			return err
		}
		partnerMap, err := buildFromDoc(tx, projectID, &doc)
		if err != nil {
			return err
		}

		// A link whose partner is absent from the snapshot stays cleared.
		for memberID, oldPartner := range memberLinks {
			newID, ok := partnerMap[oldPartner]
			if !ok {
				continue
			}
			if err := tx.Model(&models.ProjectMember{}).Where("member_id = ?", memberID).
				Update("partner_id", newID).Error; err != nil {
				return err
			}
		}
		for userID, oldPartner := range userLinks {
			newID, ok := partnerMap[oldPartner]
			if !ok {
				continue
			}
			if err := tx.Model(&models.User{}).Where("user_id = ?", userID).
				Update("partner_id", newID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSnapshots returns a project's snapshots, newest first, without
// the document payloads.
func (s *TemplateService) ListSnapshots(projectID uint) ([]models.ProjectSnapshot, error) {
	var snapshots []models.ProjectSnapshot
	err := s.db.Select("snapshot_id, project_id, name, created_by, created_at").
		Where("project_id = ?", projectID).
		Order("created_at DESC, snapshot_id DESC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func writeSnapshot(tx *gorm.DB, actor Actor, projectID uint, name string) (*models.ProjectSnapshot, error) {
	var project models.Project
	if err := tx.First(&project, "project_id = ?", projectID).Error; err != nil {
		return nil, wrapNotFound(err, "project", projectID)
	}
	doc, err := captureDoc(tx, &project, true)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	snapshot := &models.ProjectSnapshot{
		ProjectID: projectID,
		Name:      name,
		Data:      string(data),
		CreatedBy: &actor.UserID,
	}
	if err := tx.Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// captureDoc reads the whole tree in dependency order, parents before
// children. With includeContent false, module text, components and
// member bindings are left out of the document.
func captureDoc(tx *gorm.DB, project *models.Project, includeContent bool) (*snapshotDoc, error) {
	doc := &snapshotDoc{
		Title:          project.Title,
		Acronym:        project.Acronym,
		DurationMonths: project.DurationMonths,
	}

	var partners []models.Partner
	if err := tx.Where("project_id = ?", project.ProjectID).Order("partner_id ASC").Find(&partners).Error; err != nil {
		return nil, err
	}
	for _, p := range partners {
		doc.Partners = append(doc.Partners, snapshotPartner{
			ID: p.PartnerID, Name: p.Name, Nation: p.Nation, City: p.City,
			Role: p.Role, Type: p.Type, Budget: p.Budget,
			ContactName: p.ContactName, ContactEmail: p.ContactEmail, ContactPhone: p.ContactPhone,
		})
	}

	var sections []models.Section
	if err := tx.Where("project_id = ?", project.ProjectID).Order("order_index ASC").Find(&sections).Error; err != nil {
		return nil, err
	}
	sectionIDs := make([]uint, 0, len(sections))
	for _, n := range sections {
		sectionIDs = append(sectionIDs, n.SectionID)
		doc.Sections = append(doc.Sections, snapshotNode{
			ID: n.SectionID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: n.LeadPartnerID,
		})
	}

	var works []models.Work
	query := tx.Where("project_id = ?", project.ProjectID)
	if len(sectionIDs) > 0 {
		query = query.Or("section_id IN ?", sectionIDs)
	}
	if err := query.Order("order_index ASC").Find(&works).Error; err != nil {
		return nil, err
	}
	workIDs := make([]uint, 0, len(works))
	for _, n := range works {
		workIDs = append(workIDs, n.WorkID)
		node := snapshotNode{
			ID: n.WorkID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: n.LeadPartnerID,
		}
		if n.SectionID != nil {
			node.ParentID = *n.SectionID
		}
		doc.Works = append(doc.Works, node)
	}

	var tasks []models.Task
	if len(workIDs) > 0 {
		if err := tx.Where("work_id IN ?", workIDs).Order("order_index ASC").Find(&tasks).Error; err != nil {
			return nil, err
		}
	}
	taskIDs := make([]uint, 0, len(tasks))
	for _, n := range tasks {
		taskIDs = append(taskIDs, n.TaskID)
		doc.Tasks = append(doc.Tasks, snapshotNode{
			ID: n.TaskID, ParentID: n.WorkID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: n.LeadPartnerID,
		})
	}

	var activities []models.Activity
	if len(taskIDs) > 0 {
		if err := tx.Where("task_id IN ?", taskIDs).Order("order_index ASC").Find(&activities).Error; err != nil {
			return nil, err
		}
	}
	for _, n := range activities {
		doc.Activities = append(doc.Activities, snapshotNode{
			ID: n.ActivityID, ParentID: n.TaskID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: n.LeadPartnerID,
		})
	}

	activityIDs := make([]uint, 0, len(activities))
	for _, a := range activities {
		activityIDs = append(activityIDs, a.ActivityID)
	}
	containerSets := []struct {
		col string
		ids []uint
	}{
		{"section_id", sectionIDs},
		{"work_id", workIDs},
		{"task_id", taskIDs},
		{"activity_id", activityIDs},
	}
	for _, set := range containerSets {
		if len(set.ids) == 0 {
			continue
		}
		var assignments []models.PartnerAssignment
		if err := tx.Where(set.col+" IN ?", set.ids).Order("partner_assignment_id ASC").
			Find(&assignments).Error; err != nil {
			return nil, err
		}
		for _, a := range assignments {
			ref, ok := a.ContainerRef()
			if !ok {
				continue
			}
			doc.Assignments = append(doc.Assignments, snapshotAssignment{
				PartnerID:         a.PartnerID,
				Role:              a.Role,
				BudgetShare:       a.BudgetShare,
				ResponsibleUserID: a.ResponsibleUserID,
				ContainerKind:     ref.Kind,
				ContainerID:       ref.ID,
			})
		}
	}

	modules, err := collectProjectModules(tx, project.ProjectID, sectionIDs, workIDs, taskIDs, activities)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		entry, err := captureModule(tx, m, includeContent)
		if err != nil {
			return nil, err
		}
		doc.Modules = append(doc.Modules, *entry)
	}
	return doc, nil
}

func captureModule(tx *gorm.DB, m *models.Module, includeContent bool) (*snapshotModule, error) {
	ref, ok := m.ParentRef()
	if !ok {
		return nil, &OrphanNodeError{Kind: "module", ID: m.ModuleID}
	}
	entry := &snapshotModule{
		ID:            m.ModuleID,
		ParentKind:    ref.Kind,
		Title:         m.Title,
		Subtitle:      m.Subtitle,
		Type:          m.Type,
		Guidelines:    m.Guidelines,
		MaxChars:      m.MaxChars,
		PopupOptions:  m.PopupOptions,
		MaxSelections: m.MaxSelections,
		OrderIndex:    m.OrderIndex,
	}
	if ref.Kind != models.ContainerProject {
		entry.ParentID = ref.ID
	}
	if !includeContent {
		return entry, nil
	}

	entry.OfficialText = m.OfficialText
	entry.Status = m.Status
	entry.Completion = m.Completion
	entry.AuthorizedBy = m.AuthorizedBy
	entry.AuthorizedAt = m.AuthorizedAt
	entry.ValidatedBy = m.ValidatedBy
	entry.ValidatedAt = m.ValidatedAt

	var components []models.TextComponent
	if err := tx.Where("module_id = ?", m.ModuleID).Order("order_index ASC").Find(&components).Error; err != nil {
		return nil, err
	}
	for _, c := range components {
		entry.Components = append(entry.Components, snapshotComponent{
			AuthorID: c.AuthorID, Type: c.Type, Content: c.Content,
			OrderIndex: c.OrderIndex, Status: c.Status,
		})
	}
	var members []models.ModuleMember
	if err := tx.Where("module_id = ?", m.ModuleID).Order("module_member_id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	for _, mm := range members {
		entry.Members = append(entry.Members, snapshotMember{UserID: mm.UserID, Role: mm.Role})
	}
	return entry, nil
}

// collectProjectModules gathers every module in the project, container
// attached first, then nested submodules breadth-first so parents
// always precede children in the result.
func collectProjectModules(tx *gorm.DB, projectID uint, sectionIDs, workIDs, taskIDs []uint, activities []models.Activity) ([]*models.Module, error) {
	query := tx.Where("project_id = ?", projectID)
	if len(sectionIDs) > 0 {
		query = query.Or("section_id IN ?", sectionIDs)
	}
	if len(workIDs) > 0 {
		query = query.Or("work_id IN ?", workIDs)
	}
	if len(taskIDs) > 0 {
		query = query.Or("task_id IN ?", taskIDs)
	}
	activityIDs := make([]uint, 0, len(activities))
	for _, a := range activities {
		activityIDs = append(activityIDs, a.ActivityID)
	}
	if len(activityIDs) > 0 {
		query = query.Or("activity_id IN ?", activityIDs)
	}

	var attached []models.Module
	if err := query.Order("order_index ASC").Find(&attached).Error; err != nil {
		return nil, err
	}
	result := make([]*models.Module, 0, len(attached))
	frontier := make([]uint, 0, len(attached))
	for i := range attached {
		result = append(result, &attached[i])
		frontier = append(frontier, attached[i].ModuleID)
	}
	for len(frontier) > 0 {
		var children []models.Module
		if err := tx.Where("parent_module_id IN ?", frontier).Order("order_index ASC").Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for i := range children {
			result = append(result, &children[i])
			frontier = append(frontier, children[i].ModuleID)
		}
	}
	return result, nil
}

// sanitizeForTemplate strips financial and identity data: generic
// partner names, zero budgets at every level, cleared contacts, dates
// and responsibility links. Assignment roles survive; they are
// structure, not money.
func sanitizeForTemplate(doc *snapshotDoc) {
	partnerN := 0
	for i := range doc.Partners {
		p := &doc.Partners[i]
		if p.Role == models.PartnerRoleCoordinator {
			p.Name = "Coordinator Organization"
		} else {
			partnerN++
			p.Name = fmt.Sprintf("Partner %d", partnerN)
		}
		p.Budget = 0
		p.ContactName = ""
		p.ContactEmail = ""
		p.ContactPhone = ""
	}
	clearNodes := func(nodes []snapshotNode) {
		for i := range nodes {
			nodes[i].StartDate = nil
			nodes[i].EndDate = nil
			nodes[i].Budget = nil
		}
	}
	clearNodes(doc.Sections)
	clearNodes(doc.Works)
	clearNodes(doc.Tasks)
	clearNodes(doc.Activities)
	for i := range doc.Assignments {
		doc.Assignments[i].BudgetShare = nil
		doc.Assignments[i].ResponsibleUserID = nil
	}
}

// buildFromDoc recreates the whole tree under projectID, parents before
// children, keeping an old-id to new-id map per level. The partner map
// is returned so the caller can relink rows that reference partners by
// their pre-rebuild ids.
func buildFromDoc(tx *gorm.DB, projectID uint, doc *snapshotDoc) (map[uint]uint, error) {
	partnerMap := make(map[uint]uint, len(doc.Partners))
	for _, p := range doc.Partners {
		partner := models.Partner{
			ProjectID: projectID, Name: p.Name, Nation: p.Nation, City: p.City,
			Role: p.Role, Type: p.Type, Budget: p.Budget,
			ContactName: p.ContactName, ContactEmail: p.ContactEmail, ContactPhone: p.ContactPhone,
		}
		if err := tx.Create(&partner).Error; err != nil {
			return nil, err
		}
		partnerMap[p.ID] = partner.PartnerID
	}
	remapPartner := func(old *uint) *uint {
		if old == nil {
			return nil
		}
		if mapped, ok := partnerMap[*old]; ok {
			return &mapped
		}
		return nil
	}

	sectionMap := make(map[uint]uint, len(doc.Sections))
	for _, n := range doc.Sections {
		section := models.Section{
			ProjectID: projectID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: remapPartner(n.LeadPartnerID),
		}
		if err := tx.Create(&section).Error; err != nil {
			return nil, err
		}
		sectionMap[n.ID] = section.SectionID
	}

	workMap := make(map[uint]uint, len(doc.Works))
	for _, n := range doc.Works {
		work := models.Work{
			Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: remapPartner(n.LeadPartnerID),
		}
		if n.ParentID == 0 {
			pid := projectID
			work.ProjectID = &pid
		} else {
			sectionID, ok := sectionMap[n.ParentID]
			if !ok {
				return nil, fmt.Errorf("work %d references unknown section %d", n.ID, n.ParentID)
			}
			work.SectionID = &sectionID
		}
		if err := tx.Create(&work).Error; err != nil {
			return nil, err
		}
		workMap[n.ID] = work.WorkID
	}

	taskMap := make(map[uint]uint, len(doc.Tasks))
	for _, n := range doc.Tasks {
		workID, ok := workMap[n.ParentID]
		if !ok {
			return nil, fmt.Errorf("task %d references unknown work %d", n.ID, n.ParentID)
		}
		task := models.Task{
			WorkID: workID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: remapPartner(n.LeadPartnerID),
		}
		if err := tx.Create(&task).Error; err != nil {
			return nil, err
		}
		taskMap[n.ID] = task.TaskID
	}

	activityMap := make(map[uint]uint, len(doc.Activities))
	for _, n := range doc.Activities {
		taskID, ok := taskMap[n.ParentID]
		if !ok {
			return nil, fmt.Errorf("activity %d references unknown task %d", n.ID, n.ParentID)
		}
		activity := models.Activity{
			TaskID: taskID, Title: n.Title, StartDate: n.StartDate, EndDate: n.EndDate,
			Budget: n.Budget, OrderIndex: n.OrderIndex, LeadPartnerID: remapPartner(n.LeadPartnerID),
		}
		if err := tx.Create(&activity).Error; err != nil {
			return nil, err
		}
		activityMap[n.ID] = activity.ActivityID
	}

	for _, a := range doc.Assignments {
		partnerID, ok := partnerMap[a.PartnerID]
		if !ok {
			return nil, fmt.Errorf("partner assignment references unknown partner %d", a.PartnerID)
		}
		var containerID uint
		switch a.ContainerKind {
		case models.ContainerSection:
			containerID, ok = sectionMap[a.ContainerID]
		case models.ContainerWork:
			containerID, ok = workMap[a.ContainerID]
		case models.ContainerTask:
			containerID, ok = taskMap[a.ContainerID]
		case models.ContainerActivity:
			containerID, ok = activityMap[a.ContainerID]
		default:
			ok = false
		}
		if !ok {
			return nil, fmt.Errorf("partner assignment references unknown %s %d", a.ContainerKind, a.ContainerID)
		}
		assignment := models.PartnerAssignment{
			PartnerID:         partnerID,
			Role:              a.Role,
			BudgetShare:       a.BudgetShare,
			ResponsibleUserID: a.ResponsibleUserID,
		}
		assignment.SetContainerRef(models.ContainerRef{Kind: a.ContainerKind, ID: containerID})
		if err := tx.Create(&assignment).Error; err != nil {
			return nil, err
		}
	}

	// Modules were captured parents-first, so one forward pass places
	// nested submodules after their parents.
	moduleMap := make(map[uint]uint, len(doc.Modules))
	for _, m := range doc.Modules {
		module := models.Module{
			Title: m.Title, Subtitle: m.Subtitle, Type: m.Type,
			Guidelines: m.Guidelines, MaxChars: m.MaxChars,
			PopupOptions: m.PopupOptions, MaxSelections: m.MaxSelections,
			OrderIndex: m.OrderIndex, Completion: m.Completion,
			OfficialText: m.OfficialText,
			AuthorizedBy: m.AuthorizedBy, AuthorizedAt: m.AuthorizedAt,
			ValidatedBy: m.ValidatedBy, ValidatedAt: m.ValidatedAt,
		}
		module.Status = m.Status
		if module.Status == "" {
			module.Status = models.ModuleStatusToDo
		}
		switch m.ParentKind {
		case models.ContainerProject:
			module.SetParentRef(models.ProjectRef(projectID))
		case models.ContainerSection:
			id, ok := sectionMap[m.ParentID]
			if !ok {
				return nil, fmt.Errorf("module %d references unknown section %d", m.ID, m.ParentID)
			}
			module.SetParentRef(models.SectionRef(id))
		case models.ContainerWork:
			id, ok := workMap[m.ParentID]
			if !ok {
				return nil, fmt.Errorf("module %d references unknown work %d", m.ID, m.ParentID)
			}
			module.SetParentRef(models.WorkRef(id))
		case models.ContainerTask:
			id, ok := taskMap[m.ParentID]
			if !ok {
				return nil, fmt.Errorf("module %d references unknown task %d", m.ID, m.ParentID)
			}
			module.SetParentRef(models.TaskRef(id))
		case models.ContainerActivity:
			id, ok := activityMap[m.ParentID]
			if !ok {
				return nil, fmt.Errorf("module %d references unknown activity %d", m.ID, m.ParentID)
			}
			module.SetParentRef(models.ActivityRef(id))
		case models.ContainerModule:
			id, ok := moduleMap[m.ParentID]
			if !ok {
				return nil, fmt.Errorf("module %d references unknown parent module %d", m.ID, m.ParentID)
			}
			module.SetParentRef(models.ModuleRef(id))
		default:
			return nil, fmt.Errorf("module %d has unknown parent kind %q", m.ID, m.ParentKind)
		}
		if err := tx.Create(&module).Error; err != nil {
			return nil, err
		}
		moduleMap[m.ID] = module.ModuleID

		for _, c := range m.Components {
			component := models.TextComponent{
				ModuleID: module.ModuleID, AuthorID: c.AuthorID, Type: c.Type,
				Content: c.Content, OrderIndex: c.OrderIndex, Status: c.Status,
			}
			if err := tx.Create(&component).Error; err != nil {
				return nil, err
			}
		}
		for _, mm := range m.Members {
			member := models.ModuleMember{ModuleID: module.ModuleID, UserID: mm.UserID, Role: mm.Role}
			if err := tx.Create(&member).Error; err != nil {
				return nil, err
			}
		}
	}
	return partnerMap, nil
}

// wipeProjectTree removes the live tree ahead of a restore: containers,
// modules at every level, partner assignments and container-scoped
// planned assignments. Timesheet entries survive with their container
// scope cleared; logged hours are history, not structure. Member and
// legacy user partner links are cleared here and relinked by the
// caller once the partners exist again.
func wipeProjectTree(tx *gorm.DB, projectID uint) error {
	sub, err := CollectSubtree(tx, models.ProjectRef(projectID))
	if err != nil {
		return err
	}

	// Project-root modules and their nested submodules.
	var rootModules []uint
	if err := tx.Model(&models.Module{}).Where("project_id = ?", projectID).
		Pluck("module_id", &rootModules).Error; err != nil {
		return err
	}
	moduleIDs := rootModules
	frontier := rootModules
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Module{}).Where("parent_module_id IN ?", frontier).
			Pluck("module_id", &children).Error; err != nil {
			return err
		}
		moduleIDs = append(moduleIDs, children...)
		frontier = children
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

	if err := deleteSubtreeRecords(tx, sub); err != nil {
		return err
	}

	scopeCols := []string{"section_id", "work_id", "task_id", "activity_id"}
	for _, col := range scopeCols {
		if err := tx.Model(&models.TimesheetEntry{}).Where("project_id = ?", projectID).
			Update(col, nil).Error; err != nil {
			return err
		}
	}

	if err := tx.Model(&models.ProjectMember{}).Where("project_id = ?", projectID).
		Update("partner_id", nil).Error; err != nil {
		return err
	}
	var partnerIDs []uint
	if err := tx.Model(&models.Partner{}).Where("project_id = ?", projectID).
		Pluck("partner_id", &partnerIDs).Error; err != nil {
		return err
	}
	if len(partnerIDs) > 0 {
		if err := tx.Model(&models.User{}).Where("partner_id IN ?", partnerIDs).
			Update("partner_id", nil).Error; err != nil {
			return err
		}
	}
	return tx.Where("project_id = ?", projectID).Delete(&models.Partner{}).Error
}
