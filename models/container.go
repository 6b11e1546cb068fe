package models

// ContainerKind names one level of the work-breakdown tree, plus the
// module attachment point.
type ContainerKind string

const (
	ContainerProject  ContainerKind = "project"
	ContainerSection  ContainerKind = "section"
	ContainerWork     ContainerKind = "work"
	ContainerTask     ContainerKind = "task"
	ContainerActivity ContainerKind = "activity"
	ContainerModule   ContainerKind = "module"
)

// ContainerRef is a tagged reference to exactly one tree container.
// Rows still persist one nullable column per kind; the ref is built once
// at the boundary so the rest of the code never re-checks which column
// is populated.
type ContainerRef struct {
	Kind ContainerKind `json:"kind"`
	ID   uint          `json:"id"`
}

// IsZero reports whether the ref points nowhere.
func (r ContainerRef) IsZero() bool {
	return r.Kind == "" || r.ID == 0
}

func ProjectRef(id uint) ContainerRef  { return ContainerRef{Kind: ContainerProject, ID: id} }
func SectionRef(id uint) ContainerRef  { return ContainerRef{Kind: ContainerSection, ID: id} }
func WorkRef(id uint) ContainerRef     { return ContainerRef{Kind: ContainerWork, ID: id} }
func TaskRef(id uint) ContainerRef     { return ContainerRef{Kind: ContainerTask, ID: id} }
func ActivityRef(id uint) ContainerRef { return ContainerRef{Kind: ContainerActivity, ID: id} }
func ModuleRef(id uint) ContainerRef   { return ContainerRef{Kind: ContainerModule, ID: id} }

// RefFromColumns builds a ref from a row's nullable container columns.
// It reports false unless exactly one column is populated.
func RefFromColumns(projectID, sectionID, workID, taskID, activityID, moduleID *uint) (ContainerRef, bool) {
	var ref ContainerRef
	count := 0
	set := func(kind ContainerKind, id *uint) {
		if id != nil && *id != 0 {
			ref = ContainerRef{Kind: kind, ID: *id}
			count++
		}
	}
	set(ContainerProject, projectID)
	set(ContainerSection, sectionID)
	set(ContainerWork, workID)
	set(ContainerTask, taskID)
	set(ContainerActivity, activityID)
	set(ContainerModule, moduleID)
	if count != 1 {
		return ContainerRef{}, false
	}
	return ref, true
}

// Columns is the inverse of RefFromColumns: the nullable column values
// for a row holding this ref.
func (r ContainerRef) Columns() (projectID, sectionID, workID, taskID, activityID, moduleID *uint) {
	id := r.ID
	switch r.Kind {
	case ContainerProject:
		projectID = &id
	case ContainerSection:
		sectionID = &id
	case ContainerWork:
		workID = &id
	case ContainerTask:
		taskID = &id
	case ContainerActivity:
		activityID = &id
	case ContainerModule:
		moduleID = &id
	}
	return
}
