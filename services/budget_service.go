package services

import (
	"sort"

	"consortium-planner-api/models"
	"consortium-planner-api/utils"

	"gorm.io/gorm"
)

// HoursPerDay converts planned days into hours for variance reporting.
const HoursPerDay = 8.0

// UserEffortSummary is one user's planned-vs-actual line on a project.
type UserEffortSummary struct {
	UserID       uint        `json:"user_id"`
	PartnerID    *uint       `json:"partner_id"`
	PlannedDays  float64     `json:"planned_days"`
	PlannedHours float64     `json:"planned_hours"`
	PlannedCost  utils.Cents `json:"-"`
	ActualHours  float64     `json:"actual_hours"`
	Variance     float64     `json:"variance"`
	Utilization  float64     `json:"utilization"`
}

// PartnerBudgetSummary is one partner's declared-vs-consumed line.
type PartnerBudgetSummary struct {
	PartnerID uint        `json:"partner_id"`
	Name      string      `json:"name"`
	Declared  utils.Cents `json:"-"`
	Consumed  utils.Cents `json:"-"`
	Remaining utils.Cents `json:"-"`
}

// ContainerBudgetReport is the budget roll-up for one tree container,
// descendants included.
type ContainerBudgetReport struct {
	Ref       models.ContainerRef
	Declared  *utils.Cents
	Consumed  utils.Cents
	Remaining *utils.Cents
}

// BudgetService recomputes budget and effort aggregates from the source
// Assignment/Timesheet/Partner records on every call. It holds no
// derived state; dashboards tolerate slightly stale reads.
type BudgetService struct {
	db    *gorm.DB
	costs *CostService
}

func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{db: db, costs: NewCostService(db)}
}

// ProjectEffortSummary aggregates planned effort (assignments, costed
// through the rate resolver) and actual effort (timesheet hours) per
// user. Users with logged hours but no assignment still appear, with
// zero planned days. Partner attribution intentionally follows the
// legacy User.PartnerID link; changing it would change financial totals.
func (s *BudgetService) ProjectEffortSummary(projectID uint) ([]UserEffortSummary, error) {
	var assignments []models.Assignment
	if err := s.db.Preload("User").Where("project_id = ?", projectID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	byUser := make(map[uint]*UserEffortSummary)
	entryFor := func(userID uint) *UserEffortSummary {
		if entry, ok := byUser[userID]; ok {
			return entry
		}
		entry := &UserEffortSummary{UserID: userID}
		byUser[userID] = entry
		return entry
	}

	for i := range assignments {
		a := &assignments[i]
		entry := entryFor(a.UserID)
		entry.PlannedDays += a.Days
		entry.PartnerID = a.User.PartnerID
		resolution := s.costs.ResolveDailyRate(a.UserID, projectID, a)
		entry.PlannedCost += utils.CostCents(a.Days, resolution.Rate)
	}

	type hoursRow struct {
		UserID uint
		Hours  float64
	}
	var actuals []hoursRow
	if err := s.db.Model(&models.TimesheetEntry{}).
		Select("user_id, SUM(hours) AS hours").
		Where("project_id = ?", projectID).
		Group("user_id").
		Scan(&actuals).Error; err != nil {
		return nil, err
	}
	for _, row := range actuals {
		entryFor(row.UserID).ActualHours = row.Hours
	}

	summaries := make([]UserEffortSummary, 0, len(byUser))
	for _, entry := range byUser {
		entry.PlannedHours = entry.PlannedDays * HoursPerDay
		entry.Variance = entry.PlannedHours - entry.ActualHours
		if entry.PlannedHours > 0 {
			entry.Utilization = entry.ActualHours / entry.PlannedHours * 100
		}
		summaries = append(summaries, *entry)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].UserID < summaries[j].UserID })
	return summaries, nil
}

// PartnerBudgets rolls planned assignment costs up to the consortium
// partners and compares against each partner's declared budget.
func (s *BudgetService) PartnerBudgets(projectID uint) ([]PartnerBudgetSummary, error) {
	var partners []models.Partner
	if err := s.db.Where("project_id = ?", projectID).Order("partner_id ASC").Find(&partners).Error; err != nil {
		return nil, err
	}

	effort, err := s.ProjectEffortSummary(projectID)
	if err != nil {
		return nil, err
	}
	consumedByPartner := make(map[uint]utils.Cents)
	for _, entry := range effort {
		if entry.PartnerID != nil {
			consumedByPartner[*entry.PartnerID] += entry.PlannedCost
		}
	}

	summaries := make([]PartnerBudgetSummary, 0, len(partners))
	for _, partner := range partners {
		declared := utils.ToCents(partner.Budget)
		consumed := consumedByPartner[partner.PartnerID]
		summaries = append(summaries, PartnerBudgetSummary{
			PartnerID: partner.PartnerID,
			Name:      partner.Name,
			Declared:  declared,
			Consumed:  consumed,
			Remaining: declared - consumed,
		})
	}
	return summaries, nil
}

// ContainerBudget computes the consumed budget of one container as the
// costed sum of every assignment under it, descendant containers
// included, against its declared budget when one is set.
func (s *BudgetService) ContainerBudget(projectID uint, ref models.ContainerRef) (*ContainerBudgetReport, error) {
	sub, err := CollectSubtree(s.db, ref)
	if err != nil {
		return nil, err
	}

	query := s.db.Preload("User").Where("project_id = ?", projectID).Where("1 = 0")
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
	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, err
	}

	report := &ContainerBudgetReport{Ref: ref}
	for i := range assignments {
		a := &assignments[i]
		resolution := s.costs.ResolveDailyRate(a.UserID, projectID, a)
		report.Consumed += utils.CostCents(a.Days, resolution.Rate)
	}

	declared, err := s.declaredBudget(ref)
	if err != nil {
		return nil, err
	}
	if declared != nil {
		report.Declared = declared
		remaining := *declared - report.Consumed
		report.Remaining = &remaining
	}
	return report, nil
}

func (s *BudgetService) declaredBudget(ref models.ContainerRef) (*utils.Cents, error) {
	var budget *float64
	switch ref.Kind {
	case models.ContainerSection:
		var node models.Section
		if err := s.db.First(&node, "section_id = ?", ref.ID).Error; err != nil {
			return nil, wrapNotFound(err, "section", ref.ID)
		}
		budget = node.Budget
	case models.ContainerWork:
		var node models.Work
		if err := s.db.First(&node, "work_id = ?", ref.ID).Error; err != nil {
			return nil, wrapNotFound(err, "work", ref.ID)
		}
		budget = node.Budget
	case models.ContainerTask:
		var node models.Task
		if err := s.db.First(&node, "task_id = ?", ref.ID).Error; err != nil {
			return nil, wrapNotFound(err, "task", ref.ID)
		}
		budget = node.Budget
	case models.ContainerActivity:
		var node models.Activity
		if err := s.db.First(&node, "activity_id = ?", ref.ID).Error; err != nil {
			return nil, wrapNotFound(err, "activity", ref.ID)
		}
		budget = node.Budget
	case models.ContainerProject:
		// Project totals come from the partner budgets, not a node column.
		return nil, nil
	default:
		return nil, &ValidationError{Field: "ref", Message: "not a budgetable container"}
	}
	if budget == nil {
		return nil, nil
	}
	cents := utils.ToCents(*budget)
	return &cents, nil
}
