package services

import (
	"errors"
	"log"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// Rate resolution sources, highest priority first.
const (
	RateSourceOverride     = "OVERRIDE"
	RateSourceMemberRate   = "MEMBER_RATE"
	RateSourceStandardCost = "STANDARD_COST"
	RateSourceUnresolved   = "UNRESOLVED"
)

// RateResolution is the outcome of one daily-rate lookup.
type RateResolution struct {
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

// CostService resolves effective daily rates. Stateless given its
// inputs; nothing is cached across calls.
type CostService struct {
	db *gorm.DB
}

func NewCostService(db *gorm.DB) *CostService {
	return &CostService{db: db}
}

// ResolveDailyRate resolves the effective daily rate for a user on a
// project. Precedence: per-assignment override, member custom rate,
// standard-cost card, then zero/UNRESOLVED. A missing rate is never an
// error; dashboards must render partial data.
func (s *CostService) ResolveDailyRate(userID, projectID uint, assignment *models.Assignment) RateResolution {
	if assignment != nil && assignment.DailyRate != nil && *assignment.DailyRate > 0 {
		return RateResolution{Rate: *assignment.DailyRate, Source: RateSourceOverride}
	}

	var member models.ProjectMember
	err := s.db.Preload("Partner").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Warning: rate lookup for user %d on project %d failed: %v", userID, projectID, err)
		}
		return RateResolution{Source: RateSourceUnresolved}
	}

	if member.CustomDailyRate != nil && *member.CustomDailyRate > 0 {
		return RateResolution{Rate: *member.CustomDailyRate, Source: RateSourceMemberRate}
	}

	if member.Partner == nil {
		return RateResolution{Source: RateSourceUnresolved}
	}
	area := member.Partner.Type
	if area == "" {
		area = "GENERAL"
	}
	role := ""
	if roles := member.RoleList(); len(roles) > 0 {
		role = roles[0]
	}

	var cost models.StandardCost
	err = s.db.Where("area = ? AND nation = ? AND role = ?", area, member.Partner.Nation, role).
		First(&cost).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Warning: standard cost lookup (%s, %s, %s) failed: %v", area, member.Partner.Nation, role, err)
		}
		return RateResolution{Source: RateSourceUnresolved}
	}
	return RateResolution{Rate: cost.DailyRate, Source: RateSourceStandardCost}
}
