package services

import (
	"sort"

	"consortium-planner-api/models"

	"gorm.io/gorm"
)

// TeamEntry is one deduplicated line of a project team list.
type TeamEntry struct {
	UserID    uint     `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	PartnerID *uint    `json:"partner_id"`
	Roles     []string `json:"roles"`
	Legacy    bool     `json:"legacy"`
}

// TeamService builds project team lists. ProjectMember rows are the
// canonical source; users reaching the project only through the legacy
// User.PartnerID link are appended and the whole list is deduplicated
// by user id, members winning over legacy rows.
type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// ProjectTeam returns the reconciled team of a project.
func (s *TeamService) ProjectTeam(projectID uint) ([]TeamEntry, error) {
	var members []models.ProjectMember
	if err := s.db.Preload("User").Where("project_id = ?", projectID).Find(&members).Error; err != nil {
		return nil, err
	}

	byUser := make(map[uint]*TeamEntry, len(members))
	for i := range members {
		m := &members[i]
		byUser[m.UserID] = &TeamEntry{
			UserID:    m.UserID,
			FirstName: m.User.FirstName,
			LastName:  m.User.LastName,
			Email:     m.User.Email,
			PartnerID: m.PartnerID,
			Roles:     m.RoleList(),
		}
	}

	var partnerIDs []uint
	if err := s.db.Model(&models.Partner{}).Where("project_id = ?", projectID).
		Pluck("partner_id", &partnerIDs).Error; err != nil {
		return nil, err
	}
	if len(partnerIDs) > 0 {
		var legacyUsers []models.User
		if err := s.db.Where("partner_id IN ? AND delete_at IS NULL", partnerIDs).
			Find(&legacyUsers).Error; err != nil {
			return nil, err
		}
		for i := range legacyUsers {
			u := &legacyUsers[i]
			if _, ok := byUser[u.UserID]; ok {
				continue
			}
			byUser[u.UserID] = &TeamEntry{
				UserID:    u.UserID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
				PartnerID: u.PartnerID,
				Legacy:    true,
			}
		}
	}

	team := make([]TeamEntry, 0, len(byUser))
	for _, entry := range byUser {
		team = append(team, *entry)
	}
	sort.Slice(team, func(i, j int) bool { return team[i].UserID < team[j].UserID })
	return team, nil
}
