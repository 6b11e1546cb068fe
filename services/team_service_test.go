package services

import (
	"testing"

	"consortium-planner-api/models"
)

func TestProjectTeamMergesLegacyPartnerUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	project := createTestProject(t, db, "Team Project")

	partner := models.Partner{ProjectID: project.ProjectID, Name: "UNIBO", Nation: "IT", Role: models.PartnerRolePartner}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("failed to create partner: %v", err)
	}

	memberUser := createTestUser(t, db, "member@example.org")
	legacyUser := createTestUser(t, db, "legacy@example.org")
	bothUser := createTestUser(t, db, "both@example.org")

	member := models.ProjectMember{ProjectID: project.ProjectID, UserID: memberUser.UserID, PartnerID: &partner.PartnerID}
	if err := member.SetRoleList([]string{"RESEARCHER"}); err != nil {
		t.Fatalf("SetRoleList failed: %v", err)
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	both := models.ProjectMember{ProjectID: project.ProjectID, UserID: bothUser.UserID}
	if err := both.SetRoleList([]string{"MANAGER", "RESEARCHER"}); err != nil {
		t.Fatalf("SetRoleList failed: %v", err)
	}
	if err := db.Create(&both).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	// Legacy attribution only: users.partner_id pointing into the project.
	for _, u := range []*models.User{legacyUser, bothUser} {
		if err := db.Model(&models.User{}).Where("user_id = ?", u.UserID).
			Update("partner_id", partner.PartnerID).Error; err != nil {
			t.Fatalf("failed to link legacy user: %v", err)
		}
	}

	team, err := svc.ProjectTeam(project.ProjectID)
	if err != nil {
		t.Fatalf("ProjectTeam failed: %v", err)
	}
	if len(team) != 3 {
		t.Fatalf("expected 3 team entries, got %d: %+v", len(team), team)
	}
	for i := 1; i < len(team); i++ {
		if team[i-1].UserID >= team[i].UserID {
			t.Fatalf("team not sorted by user id: %+v", team)
		}
	}

	byID := make(map[uint]TeamEntry, len(team))
	for _, entry := range team {
		byID[entry.UserID] = entry
	}
	if e := byID[memberUser.UserID]; e.Legacy || len(e.Roles) != 1 || e.Roles[0] != "RESEARCHER" {
		t.Fatalf("member entry wrong: %+v", e)
	}
	if e := byID[legacyUser.UserID]; !e.Legacy || e.PartnerID == nil || *e.PartnerID != partner.PartnerID {
		t.Fatalf("legacy entry wrong: %+v", e)
	}
	// Membership wins over the legacy link.
	if e := byID[bothUser.UserID]; e.Legacy || len(e.Roles) != 2 {
		t.Fatalf("dual-path entry wrong: %+v", e)
	}
}

func TestProjectTeamIgnoresDeletedLegacyUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db)
	project := createTestProject(t, db, "Team Project")

	partner := models.Partner{ProjectID: project.ProjectID, Name: "UNIBO", Nation: "IT", Role: models.PartnerRolePartner}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("failed to create partner: %v", err)
	}
	gone := createTestUser(t, db, "gone@example.org")
	if err := db.Model(&models.User{}).Where("user_id = ?", gone.UserID).
		Updates(map[string]interface{}{"partner_id": partner.PartnerID, "delete_at": db.NowFunc()}).Error; err != nil {
		t.Fatalf("failed to soft-delete user: %v", err)
	}

	team, err := svc.ProjectTeam(project.ProjectID)
	if err != nil {
		t.Fatalf("ProjectTeam failed: %v", err)
	}
	if len(team) != 0 {
		t.Fatalf("expected empty team, got %+v", team)
	}
}
