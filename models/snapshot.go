package models

import "time"

// ProjectSnapshot is a point-in-time structural copy of a project tree,
// stored as one JSON document. Restoring replaces the live tree with the
// document's contents.
type ProjectSnapshot struct {
	SnapshotID uint      `gorm:"primaryKey;column:snapshot_id" json:"snapshot_id"`
	ProjectID  uint      `gorm:"column:project_id;index" json:"project_id"`
	Name       string    `gorm:"column:name" json:"name"`
	Data       string    `gorm:"column:data;type:longtext" json:"-"`
	CreatedBy  *uint     `gorm:"column:created_by" json:"created_by"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProjectSnapshot) TableName() string {
	return "project_snapshots"
}
