package models

import (
	"time"
)

type Task struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text"`
	Completed   bool      `gorm:"not null;default:false;index"`
	CreatedByID uint      `gorm:"not null;index"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime"`
}

// TaskDefaultOrder lists tasks newest first. The id breaks ties between rows
// created within the same clock tick.
const TaskDefaultOrder = "tasks.created_at DESC, tasks.id DESC"

func (t Task) String() string {
	return t.Title
}
