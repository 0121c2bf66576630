package feedback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected, StatusOpen,
		StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	DefaultCategory = "General"
)

type Feedback struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                      `gorm:"not null" json:"title"`
	Description   string                      `gorm:"type:text;not null" json:"description"`
	UserID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"userId"`
	UserName      string                      `gorm:"not null" json:"userName"`
	Status        Status                      `gorm:"type:varchar(32);not null;index" json:"status"`
	AdminResponse *string                     `gorm:"type:text" json:"adminResponse"`
	Priority      string                      `gorm:"not null" json:"priority"`
	Category      string                      `gorm:"not null" json:"category"`
	Subject       *string                     `json:"subject"`
	Attachments   datatypes.JSONSlice[string] `gorm:"column:attachments" json:"attachments"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Feedback) TableName() string { return "feedback" }
