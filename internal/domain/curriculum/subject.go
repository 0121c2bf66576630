package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Topic lives embedded in its Subject; it has no table of its own.
// An empty ClassID makes the topic visible to every class.
type Topic struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ClassID     string    `json:"classId,omitempty"`
}

type Subject struct {
	ID          uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string                     `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string                     `gorm:"column:description" json:"description,omitempty"`
	Topics      datatypes.JSONSlice[Topic] `gorm:"column:topics" json:"topics"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Subject) TableName() string { return "subject" }

func (s *Subject) TopicByID(id uuid.UUID) (int, *Topic) {
	for i := range s.Topics {
		if s.Topics[i].ID == id {
			return i, &s.Topics[i]
		}
	}
	return -1, nil
}

// TopicsForClass keeps topics tagged with classID plus untagged ones.
func (s *Subject) TopicsForClass(classID string) []Topic {
	out := []Topic{}
	for _, t := range s.Topics {
		if t.ClassID == "" || t.ClassID == classID {
			out = append(out, t)
		}
	}
	return out
}
