package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     string    `gorm:"not null;column:role" json:"role"`

	Details *UserDetails `gorm:"foreignKey:UserID;references:ID" json:"userDetails,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserDetails is the student profile. Phone doubles as the public student id.
type UserDetails struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"userId"`
	Name         string                      `gorm:"not null;column:name" json:"name"`
	DOB          string                      `gorm:"column:dob" json:"dob"`
	Phone        string                      `gorm:"column:phone" json:"phoneno"`
	SchoolName   string                      `gorm:"column:school_name" json:"schoolName"`
	Class        string                      `gorm:"column:class;index" json:"class"`
	Subjects     datatypes.JSONSlice[string] `gorm:"column:subjects" json:"subjects"`
	ProfileImage string                      `gorm:"column:profile_image" json:"profileImage,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (UserDetails) TableName() string { return "user_details" }

var classIDs = map[string]string{
	"6th Standard":  "6th",
	"7th Standard":  "7th",
	"8th Standard":  "8th",
	"9th Standard":  "9th",
	"10th Standard": "10th",
	"11th Standard": "11th",
	"12th Standard": "12th",
}

// ClassID maps a profile class name ("8th Standard") to the short curriculum
// class id ("8th"). Unknown names return "".
func ClassID(className string) string {
	return classIDs[className]
}

// ClassName is the inverse of ClassID.
func ClassName(classID string) string {
	for name, id := range classIDs {
		if id == classID {
			return name
		}
	}
	return ""
}

// NormalizeClassID accepts either a class name or a short class id and returns
// the short id. Anything else returns "".
func NormalizeClassID(class string) string {
	if id := ClassID(class); id != "" {
		return id
	}
	if ClassName(class) != "" {
		return class
	}
	return ""
}
