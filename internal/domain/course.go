package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Course struct {
	ID       uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title    string                      `gorm:"not null;column:title" json:"title"`
	Category string                      `gorm:"column:category" json:"category"`
	Tags     datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

type CourseEnrollment struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_pair;column:user_id" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_pair;column:course_id" json:"course_id"`
	Course   *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Status   string    `gorm:"not null;default:'ACTIVE';column:status" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CourseEnrollment) TableName() string { return "course_enrollment" }
