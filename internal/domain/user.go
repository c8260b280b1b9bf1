package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is the slice of the platform user this service reads. Account
// lifecycle lives in the auth service; only feed-relevant fields appear here.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName  string    `gorm:"column:first_name" json:"first_name"`
	LastName   string    `gorm:"column:last_name" json:"last_name"`
	AvatarURL  string    `gorm:"column:avatar_url" json:"avatar_url"`
	Role       string    `gorm:"column:role" json:"role"`
	IsVerified bool      `gorm:"not null;default:false;column:is_verified" json:"is_verified"`

	// Profile-declared interests/skills, used to seed topic signals for
	// users with little interaction history.
	Interests datatypes.JSONSlice[string] `gorm:"column:interests" json:"interests"`
	Skills    datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair;column:follower_id" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair;index;column:following_id" json:"following_id"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Follow) TableName() string { return "follow" }
