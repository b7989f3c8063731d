package user

import "time"

// Profile holds personal details; a user has at most one.
type Profile struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;uniqueIndex;not null"`
	FirstName   *string    `gorm:"column:first_name;size:100"`
	LastName    *string    `gorm:"column:last_name;size:100"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth;type:date"`
	PhoneNumber *string    `gorm:"column:phone_number;size:20"`
	Bio         *string    `gorm:"column:bio"`
	AvatarURL   *string    `gorm:"column:avatar_url;size:255"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	User        *User      `gorm:"foreignKey:UserID"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
