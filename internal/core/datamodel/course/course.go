package course

import "time"

type Course struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;size:200;not null"`
	Description string    `gorm:"column:description"`
	Code        string    `gorm:"column:code;size:50;uniqueIndex;not null"`
	Credits     int       `gorm:"column:credits;not null"`
	MaxCapacity int       `gorm:"column:max_capacity;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Course) TableName() string {
	return "courses"
}

type Lesson struct {
	ID              int64     `gorm:"primaryKey"`
	CourseID        int64     `gorm:"column:course_id;not null;index"`
	Title           string    `gorm:"column:title;size:200;not null"`
	Description     string    `gorm:"column:description"`
	LessonType      string    `gorm:"column:lesson_type;size:20;not null"`
	Content         *string   `gorm:"column:content"`
	VideoURL        *string   `gorm:"column:video_url;size:255"`
	OrderIndex      int       `gorm:"column:order_index;not null"`
	DurationMinutes *int      `gorm:"column:duration_minutes"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Lesson) TableName() string {
	return "course_lessons"
}
