package enrollment

import (
	"time"

	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
)

type Enrollment struct {
	ID             int64                   `gorm:"primaryKey"`
	UserID         int64                   `gorm:"column:user_id;not null;uniqueIndex:idx_enrollments_user_course"`
	CourseID       int64                   `gorm:"column:course_id;not null;uniqueIndex:idx_enrollments_user_course;index"`
	Status         string                  `gorm:"column:status;size:20;not null"`
	EnrollmentDate time.Time               `gorm:"column:enrollment_date;type:date;not null"`
	Grade          *float64                `gorm:"column:grade;type:numeric(5,2)"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
	User           *userDatamodel.User     `gorm:"foreignKey:UserID"`
	Course         *courseDatamodel.Course `gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
