package course

import (
	"time"

	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
)

const DefaultMaxCapacity = 30

const (
	LessonTypeVideo      = "video"
	LessonTypeText       = "text"
	LessonTypeQuiz       = "quiz"
	LessonTypeAssignment = "assignment"
)

var LessonTypes = []string{LessonTypeVideo, LessonTypeText, LessonTypeQuiz, LessonTypeAssignment}

type Course struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Credits     int       `json:"credits"`
	MaxCapacity int       `json:"max_capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Course) IsActiveCourse() bool {
	return c.IsActive
}

type Lesson struct {
	ID              int64     `json:"id"`
	CourseID        int64     `json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	Content         *string   `json:"content,omitempty"`
	VideoURL        *string   `json:"video_url,omitempty"`
	OrderIndex      int       `json:"order_index"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToDataModel(c *Course) *courseDatamodel.Course {
	return &courseDatamodel.Course{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Code:        c.Code,
		Credits:     c.Credits,
		MaxCapacity: c.MaxCapacity,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *courseDatamodel.Course) *Course {
	return &Course{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Code:        c.Code,
		Credits:     c.Credits,
		MaxCapacity: c.MaxCapacity,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func LessonToDataModel(l *Lesson) *courseDatamodel.Lesson {
	return &courseDatamodel.Lesson{
		ID:              l.ID,
		CourseID:        l.CourseID,
		Title:           l.Title,
		Description:     l.Description,
		LessonType:      l.Type,
		Content:         l.Content,
		VideoURL:        l.VideoURL,
		OrderIndex:      l.OrderIndex,
		DurationMinutes: l.DurationMinutes,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func LessonFromDataModel(l *courseDatamodel.Lesson) *Lesson {
	return &Lesson{
		ID:              l.ID,
		CourseID:        l.CourseID,
		Title:           l.Title,
		Description:     l.Description,
		Type:            l.LessonType,
		Content:         l.Content,
		VideoURL:        l.VideoURL,
		OrderIndex:      l.OrderIndex,
		DurationMinutes: l.DurationMinutes,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
