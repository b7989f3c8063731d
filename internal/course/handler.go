package course

import (
	"context"
	"net/http"

	"github.com/frahmantamala/lms-backend/internal/transport"
)

type ServiceAPI interface {
	CreateCourse(ctx context.Context, dto CreateCourseDTO) (*Course, error)
	GetByID(ctx context.Context, id int64) (*Course, error)
	ListCourses(ctx context.Context, activeOnly bool) ([]*Course, error)
	UpdateCourse(ctx context.Context, id int64, dto UpdateCourseDTO) (*Course, error)
	DeactivateCourse(ctx context.Context, id int64) error

	CreateLesson(ctx context.Context, courseID int64, dto CreateLessonDTO) (*Lesson, error)
	GetLesson(ctx context.Context, id int64) (*Lesson, error)
	ListLessons(ctx context.Context, courseID int64) ([]*Lesson, error)
	UpdateLesson(ctx context.Context, id int64, dto UpdateLessonDTO) (*Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var dto CreateCourseDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	c, err := h.Service.CreateCourse(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// ListCourses handles GET /courses; ?active=true limits to active courses.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Service.ListCourses(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "courseId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	c, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "courseId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto UpdateCourseDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	c, err := h.Service.UpdateCourse(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "courseId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.DeactivateCourse(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	courseID, appErr := h.URLParamInt64(r, "courseId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto CreateLessonDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	lesson, err := h.Service.CreateLesson(r.Context(), courseID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, lesson)
}

func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	courseID, appErr := h.URLParamInt64(r, "courseId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	lessons, err := h.Service.ListLessons(r.Context(), courseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lessons)
}

func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	lesson, err := h.Service.GetLesson(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lesson)
}

func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto UpdateLessonDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	lesson, err := h.Service.UpdateLesson(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lesson)
}

func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.DeleteLesson(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
