package enrollment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/lms-backend/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateEnrollmentDTO) (*Enrollment, error)
	BulkEnroll(ctx context.Context, dto BulkEnrollDTO) ([]*Enrollment, error)
	Update(ctx context.Context, id int64, dto UpdateEnrollmentDTO) (*Enrollment, error)
	Remove(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Enrollment, error)
	List(ctx context.Context) ([]*Enrollment, error)
	ListByUser(ctx context.Context, userID int64) ([]*Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*Enrollment, error)
	ListGroupedByUser(ctx context.Context) ([]*UserEnrollments, error)
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

func (h *Handler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var dto CreateEnrollmentDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) BulkEnroll(w http.ResponseWriter, r *http.Request) {
	var dto BulkEnrollDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	enrollments, err := h.Service.BulkEnroll(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, enrollments)
}

func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, enrollments)
}

func (h *Handler) ListGroupedByUser(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.ListGroupedByUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, groups)
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.URLParamInt64(r, "userId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	enrollments, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, enrollments)
}

func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, appErr := h.URLParamInt64(r, "courseId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	enrollments, err := h.Service.ListByCourse(r.Context(), courseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, enrollments)
}

func (h *Handler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) UpdateEnrollment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto UpdateEnrollmentDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.URLParamInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.Remove(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
