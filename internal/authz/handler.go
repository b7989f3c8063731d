package authz

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	"github.com/frahmantamala/lms-backend/internal/transport"
)

type ServiceAPI interface {
	AssignRoleToUser(ctx context.Context, dto AssignRoleDTO, assignedBy *int64) (*UserRoleAssignment, error)
	RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error
	GetUserRoles(ctx context.Context, userID int64) ([]*catalog.Role, error)
	GetUserPermissions(ctx context.Context, userID int64, courseID *int64) ([]catalog.Permission, error)
	AssignCourseRole(ctx context.Context, dto AssignCourseRoleDTO) (*CourseRoleAssignment, error)
	RemoveCourseRole(ctx context.Context, courseID, userID, roleID int64) error
	GetUserRolesInCourse(ctx context.Context, userID, courseID int64) ([]*catalog.Role, error)
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

// AssignRole handles POST /roles/assign
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignRoleDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var assignedBy *int64
	if id, ok := internal.PrincipalFromContext(r.Context()); ok {
		assignedBy = &id
	}

	assignment, err := h.Service.AssignRoleToUser(r.Context(), dto, assignedBy)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, assignment)
}

// RemoveRole handles DELETE /roles/user/{userId}/role/{roleId}
func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.URLParamInt64(r, "userId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	roleID, appErr := h.URLParamInt64(r, "roleId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.RemoveRoleFromUser(r.Context(), userID, roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Role removed from user successfully"})
}

// GetUserRoles handles GET /roles/user/{userId}
func (h *Handler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.URLParamInt64(r, "userId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	roles, err := h.Service.GetUserRoles(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

// GetUserPermissions handles GET /roles/user/{userId}/permissions with an optional ?courseId=.
func (h *Handler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.URLParamInt64(r, "userId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var courseID *int64
	if raw := r.URL.Query().Get("courseId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteAppError(w, internal.NewValidationFieldError("courseId", "invalid course id", internal.ErrCodeInvalidID))
			return
		}
		courseID = &id
	}

	permissions, err := h.Service.GetUserPermissions(r.Context(), userID, courseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, permissions)
}

// AssignCourseRole handles POST /roles/course/assign
func (h *Handler) AssignCourseRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignCourseRoleDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	assignment, err := h.Service.AssignCourseRole(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, assignment)
}

// RemoveCourseRole handles DELETE /roles/course/{courseId}/user/{userId}/role/{roleId}
func (h *Handler) RemoveCourseRole(w http.ResponseWriter, r *http.Request) {
	courseID, userID, ok := h.courseAndUser(w, r)
	if !ok {
		return
	}
	roleID, appErr := h.URLParamInt64(r, "roleId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.RemoveCourseRole(r.Context(), courseID, userID, roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Course role removed successfully"})
}

// GetUserRolesInCourse handles GET /roles/course/{courseId}/user/{userId}
func (h *Handler) GetUserRolesInCourse(w http.ResponseWriter, r *http.Request) {
	courseID, userID, ok := h.courseAndUser(w, r)
	if !ok {
		return
	}

	roles, err := h.Service.GetUserRolesInCourse(r.Context(), userID, courseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

// GetUserCoursePermissions handles GET /roles/course/{courseId}/user/{userId}/permissions
func (h *Handler) GetUserCoursePermissions(w http.ResponseWriter, r *http.Request) {
	courseID, userID, ok := h.courseAndUser(w, r)
	if !ok {
		return
	}

	permissions, err := h.Service.GetUserPermissions(r.Context(), userID, &courseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, permissions)
}

func (h *Handler) courseAndUser(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	courseID, appErr := h.URLParamInt64(r, CourseParam)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return 0, 0, false
	}
	userID, appErr := h.URLParamInt64(r, "userId")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return 0, 0, false
	}
	return courseID, userID, true
}
