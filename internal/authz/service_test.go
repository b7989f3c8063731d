package authz_test

import (
	"net/http"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/authz"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func expectAppError(err error, status int, code errors.ErrorCode) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	appErr, ok := errors.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected *AppError, got %v", err)
	ExpectWithOffset(1, appErr.StatusCode).To(Equal(status))
	ExpectWithOffset(1, appErr.Code).To(Equal(code))
}

var _ = Describe("Service", func() {
	var (
		f         *fixture
		teacherID int64
		userID    int64
		courseID  int64
	)

	BeforeEach(func() {
		f = newFixture()
		p := f.permission("create_courses", "course")
		teacherID = f.role("teacher", 3, p)
		userID = f.user(0, "alice")
		courseID = f.course("CS101")
	})

	Describe("AssignRoleToUser", func() {
		It("records who assigned the role", func() {
			admin := f.user(0, "root")
			assignment, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: teacherID}, &admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.ID).NotTo(BeZero())
			Expect(assignment.AssignedBy).To(HaveValue(Equal(admin)))
			Expect(assignment.ExpiresAt).To(BeNil())
		})

		It("rejects assigning the same role twice", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: teacherID}, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: teacherID}, nil)
			expectAppError(err, http.StatusConflict, errors.ErrCodeRoleAlreadyAssigned)
			Expect(err.Error()).To(ContainSubstring("User already has role 'teacher'"))
		})

		It("rejects an expiry that is not in the future", func() {
			past := f.now.Add(-time.Minute)
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: teacherID, ExpiresAt: &past}, nil)
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeValidationFailed)
		})

		It("reports an unknown role", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: 999}, nil)
			expectAppError(err, http.StatusNotFound, errors.ErrCodeRoleNotFound)
		})

		It("reports an unknown user", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 999, RoleID: teacherID}, nil)
			expectAppError(err, http.StatusNotFound, errors.ErrCodeUserNotFound)
		})
	})

	Describe("RemoveRoleFromUser", func() {
		It("removes a held role", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: teacherID}, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(f.service.RemoveRoleFromUser(f.ctx, userID, teacherID)).To(Succeed())

			roles, err := f.service.GetUserRoles(f.ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})

		It("reports a role the user does not hold", func() {
			err := f.service.RemoveRoleFromUser(f.ctx, userID, teacherID)
			expectAppError(err, http.StatusNotFound, errors.ErrCodeAssignmentNotFound)
		})
	})

	Describe("course roles", func() {
		It("assigns and lists roles inside a course", func() {
			assignment, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{CourseID: courseID, UserID: userID, RoleID: teacherID})
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.CourseID).To(Equal(courseID))

			roles, err := f.service.GetUserRolesInCourse(f.ctx, userID, courseID)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleNames(roles)).To(Equal([]string{"teacher"}))

			ok, err := f.service.HasPermission(f.ctx, userID, "create_courses", &courseID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("rejects a duplicate course assignment", func() {
			dto := authz.AssignCourseRoleDTO{CourseID: courseID, UserID: userID, RoleID: teacherID}
			_, err := f.service.AssignCourseRole(f.ctx, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.AssignCourseRole(f.ctx, dto)
			expectAppError(err, http.StatusConflict, errors.ErrCodeRoleAlreadyAssigned)
		})

		It("reports an unknown course", func() {
			_, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{CourseID: 999, UserID: userID, RoleID: teacherID})
			expectAppError(err, http.StatusNotFound, errors.ErrCodeCourseNotFound)
		})

		It("requires every id", func() {
			_, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{UserID: userID})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeValidationFailed)
		})

		It("removes a course role and reports a missing one", func() {
			_, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{CourseID: courseID, UserID: userID, RoleID: teacherID})
			Expect(err).NotTo(HaveOccurred())

			Expect(f.service.RemoveCourseRole(f.ctx, courseID, userID, teacherID)).To(Succeed())
			err = f.service.RemoveCourseRole(f.ctx, courseID, userID, teacherID)
			expectAppError(err, http.StatusNotFound, errors.ErrCodeAssignmentNotFound)
		})
	})

	Describe("GetUserPermissions", func() {
		It("keeps global and course grants apart", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: userID, RoleID: teacherID}, nil)
			Expect(err).NotTo(HaveOccurred())

			global, err := f.service.GetUserPermissions(f.ctx, userID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(permissionNames(global)).To(Equal([]string{"create_courses"}))

			inCourse, err := f.service.GetUserPermissions(f.ctx, userID, &courseID)
			Expect(err).NotTo(HaveOccurred())
			Expect(inCourse).To(BeEmpty())
		})
	})
})
