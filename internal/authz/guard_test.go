package authz_test

import (
	"context"
	stdErrors "errors"
	"net/http"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/authz"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubGrants answers from fixed global and per-course role sets.
type stubGrants struct {
	global    []*catalog.Role
	course    map[int64][]*catalog.Role
	err       error
	lastScope authz.Scope
}

func (s *stubGrants) EffectiveRoles(_ context.Context, _ int64, scope authz.Scope, _ time.Time) ([]*catalog.Role, error) {
	s.lastScope = scope
	if s.err != nil {
		return nil, s.err
	}
	if scope.IsCourse() {
		return s.course[*scope.CourseID], nil
	}
	return s.global, nil
}

func (s *stubGrants) EffectivePermissions(ctx context.Context, userID int64, scope authz.Scope, now time.Time) ([]catalog.Permission, error) {
	roles, err := s.EffectiveRoles(ctx, userID, scope, now)
	if err != nil {
		return nil, err
	}
	var permissions []catalog.Permission
	for _, r := range roles {
		permissions = append(permissions, r.Permissions...)
	}
	return permissions, nil
}

func roleWith(name string, permissions ...string) *catalog.Role {
	r := &catalog.Role{Name: name}
	for i, p := range permissions {
		r.Permissions = append(r.Permissions, catalog.Permission{ID: int64(i + 1), Name: p})
	}
	return r
}

func principal(id int64) *int64 {
	return &id
}

var _ = Describe("Guard", func() {
	var (
		grants *stubGrants
		guard  *authz.Guard
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		grants = &stubGrants{
			global: []*catalog.Role{roleWith("teacher", "create_courses", "edit_own_courses")},
			course: map[int64][]*catalog.Role{
				5: {roleWith("student", "view_own_grades")},
			},
		}
		guard = authz.NewGuard(grants, nil, nil)
	})

	It("allows an operation with no requirement", func() {
		decision, err := guard.Check(ctx, nil, authz.Subject{})
		Expect(err).NotTo(HaveOccurred())
		Expect(decision.Allowed()).To(BeTrue())
		Expect(decision.Err()).NotTo(HaveOccurred())
	})

	It("answers unauthenticated when no principal is present", func() {
		decision, err := guard.Check(ctx, authz.RequirePermissions("create_courses"), authz.Subject{})
		Expect(err).NotTo(HaveOccurred())
		Expect(decision.Outcome).To(Equal(authz.OutcomeUnauthenticated))

		appErr, ok := errors.IsAppError(decision.Err())
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(appErr.Code).To(Equal(errors.ErrCodeNotAuthenticated))
	})

	Context("permission requirements", func() {
		It("allows when every permission is held", func() {
			decision, err := guard.Check(ctx, authz.RequirePermissions("create_courses", "edit_own_courses"), authz.Subject{PrincipalID: principal(42)})
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Allowed()).To(BeTrue())
		})

		It("denies naming the first missing permission", func() {
			decision, err := guard.Check(ctx, authz.RequirePermissions("create_courses", "delete_courses", "manage_roles"), authz.Subject{PrincipalID: principal(42)})
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Outcome).To(Equal(authz.OutcomeDenied))
			Expect(decision.Missing).To(Equal("delete_courses"))

			appErr, ok := errors.IsAppError(decision.Err())
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
			Expect(appErr.Code).To(Equal(errors.ErrCodePermissionDenied))
			Expect(appErr.Message).To(Equal("User does not have permission: delete_courses"))
		})
	})

	Context("role requirements", func() {
		It("allows when any listed role is held", func() {
			decision, err := guard.Check(ctx, authz.RequireRoles("manager", "teacher"), authz.Subject{PrincipalID: principal(42)})
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Allowed()).To(BeTrue())
		})

		It("denies listing the required roles", func() {
			decision, err := guard.Check(ctx, authz.RequireRoles("admin", "manager"), authz.Subject{PrincipalID: principal(42)})
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Outcome).To(Equal(authz.OutcomeDenied))

			appErr, ok := errors.IsAppError(decision.Err())
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
			Expect(appErr.Code).To(Equal(errors.ErrCodeRoleDenied))
			Expect(appErr.Message).To(Equal("User does not have required role. Required: admin, manager"))
		})

		It("denies an empty role list", func() {
			decision, err := guard.Check(ctx, authz.RequireRoles(), authz.Subject{PrincipalID: principal(42)})
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Allowed()).To(BeFalse())
		})
	})

	Context("course scope", func() {
		It("evaluates only the course grants", func() {
			subj := authz.Subject{PrincipalID: principal(42), CourseID: principal(5)}

			decision, err := guard.Check(ctx, authz.RequirePermissions("create_courses"), subj)
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Allowed()).To(BeFalse())
			Expect(grants.lastScope.IsCourse()).To(BeTrue())

			decision, err = guard.Check(ctx, authz.RequireRoles("student"), subj)
			Expect(err).NotTo(HaveOccurred())
			Expect(decision.Allowed()).To(BeTrue())
		})
	})

	It("returns resolver failures instead of deciding", func() {
		grants.err = stdErrors.New("database is gone")

		_, err := guard.Check(ctx, authz.RequirePermissions("create_courses"), authz.Subject{PrincipalID: principal(42)})
		Expect(err).To(MatchError("database is gone"))
	})
})
