package authz_test

import (
	"context"
	"time"

	"github.com/frahmantamala/lms-backend/internal/authz"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	var (
		f             *fixture
		createCourses int64
		editOwn       int64
		deleteCourses int64
		viewGrades    int64
		teacherID     int64
		adminID       int64
		studentID     int64
	)

	BeforeEach(func() {
		f = newFixture()
		createCourses = f.permission("create_courses", "course")
		editOwn = f.permission("edit_own_courses", "course")
		deleteCourses = f.permission("delete_courses", "course")
		viewGrades = f.permission("view_own_grades", "grade")

		adminID = f.role("admin", 1, createCourses, editOwn, deleteCourses)
		teacherID = f.role("teacher", 3, createCourses, editOwn)
		studentID = f.role("student", 5, viewGrades)

		f.user(42, "teacher42")
	})

	Context("global scope", func() {
		It("answers permission checks from the user's roles", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 42, RoleID: teacherID}, nil)
			Expect(err).NotTo(HaveOccurred())

			ok, err := f.resolver.HasPermission(f.ctx, 42, "create_courses", authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = f.resolver.HasPermission(f.ctx, 42, "delete_courses", authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("drops roles whose assignment has expired", func() {
			past := f.now.Add(-time.Hour)
			Expect(f.db.Create(&rbacDatamodel.UserRole{UserID: 42, RoleID: adminID, ExpiresAt: &past}).Error).To(Succeed())

			roles, err := f.resolver.EffectiveGlobalRoles(f.ctx, 42, f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})

		It("treats an assignment expiring exactly now as expired", func() {
			at := f.now
			Expect(f.db.Create(&rbacDatamodel.UserRole{UserID: 42, RoleID: adminID, ExpiresAt: &at}).Error).To(Succeed())

			roles, err := f.resolver.EffectiveGlobalRoles(f.ctx, 42, f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())

			roles, err = f.resolver.EffectiveGlobalRoles(f.ctx, 42, f.now.Add(-time.Second))
			Expect(err).NotTo(HaveOccurred())
			Expect(roleNames(roles)).To(Equal([]string{"admin"}))
		})

		It("stops granting once the evaluation time passes the expiry", func() {
			later := f.now.Add(time.Hour)
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 42, RoleID: adminID, ExpiresAt: &later}, nil)
			Expect(err).NotTo(HaveOccurred())

			ok, err := f.resolver.HasPermission(f.ctx, 42, "delete_courses", authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = f.resolver.HasPermission(f.ctx, 42, "delete_courses", authz.GlobalScope(), f.now.Add(2*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("unions permissions across roles without duplicates", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 42, RoleID: adminID}, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 42, RoleID: teacherID}, nil)
			Expect(err).NotTo(HaveOccurred())

			permissions, err := f.resolver.EffectivePermissions(f.ctx, 42, authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(permissionNames(permissions)).To(Equal([]string{"create_courses", "delete_courses", "edit_own_courses"}))
		})

		It("returns the same answer when asked twice", func() {
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 42, RoleID: teacherID}, nil)
			Expect(err).NotTo(HaveOccurred())

			first, err := f.resolver.EffectivePermissions(f.ctx, 42, authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			second, err := f.resolver.EffectivePermissions(f.ctx, 42, authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("returns nothing for a user without assignments", func() {
			permissions, err := f.resolver.EffectivePermissions(f.ctx, 999, authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(permissions).To(BeEmpty())
		})
	})

	Context("course scope", func() {
		var courseID int64

		BeforeEach(func() {
			courseID = f.course("CS101")
			_, err := f.service.AssignRoleToUser(f.ctx, authz.AssignRoleDTO{UserID: 42, RoleID: adminID}, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("consults only the roles granted in that course", func() {
			_, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{CourseID: courseID, UserID: 42, RoleID: studentID})
			Expect(err).NotTo(HaveOccurred())

			permissions, err := f.resolver.EffectivePermissions(f.ctx, 42, authz.CourseScope(courseID), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(permissionNames(permissions)).To(Equal([]string{"view_own_grades"}))

			ok, err := f.resolver.HasPermission(f.ctx, 42, "create_courses", authz.CourseScope(courseID), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = f.resolver.HasPermission(f.ctx, 42, "create_courses", authz.GlobalScope(), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("does not fall back to global roles when the course grants nothing", func() {
			roles, err := f.resolver.EffectiveRoles(f.ctx, 42, authz.CourseScope(courseID), f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})

		It("keeps grants in one course out of another", func() {
			other := f.course("CS102")
			_, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{CourseID: courseID, UserID: 42, RoleID: teacherID})
			Expect(err).NotTo(HaveOccurred())

			roles, err := f.resolver.EffectiveCourseRoles(f.ctx, 42, other, f.now)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})

		It("ignores the evaluation time", func() {
			_, err := f.service.AssignCourseRole(f.ctx, authz.AssignCourseRoleDTO{CourseID: courseID, UserID: 42, RoleID: teacherID})
			Expect(err).NotTo(HaveOccurred())

			roles, err := f.resolver.EffectiveCourseRoles(f.ctx, 42, courseID, f.now.AddDate(10, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(roleNames(roles)).To(Equal([]string{"teacher"}))
		})
	})
})

// rowsRepository serves fixed assignment rows so the resolver can be exercised on
// shapes the unique index would refuse.
type rowsRepository struct {
	authz.RepositoryAPI
	userRoles []*rbacDatamodel.UserRole
}

func (r *rowsRepository) ListUserRoles(_ context.Context, _ int64) ([]*rbacDatamodel.UserRole, error) {
	return r.userRoles, nil
}

type staticRoles map[int64]*catalog.Role

func (s staticRoles) GetRole(_ context.Context, id int64) (*catalog.Role, error) {
	return s[id], nil
}

func (s staticRoles) RolesByIDs(_ context.Context, ids []int64) ([]*catalog.Role, error) {
	seen := map[int64]bool{}
	roles := make([]*catalog.Role, 0, len(ids))
	for _, id := range ids {
		if r, ok := s[id]; ok && !seen[id] {
			seen[id] = true
			roles = append(roles, r)
		}
	}
	return roles, nil
}

var _ = Describe("Resolver with several rows for one role", func() {
	It("counts the role when any row is unexpired", func() {
		now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		expired := now.Add(-time.Minute)
		valid := now.Add(time.Minute)

		repo := &rowsRepository{userRoles: []*rbacDatamodel.UserRole{
			{UserID: 7, RoleID: 1, ExpiresAt: &expired},
			{UserID: 7, RoleID: 1, ExpiresAt: &valid},
		}}
		roles := staticRoles{1: {ID: 1, Name: "manager", Permissions: []catalog.Permission{{ID: 10, Name: "view_reports"}}}}

		resolver := authz.NewResolver(repo, roles)
		got, err := resolver.EffectiveGlobalRoles(context.Background(), 7, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(roleNames(got)).To(Equal([]string{"manager"}))
	})
})
