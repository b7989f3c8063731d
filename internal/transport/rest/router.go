package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/auth"
	"github.com/frahmantamala/lms-backend/internal/authz"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	"github.com/frahmantamala/lms-backend/internal/course"
	"github.com/frahmantamala/lms-backend/internal/enrollment"
	"github.com/frahmantamala/lms-backend/internal/transport"
	"github.com/frahmantamala/lms-backend/internal/transport/middleware"
	"github.com/frahmantamala/lms-backend/internal/transport/swagger"
	"github.com/frahmantamala/lms-backend/internal/user"
	"github.com/frahmantamala/lms-backend/internal/userprofile"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	permManageRoles     = "manage_roles"
	permManageUsers     = "manage_users"
	permViewUsers       = "view_users"
	permCreateCourses   = "create_courses"
	permEditAllCourses  = "edit_all_courses"
	permDeleteCourses   = "delete_courses"
	permCreateContent   = "create_content"
	permEditContent     = "edit_content"
	permDeleteContent   = "delete_content"
	permEnrollStudents  = "enroll_students"
	permGradeStudents   = "grade_students"
	roleTeacher         = "teacher"
	roleManager         = "manager"
	defaultMetricsRoute = "/metrics"

	errCodeRouteNotFound internal.ErrorCode = "ROUTE_NOT_FOUND"
)

// Handlers groups the per-domain HTTP handlers. A nil handler skips its routes.
type Handlers struct {
	Catalog     *catalog.Handler
	Authz       *authz.Handler
	Users       *user.Handler
	Profiles    *userprofile.Handler
	Courses     *course.Handler
	Enrollments *enrollment.Handler
}

type RouterConfig struct {
	Health         *HealthHandler
	Guard          *authz.Guard
	Verifier       auth.TokenVerifier
	Spec           *swagger.Spec
	AllowedOrigins string
	MetricsEnabled bool
	MetricsPath    string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, cfg RouterConfig, h Handlers) {
	guard := cfg.Guard

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(cfg.Logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.LoggingMiddleware(cfg.Logger))
	if cfg.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}
	router.Use(auth.Middleware(cfg.Verifier, cfg.Logger))

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = defaultMetricsRoute
		}
		router.Handle(path, promhttp.Handler())
	}
	if cfg.Spec != nil {
		router.Handle(swagger.SpecURL, cfg.Spec.SpecHandler())
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.Health != nil {
			r.Get("/health", cfg.Health.healthCheckHandler)
			r.Get("/ping", cfg.Health.pingHandler)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(guard.Authenticated)

			manageRoles := guard.RequireGlobal(authz.RequirePermissions(permManageRoles))

			viewUsers := guard.RequireGlobal(authz.RequirePermissions(permViewUsers))
			manageUsers := guard.RequireGlobal(authz.RequirePermissions(permManageUsers))

			if h.Users != nil {
				pr.Get("/users/me", h.Users.GetCurrentUser)
				pr.With(viewUsers).Get("/users", h.Users.ListUsers)
				pr.With(viewUsers).Get("/users/with-courses", h.Users.ListUsersWithCourses)
				pr.With(manageUsers).Post("/users", h.Users.CreateUser)
				pr.Get("/users/{id}", h.Users.GetUser)
				pr.With(manageUsers).Patch("/users/{id}", h.Users.UpdateUser)
				pr.With(manageUsers).Delete("/users/{id}", h.Users.DeactivateUser)
			}

			if h.Profiles != nil {
				pr.Get("/users/me/profile", h.Profiles.GetOwnProfile)
				pr.With(viewUsers).Get("/users/{id}/profile", h.Profiles.GetUserProfile)
				pr.Route("/profiles", func(rr chi.Router) {
					rr.With(viewUsers).Get("/", h.Profiles.ListProfiles)
					rr.With(viewUsers).Get("/{id}", h.Profiles.GetProfile)
					rr.With(manageUsers).Post("/", h.Profiles.CreateProfile)
					rr.With(manageUsers).Patch("/{id}", h.Profiles.UpdateProfile)
					rr.With(manageUsers).Delete("/{id}", h.Profiles.DeleteProfile)
				})
			}

			pr.Route("/roles", func(rr chi.Router) {
				if h.Catalog != nil {
					rr.Get("/", h.Catalog.ListRoles)
					rr.Get("/name/{name}", h.Catalog.GetRoleByName)
					rr.Get("/{id}", h.Catalog.GetRole)
					rr.With(manageRoles).Post("/", h.Catalog.CreateRole)
					rr.With(manageRoles).Put("/{id}", h.Catalog.UpdateRole)
					rr.With(manageRoles).Delete("/{id}", h.Catalog.DeleteRole)
				}

				if h.Authz != nil {
					rr.With(manageRoles).Post("/assign", h.Authz.AssignRole)
					rr.With(manageRoles).Delete("/user/{userId}/role/{roleId}", h.Authz.RemoveRole)
					rr.Get("/user/{userId}", h.Authz.GetUserRoles)
					rr.Get("/user/{userId}/permissions", h.Authz.GetUserPermissions)

					// Course role administration is decided on global grants, not on the
					// caller's roles inside the course being administered.
					rr.With(manageRoles).Post("/course/assign", h.Authz.AssignCourseRole)
					rr.With(manageRoles).Delete("/course/{courseId}/user/{userId}/role/{roleId}", h.Authz.RemoveCourseRole)
					rr.Get("/course/{courseId}/user/{userId}", h.Authz.GetUserRolesInCourse)
					rr.Get("/course/{courseId}/user/{userId}/permissions", h.Authz.GetUserCoursePermissions)
				}
			})

			if h.Catalog != nil {
				pr.Route("/permissions", func(rr chi.Router) {
					rr.Get("/", h.Catalog.ListPermissions)
					rr.Get("/category/{category}", h.Catalog.ListPermissionsByCategory)
					rr.Get("/name/{name}", h.Catalog.GetPermissionByName)
					rr.Get("/{id}", h.Catalog.GetPermission)
					rr.With(manageRoles).Post("/", h.Catalog.CreatePermission)
					rr.With(manageRoles).Put("/{id}", h.Catalog.UpdatePermission)
					rr.With(manageRoles).Delete("/{id}", h.Catalog.DeletePermission)
				})
			}

			if h.Courses != nil {
				pr.Route("/courses", func(cr chi.Router) {
					cr.Get("/", h.Courses.ListCourses)
					cr.With(guard.Require(authz.RequirePermissions(permCreateCourses))).Post("/", h.Courses.CreateCourse)

					cr.Route("/{courseId}", func(one chi.Router) {
						one.Get("/", h.Courses.GetCourse)
						one.With(guard.RequireGlobal(authz.RequirePermissions(permEditAllCourses))).Put("/", h.Courses.UpdateCourse)
						// course staff edit through their role in this course
						one.With(guard.Require(authz.RequireRoles(roleTeacher, roleManager))).Patch("/", h.Courses.UpdateCourse)
						one.With(guard.RequireGlobal(authz.RequirePermissions(permDeleteCourses))).Delete("/", h.Courses.DeleteCourse)

						one.Get("/lessons", h.Courses.ListLessons)
						one.With(guard.RequireGlobal(authz.RequirePermissions(permCreateContent))).Post("/lessons", h.Courses.CreateLesson)
					})
				})

				pr.Route("/lessons", func(lr chi.Router) {
					lr.Get("/{id}", h.Courses.GetLesson)
					lr.With(guard.Require(authz.RequirePermissions(permEditContent))).Put("/{id}", h.Courses.UpdateLesson)
					lr.With(guard.Require(authz.RequirePermissions(permDeleteContent))).Delete("/{id}", h.Courses.DeleteLesson)
				})
			}

			if h.Enrollments != nil {
				pr.Route("/enrollments", func(er chi.Router) {
					enroll := guard.Require(authz.RequirePermissions(permEnrollStudents))

					er.Get("/", h.Enrollments.ListEnrollments)
					er.Get("/grouped-by-user", h.Enrollments.ListGroupedByUser)
					er.Get("/user/{userId}", h.Enrollments.ListByUser)
					er.Get("/course/{courseId}", h.Enrollments.ListByCourse)
					er.Get("/{id}", h.Enrollments.GetEnrollment)
					er.With(enroll).Post("/", h.Enrollments.CreateEnrollment)
					er.With(enroll).Post("/bulk", h.Enrollments.BulkEnroll)
					er.With(guard.Require(authz.RequirePermissions(permGradeStudents))).Patch("/{id}", h.Enrollments.UpdateEnrollment)
					er.With(enroll).Delete("/{id}", h.Enrollments.DeleteEnrollment)
				})
			}
		})
	})

	base := transport.NewBaseHandler(cfg.Logger)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.WriteAppError(w, internal.NewNotFoundError("route not found", errCodeRouteNotFound))
	})
}
