package authz_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/authz"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// withPrincipal stands in for the token middleware using an X-User header.
func withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			r = r.WithContext(internal.ContextWithPrincipal(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

var _ = Describe("Guard middleware", func() {
	var router chi.Router

	ok := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	do := func(method, path, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		grants := &stubGrants{
			global: []*catalog.Role{roleWith("admin", "create_courses", "manage_roles")},
			course: map[int64][]*catalog.Role{
				7: {roleWith("teacher", "edit_content")},
			},
		}
		guard := authz.NewGuard(grants, nil, nil)

		router = chi.NewRouter()
		router.Use(withPrincipal)
		router.With(guard.Require(authz.RequirePermissions("create_courses"))).Post("/courses", ok)
		router.With(guard.Require(authz.RequireRoles("teacher", "manager"))).Patch("/courses/{courseId}", ok)
		router.With(guard.RequireGlobal(authz.RequirePermissions("manage_roles"))).Post("/roles/course/{courseId}/assign", ok)
		router.With(guard.Authenticated).Get("/courses", ok)
	})

	It("answers 401 without a principal", func() {
		Expect(do(http.MethodPost, "/courses", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("passes a global check", func() {
		Expect(do(http.MethodPost, "/courses", "1").Code).To(Equal(http.StatusOK))
	})

	It("scopes the check to the course in the path", func() {
		Expect(do(http.MethodPatch, "/courses/7", "1").Code).To(Equal(http.StatusOK))

		rec := do(http.MethodPatch, "/courses/8", "1")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("ROLE_DENIED"))
	})

	It("rejects a malformed course id", func() {
		Expect(do(http.MethodPatch, "/courses/abc", "1").Code).To(Equal(http.StatusBadRequest))
	})

	It("ignores the course id for global checks", func() {
		Expect(do(http.MethodPost, "/roles/course/8/assign", "1").Code).To(Equal(http.StatusOK))
	})

	It("lets any principal through Authenticated and nobody else", func() {
		Expect(do(http.MethodGet, "/courses", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodGet, "/courses", "99").Code).To(Equal(http.StatusOK))
	})
})
