package catalog_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/lms-backend/internal/catalog"
	catalogPostgres "github.com/frahmantamala/lms-backend/internal/catalog/postgres"
	"github.com/frahmantamala/lms-backend/internal/core/database"
	"github.com/frahmantamala/lms-backend/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Catalog Handler Integration", func() {
	var (
		router  *chi.Mux
		slogger *slog.Logger
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := database.OpenSQLite(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(database.AutoMigrate(db)).To(Succeed())

		service := catalog.NewService(catalogPostgres.NewCatalogRepository(db), catalog.NewRoleCache(8, time.Minute), slogger)
		handler := catalog.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Post("/roles", handler.CreateRole)
		router.Get("/roles", handler.ListRoles)
		router.Get("/roles/{id}", handler.GetRole)
		router.Get("/roles/name/{name}", handler.GetRoleByName)
		router.Put("/roles/{id}", handler.UpdateRole)
		router.Delete("/roles/{id}", handler.DeleteRole)
		router.Post("/permissions", handler.CreatePermission)
		router.Get("/permissions", handler.ListPermissions)
	})

	It("should create a role with permissions and read it back", func() {
		w := do(http.MethodPost, "/permissions", `{"name":"grade_students","category":"assessments"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var permission catalog.Permission
		Expect(json.NewDecoder(w.Body).Decode(&permission)).To(Succeed())

		body := `{"name":"teacher","description":"Course teacher","level":3,"permission_ids":[` +
			jsonInt(permission.ID) + `]}`
		w = do(http.MethodPost, "/roles", body)
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var role catalog.Role
		Expect(json.NewDecoder(w.Body).Decode(&role)).To(Succeed())
		Expect(role.PermissionNames()).To(ConsistOf("grade_students"))

		w = do(http.MethodGet, "/roles/name/teacher", "")
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should return 409 with the error envelope for a duplicate role", func() {
		Expect(do(http.MethodPost, "/roles", `{"name":"teacher","level":3}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/roles", `{"name":"teacher","level":3}`)
		Expect(w.Code).To(Equal(http.StatusConflict))

		var envelope errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(Succeed())
		Expect(envelope.Error.Type).To(Equal("CONFLICT"))
		Expect(envelope.Error.Code).To(Equal("ROLE_NAME_TAKEN"))
	})

	It("should return 400 for unknown permission ids", func() {
		w := do(http.MethodPost, "/roles", `{"name":"tutor","level":5,"permission_ids":[12345]}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject unknown fields in the body", func() {
		w := do(http.MethodPost, "/roles", `{"name":"tutor","level":5,"colour":"red"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for a missing role id and 400 for a malformed one", func() {
		Expect(do(http.MethodGet, "/roles/77", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/roles/abc", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("should clear permissions on PUT with an empty list", func() {
		w := do(http.MethodPost, "/permissions", `{"name":"view_logs","category":"system"}`)
		var permission catalog.Permission
		Expect(json.NewDecoder(w.Body).Decode(&permission)).To(Succeed())

		w = do(http.MethodPost, "/roles", `{"name":"admin","level":1,"permission_ids":[`+jsonInt(permission.ID)+`]}`)
		var role catalog.Role
		Expect(json.NewDecoder(w.Body).Decode(&role)).To(Succeed())

		w = do(http.MethodPut, "/roles/"+jsonInt(role.ID), `{"permission_ids":[]}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/roles/"+jsonInt(role.ID), "")
		Expect(json.NewDecoder(w.Body).Decode(&role)).To(Succeed())
		Expect(role.Permissions).To(BeEmpty())
	})

	It("should delete a role", func() {
		w := do(http.MethodPost, "/roles", `{"name":"guest","level":7}`)
		var role catalog.Role
		Expect(json.NewDecoder(w.Body).Decode(&role)).To(Succeed())

		Expect(do(http.MethodDelete, "/roles/"+jsonInt(role.ID), "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/roles/"+jsonInt(role.ID), "").Code).To(Equal(http.StatusNotFound))
	})

	It("should filter permissions by category", func() {
		do(http.MethodPost, "/permissions", `{"name":"view_logs","category":"system"}`)
		do(http.MethodPost, "/permissions", `{"name":"view_users","category":"users"}`)

		w := do(http.MethodGet, "/permissions?category=system", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var permissions []catalog.Permission
		Expect(json.NewDecoder(w.Body).Decode(&permissions)).To(Succeed())
		Expect(permissions).To(HaveLen(1))
		Expect(permissions[0].Name).To(Equal("view_logs"))
	})
})

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
