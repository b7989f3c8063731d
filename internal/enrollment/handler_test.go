package enrollment_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/lms-backend/internal/enrollment"
	"github.com/frahmantamala/lms-backend/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		f      *fixture
		router chi.Router
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		f = newFixture(":memory:")
		h := enrollment.NewHandler(transport.NewBaseHandler(testLogger), f.service)

		router = chi.NewRouter()
		router.Route("/enrollments", func(r chi.Router) {
			r.Post("/", h.CreateEnrollment)
			r.Post("/bulk", h.BulkEnroll)
			r.Get("/", h.ListEnrollments)
			r.Get("/grouped-by-user", h.ListGroupedByUser)
			r.Get("/user/{userId}", h.ListByUser)
			r.Get("/course/{courseId}", h.ListByCourse)
			r.Get("/{id}", h.GetEnrollment)
			r.Patch("/{id}", h.UpdateEnrollment)
			r.Delete("/{id}", h.DeleteEnrollment)
		})
	})

	It("creates, grades and deletes an enrollment", func() {
		u := f.user("alice", true)
		c := f.course("CS101", 2, true)

		rec := do(http.MethodPost, "/enrollments/", map[string]interface{}{"user_id": u, "course_id": c})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var created enrollment.Enrollment
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		Expect(created.Status).To(Equal("pending"))
		Expect(created.Course.Code).To(Equal("CS101"))

		path := "/enrollments/" + strconv.FormatInt(created.ID, 10)
		rec = do(http.MethodPatch, path, map[string]interface{}{"grade": 87.5, "status": "completed"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"grade":87.5`))

		Expect(do(http.MethodDelete, path, nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, path, nil).Code).To(Equal(http.StatusNotFound))
	})

	It("answers 409 for a duplicate and 400 for a full course", func() {
		c := f.course("C1", 1, true)
		u := f.user("alice", true)

		Expect(do(http.MethodPost, "/enrollments/", map[string]interface{}{"user_id": u, "course_id": c}).Code).To(Equal(http.StatusCreated))

		rec := do(http.MethodPost, "/enrollments/", map[string]interface{}{"user_id": u, "course_id": c})
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("ENROLLMENT_EXISTS"))

		rec = do(http.MethodPost, "/enrollments/", map[string]interface{}{"user_id": f.user("bob", true), "course_id": c})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("COURSE_FULL"))
	})

	It("rejects an out of range grade", func() {
		e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("alice", true), CourseID: f.course("C1", 5, true)})
		Expect(err).NotTo(HaveOccurred())

		rec := do(http.MethodPatch, "/enrollments/"+strconv.FormatInt(e.ID, 10), map[string]interface{}{"grade": 150})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_GRADE"))
	})

	It("bulk enrolls and lists by user and course", func() {
		u := f.user("alice", true)
		c1 := f.course("C1", 5, true)
		c2 := f.course("C2", 5, true)

		rec := do(http.MethodPost, "/enrollments/bulk", map[string]interface{}{"user_id": u, "course_ids": []int64{c1, c2}})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var mine []enrollment.Enrollment
		rec = do(http.MethodGet, "/enrollments/user/"+strconv.FormatInt(u, 10), nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &mine)).To(Succeed())
		Expect(mine).To(HaveLen(2))

		var inCourse []enrollment.Enrollment
		rec = do(http.MethodGet, "/enrollments/course/"+strconv.FormatInt(c2, 10), nil)
		Expect(json.Unmarshal(rec.Body.Bytes(), &inCourse)).To(Succeed())
		Expect(inCourse).To(HaveLen(1))

		var groups []enrollment.UserEnrollments
		rec = do(http.MethodGet, "/enrollments/grouped-by-user", nil)
		Expect(json.Unmarshal(rec.Body.Bytes(), &groups)).To(Succeed())
		Expect(groups).To(HaveLen(1))
		Expect(groups[0].Enrollments).To(HaveLen(2))
	})

	It("rejects unknown fields and malformed ids", func() {
		Expect(do(http.MethodPost, "/enrollments/", map[string]interface{}{"user_id": 1, "course_id": 1, "seat": 4}).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/enrollments/abc", nil).Code).To(Equal(http.StatusBadRequest))
	})
})
