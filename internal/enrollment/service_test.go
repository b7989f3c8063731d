package enrollment_test

import (
	"context"
	"net/http"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	enrollmentDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/enrollment"
	"github.com/frahmantamala/lms-backend/internal/core/events"
	"github.com/frahmantamala/lms-backend/internal/enrollment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture(":memory:")
	})

	countRows := func(courseID int64) int64 {
		var n int64
		Expect(f.db.Model(&enrollmentDatamodel.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error).To(Succeed())
		return n
	}

	Describe("Create", func() {
		It("defaults to pending on the current date and loads relations", func() {
			u := f.user("alice", true)
			c := f.course("CS101", 30, true)

			e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: u, CourseID: c})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(enrollment.StatusPending))
			Expect(e.EnrollmentDate.Format("2006-01-02")).To(Equal("2025-09-01"))
			Expect(e.User).NotTo(BeNil())
			Expect(e.User.Username).To(Equal("alice"))
			Expect(e.Course).NotTo(BeNil())
			Expect(e.Course.Code).To(Equal("CS101"))
			Expect(f.publisher.types()).To(Equal([]string{events.EventTypeEnrollmentCreated}))
		})

		It("honours a requested status and date", func() {
			u := f.user("alice", true)
			c := f.course("CS101", 30, true)
			date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

			e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: u, CourseID: c, Status: strPtr("active"), EnrollmentDate: &date})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(enrollment.StatusActive))
			Expect(e.EnrollmentDate.Format("2006-01-02")).To(Equal("2025-01-15"))
		})

		It("fills the last seat and rejects the next", func() {
			c := f.course("C1", 1, true)

			first, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: c})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Status).To(Equal(enrollment.StatusPending))

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u2", true), CourseID: c})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeCourseFull)
			Expect(countRows(c)).To(Equal(int64(1)))
		})

		It("rejects a second enrollment for the same pair whatever the first one's status", func() {
			u := f.user("u1", true)
			c := f.course("C1", 5, true)

			e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: u, CourseID: c})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Update(f.ctx, e.ID, enrollment.UpdateEnrollmentDTO{Status: strPtr("cancelled")})
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: u, CourseID: c})
			expectAppError(err, http.StatusConflict, errors.ErrCodeEnrollmentExists)
		})

		It("does not count completed or cancelled enrollments against capacity", func() {
			c := f.course("C1", 2, true)
			for i, status := range []string{"completed", "cancelled"} {
				_, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{
					UserID:   f.user("done"+string(rune('a'+i)), true),
					CourseID: c,
					Status:   strPtr(status),
				})
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: c})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u2", true), CourseID: c, Status: strPtr("active")})
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u3", true), CourseID: c})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeCourseFull)
		})

		It("reports missing and inactive users and courses", func() {
			active := f.user("active", true)
			inactive := f.user("inactive", false)
			open := f.course("OPEN", 5, true)
			closed := f.course("CLOSED", 5, false)

			_, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: 999, CourseID: open})
			expectAppError(err, http.StatusNotFound, errors.ErrCodeUserNotFound)

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: inactive, CourseID: open})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeUserInactive)

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: active, CourseID: 999})
			expectAppError(err, http.StatusNotFound, errors.ErrCodeCourseNotFound)

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: active, CourseID: closed})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeCourseInactive)

			Expect(f.publisher.types()).To(BeEmpty())
		})

		It("rejects an unknown status", func() {
			_, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: 1, CourseID: 1, Status: strPtr("waitlisted")})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeValidationFailed)
		})

		It("rolls back when the context is already cancelled", func() {
			u := f.user("u1", true)
			c := f.course("C1", 5, true)
			ctx, cancel := context.WithCancel(f.ctx)
			cancel()

			_, err := f.service.Create(ctx, enrollment.CreateEnrollmentDTO{UserID: u, CourseID: c})
			Expect(err).To(HaveOccurred())
			Expect(countRows(c)).To(BeZero())
		})
	})

	Describe("BulkEnroll", func() {
		It("enrolls into every course in one go", func() {
			u := f.user("u1", true)
			c1 := f.course("C1", 5, true)
			c2 := f.course("C2", 5, true)

			enrollments, err := f.service.BulkEnroll(f.ctx, enrollment.BulkEnrollDTO{UserID: u, CourseIDs: []int64{c1, c2}})
			Expect(err).NotTo(HaveOccurred())
			Expect(enrollments).To(HaveLen(2))
			Expect(enrollments[0].CourseID).To(Equal(c1))
			Expect(enrollments[1].CourseID).To(Equal(c2))
			Expect(f.publisher.types()).To(HaveLen(2))
		})

		It("leaves nothing behind when a later course fails", func() {
			u := f.user("u1", true)
			c1 := f.course("C1", 5, true)
			c2 := f.course("C2", 5, false)

			_, err := f.service.BulkEnroll(f.ctx, enrollment.BulkEnrollDTO{UserID: u, CourseIDs: []int64{c1, c2}})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeCourseInactive)

			mine, err := f.service.ListByUser(f.ctx, u)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(BeEmpty())
			Expect(f.publisher.types()).To(BeEmpty())
		})

		It("rolls back when a course is full", func() {
			u := f.user("u1", true)
			c1 := f.course("C1", 5, true)
			full := f.course("FULL", 1, true)
			_, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u2", true), CourseID: full})
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.BulkEnroll(f.ctx, enrollment.BulkEnrollDTO{UserID: u, CourseIDs: []int64{c1, full}})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeCourseFull)
			Expect(countRows(c1)).To(BeZero())
		})

		It("treats a repeated course id as a duplicate", func() {
			u := f.user("u1", true)
			c1 := f.course("C1", 5, true)

			_, err := f.service.BulkEnroll(f.ctx, enrollment.BulkEnrollDTO{UserID: u, CourseIDs: []int64{c1, c1}})
			expectAppError(err, http.StatusConflict, errors.ErrCodeEnrollmentExists)
			Expect(countRows(c1)).To(BeZero())
		})

		It("requires at least one course", func() {
			_, err := f.service.BulkEnroll(f.ctx, enrollment.BulkEnrollDTO{UserID: 1})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeValidationFailed)
		})
	})

	Describe("Update", func() {
		It("records a grade within range", func() {
			e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: f.course("C1", 5, true)})
			Expect(err).NotTo(HaveOccurred())

			updated, err := f.service.Update(f.ctx, e.ID, enrollment.UpdateEnrollmentDTO{Status: strPtr("completed"), Grade: floatPtr(100)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(enrollment.StatusCompleted))
			Expect(updated.Grade).To(HaveValue(BeNumerically("==", 100)))
			Expect(f.publisher.types()).To(ContainElement(events.EventTypeEnrollmentUpdated))
		})

		It("rejects grades outside 0..100", func() {
			e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: f.course("C1", 5, true)})
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.Update(f.ctx, e.ID, enrollment.UpdateEnrollmentDTO{Grade: floatPtr(100.5)})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeValidationFailed)
			_, err = f.service.Update(f.ctx, e.ID, enrollment.UpdateEnrollmentDTO{Grade: floatPtr(-1)})
			expectAppError(err, http.StatusBadRequest, errors.ErrCodeValidationFailed)

			_, err = f.service.Update(f.ctx, e.ID, enrollment.UpdateEnrollmentDTO{Grade: floatPtr(0)})
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not re-check capacity when reactivating", func() {
			c := f.course("C1", 1, true)
			first, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: c})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Update(f.ctx, first.ID, enrollment.UpdateEnrollmentDTO{Status: strPtr("cancelled")})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u2", true), CourseID: c})
			Expect(err).NotTo(HaveOccurred())

			reseats := gatheredCounter("lms_enrollment_unchecked_reseats_total")
			_, err = f.service.Update(f.ctx, first.ID, enrollment.UpdateEnrollmentDTO{Status: strPtr("active")})
			Expect(err).NotTo(HaveOccurred())
			Expect(gatheredCounter("lms_enrollment_unchecked_reseats_total")).To(Equal(reseats + 1))

			var seats int64
			Expect(f.db.Model(&enrollmentDatamodel.Enrollment{}).
				Where("course_id = ? AND status IN ?", c, enrollment.CapacityStatuses).
				Count(&seats).Error).To(Succeed())
			Expect(seats).To(Equal(int64(2)))
		})

		It("reports a missing enrollment", func() {
			_, err := f.service.Update(f.ctx, 404, enrollment.UpdateEnrollmentDTO{Status: strPtr("active")})
			expectAppError(err, http.StatusNotFound, errors.ErrCodeEnrollmentNotFound)
		})
	})

	It("counts no reseat when the status stays within seat-holding statuses", func() {
		e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: f.course("C1", 5, true)})
		Expect(err).NotTo(HaveOccurred())

		reseats := gatheredCounter("lms_enrollment_unchecked_reseats_total")
		_, err = f.service.Update(f.ctx, e.ID, enrollment.UpdateEnrollmentDTO{Status: strPtr("active")})
		Expect(err).NotTo(HaveOccurred())
		Expect(gatheredCounter("lms_enrollment_unchecked_reseats_total")).To(Equal(reseats))
	})

	DescribeTable("OccupiesSeat",
		func(status string, seated bool) {
			Expect(enrollment.OccupiesSeat(status)).To(Equal(seated))
		},
		Entry("pending", enrollment.StatusPending, true),
		Entry("active", enrollment.StatusActive, true),
		Entry("completed", enrollment.StatusCompleted, false),
		Entry("cancelled", enrollment.StatusCancelled, false),
	)

	Describe("Remove", func() {
		It("deletes the row and frees the seat", func() {
			c := f.course("C1", 1, true)
			e, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u1", true), CourseID: c})
			Expect(err).NotTo(HaveOccurred())

			Expect(f.service.Remove(f.ctx, e.ID)).To(Succeed())
			_, err = f.service.GetByID(f.ctx, e.ID)
			expectAppError(err, http.StatusNotFound, errors.ErrCodeEnrollmentNotFound)

			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: f.user("u2", true), CourseID: c})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.publisher.types()).To(Equal([]string{
				events.EventTypeEnrollmentCreated,
				events.EventTypeEnrollmentRemoved,
				events.EventTypeEnrollmentCreated,
			}))
		})

		It("reports a missing enrollment", func() {
			expectAppError(f.service.Remove(f.ctx, 404), http.StatusNotFound, errors.ErrCodeEnrollmentNotFound)
		})
	})

	Describe("queries", func() {
		It("lists by user, by course and grouped by user", func() {
			alice := f.user("alice", true)
			bob := f.user("bob", true)
			c1 := f.course("C1", 5, true)
			c2 := f.course("C2", 5, true)

			_, err := f.service.BulkEnroll(f.ctx, enrollment.BulkEnrollDTO{UserID: alice, CourseIDs: []int64{c1, c2}})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: bob, CourseID: c1})
			Expect(err).NotTo(HaveOccurred())

			byUser, err := f.service.ListByUser(f.ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(byUser).To(HaveLen(2))

			byCourse, err := f.service.ListByCourse(f.ctx, c1)
			Expect(err).NotTo(HaveOccurred())
			Expect(byCourse).To(HaveLen(2))

			groups, err := f.service.ListGroupedByUser(f.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].User.Username).To(Equal("alice"))
			Expect(groups[0].Enrollments).To(HaveLen(2))
			Expect(groups[1].User.Username).To(Equal("bob"))
			Expect(groups[1].Enrollments[0].Course.Code).To(Equal("C1"))
		})
	})
})
