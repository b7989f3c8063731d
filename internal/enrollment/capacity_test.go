package enrollment_test

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/database"
	enrollmentDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/enrollment"
	"github.com/frahmantamala/lms-backend/internal/enrollment"
	_ "github.com/jackc/pgx/v5/stdlib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	raceCapacity = 5
	raceCallers  = 24
)

// raceForSeats fires raceCallers concurrent enrollments at one course and
// checks that exactly raceCapacity of them got a seat.
func raceForSeats(f *fixture) {
	courseID := f.course("RACE", raceCapacity, true)
	users := make([]int64, raceCallers)
	for i := range users {
		users[i] = f.user(fmt.Sprintf("racer%02d", i), true)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
		other     []error
	)
	start := make(chan struct{})
	for _, userID := range users {
		wg.Add(1)
		go func(userID int64) {
			defer GinkgoRecover()
			defer wg.Done()
			<-start

			_, err := f.service.Create(f.ctx, enrollment.CreateEnrollmentDTO{UserID: userID, CourseID: courseID})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if appErr, ok := errors.IsAppError(err); ok && appErr.StatusCode == http.StatusBadRequest && appErr.Code == errors.ErrCodeCourseFull {
				full++
				return
			}
			other = append(other, err)
		}(userID)
	}
	close(start)
	wg.Wait()

	Expect(other).To(BeEmpty())
	Expect(succeeded).To(Equal(raceCapacity))
	Expect(full).To(Equal(raceCallers - raceCapacity))

	var seats int64
	Expect(f.db.Model(&enrollmentDatamodel.Enrollment{}).
		Where("course_id = ? AND status IN ?", courseID, enrollment.CapacityStatuses).
		Count(&seats).Error).To(Succeed())
	Expect(seats).To(Equal(int64(raceCapacity)))
}

var _ = Describe("Capacity under concurrent enrollment", func() {
	It("never admits more than max capacity", func() {
		dsn := filepath.Join(GinkgoT().TempDir(), "capacity.db") + "?_txlock=immediate&_busy_timeout=10000"
		raceForSeats(newFixture(dsn))
	})

	Context("on postgres", Label("integration"), func() {
		var f *fixture

		BeforeEach(func() {
			ctx := context.Background()
			provider, err := testcontainers.ProviderDocker.GetProvider()
			if err != nil {
				Skip("docker is not available: " + err.Error())
			}
			provider.Close()

			container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
				tcpostgres.WithDatabase("lms_test"),
				tcpostgres.WithUsername("lms"),
				tcpostgres.WithPassword("lms"),
				testcontainers.WithWaitStrategy(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(60*time.Second),
				),
			)
			if err != nil {
				Skip("could not start postgres: " + err.Error())
			}
			DeferCleanup(func() {
				Expect(container.Terminate(context.Background())).To(Succeed())
			})

			connStr, err := container.ConnectionString(ctx, "sslmode=disable")
			Expect(err).NotTo(HaveOccurred())

			sqlDB, err := goose.OpenDBWithDriver("pgx", connStr)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(sqlDB.Close)
			Expect(goose.UpContext(ctx, sqlDB, "../../db/migrations")).To(Succeed())

			db, err := database.OpenPostgres(sqlDB)
			Expect(err).NotTo(HaveOccurred())
			f = fixtureFor(db)
		})

		It("serializes seat checks on the course row lock", func() {
			raceForSeats(f)
		})
	})
})
