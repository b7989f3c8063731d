package catalog_test

import (
	"context"
	"time"

	"github.com/frahmantamala/lms-backend/internal/catalog"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// pausingRepository finishes its read and then holds the result until released,
// letting a write commit and invalidate the cache in between.
type pausingRepository struct {
	*MockRepository
	entered chan struct{}
	release chan struct{}
}

func newPausingRepository(inner *MockRepository) *pausingRepository {
	return &pausingRepository{
		MockRepository: inner,
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (p *pausingRepository) GetRolesByIDs(ctx context.Context, ids []int64) ([]*rbacDatamodel.Role, error) {
	roles, err := p.MockRepository.GetRolesByIDs(ctx, ids)
	close(p.entered)
	<-p.release
	return roles, err
}

func (p *pausingRepository) GetRoleByID(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	role, err := p.MockRepository.GetRoleByID(ctx, id)
	close(p.entered)
	<-p.release
	return role, err
}

var _ = Describe("RoleCache", func() {
	It("should drop an add made with a generation older than the last invalidation", func() {
		cache := catalog.NewRoleCache(4, time.Minute)
		generation := cache.Generation()

		cache.Remove(1)

		Expect(cache.Add(&catalog.Role{ID: 1, Name: "teacher"}, generation)).To(BeFalse())
		_, ok := cache.Get(1)
		Expect(ok).To(BeFalse())

		Expect(cache.Add(&catalog.Role{ID: 1, Name: "teacher"}, cache.Generation())).To(BeTrue())
		_, ok = cache.Get(1)
		Expect(ok).To(BeTrue())
	})

	It("should treat a purge as an invalidation", func() {
		cache := catalog.NewRoleCache(4, time.Minute)
		generation := cache.Generation()
		cache.Purge()
		Expect(cache.Add(&catalog.Role{ID: 2}, generation)).To(BeFalse())
		Expect(cache.Len()).To(Equal(0))
	})

	It("should accept nothing when nil", func() {
		var cache *catalog.RoleCache
		Expect(cache.Generation()).To(BeZero())
		Expect(cache.Add(&catalog.Role{ID: 1}, 0)).To(BeFalse())
	})

	Describe("reads racing a role update", func() {
		var (
			ctx     context.Context
			inner   *MockRepository
			cache   *catalog.RoleCache
			roleID  int64
			service *catalog.Service
			paused  *pausingRepository
		)

		BeforeEach(func() {
			ctx = context.Background()
			inner = NewMockRepository()
			cache = catalog.NewRoleCache(16, time.Minute)
			viewID := inner.AddPermission("view_all_courses", "courses")

			setup := catalog.NewService(inner, nil, nil)
			role, err := setup.CreateRole(ctx, catalog.CreateRoleDTO{
				Name:          "teacher",
				Level:         3,
				PermissionIDs: []int64{viewID},
			})
			Expect(err).NotTo(HaveOccurred())
			roleID = role.ID

			paused = newPausingRepository(inner)
			service = catalog.NewService(paused, cache, nil)
		})

		clearPermissions := func() {
			writer := catalog.NewService(inner, cache, nil)
			empty := []int64{}
			_, err := writer.UpdateRole(ctx, roleID, catalog.UpdateRoleDTO{PermissionIDs: &empty})
			Expect(err).NotTo(HaveOccurred())
		}

		It("should not cache a RolesByIDs result loaded before the update", func() {
			done := make(chan []*catalog.Role)
			go func() {
				defer GinkgoRecover()
				roles, err := service.RolesByIDs(ctx, []int64{roleID})
				Expect(err).NotTo(HaveOccurred())
				done <- roles
			}()

			Eventually(paused.entered).Should(BeClosed())
			clearPermissions()
			close(paused.release)

			var stale []*catalog.Role
			Eventually(done).Should(Receive(&stale))
			Expect(stale[0].PermissionNames()).To(ConsistOf("view_all_courses"))

			fresh, err := catalog.NewService(inner, cache, nil).RolesByIDs(ctx, []int64{roleID})
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh).To(HaveLen(1))
			Expect(fresh[0].Permissions).To(BeEmpty())
		})

		It("should not cache a GetRole result loaded before the update", func() {
			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				_, err := service.GetRole(ctx, roleID)
				Expect(err).NotTo(HaveOccurred())
			}()

			Eventually(paused.entered).Should(BeClosed())
			clearPermissions()
			close(paused.release)
			Eventually(done).Should(BeClosed())

			fresh, err := catalog.NewService(inner, cache, nil).GetRole(ctx, roleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.Permissions).To(BeEmpty())
		})
	})
})
