package authsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "campus_commerce/internal/api/auth/models"
	catalogmodels "campus_commerce/internal/api/catalog/models"
)

func TestRoleOf(t *testing.T) {
	restaurant := &catalogmodels.Restaurant{
		RestaurantID: "rest1",
		Owners:       []string{"owner1", "both1"},
		Workers:      []string{"worker1", "both1"},
	}

	tests := []struct {
		name string
		user *models.User
		want Role
	}{
		{"nil user là khách", nil, RoleUser},
		{"user thường", &models.User{UserID: "someone"}, RoleUser},
		{"worker của nhà hàng", &models.User{UserID: "worker1"}, RoleWorker},
		{"owner của nhà hàng", &models.User{UserID: "owner1"}, RoleOwner},
		{"owner thắng worker khi dữ liệu có user ở cả hai roster", &models.User{UserID: "both1"}, RoleOwner},
		{"cờ admin thắng mọi roster", &models.User{UserID: "worker1", Admin: true}, RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleOf(tt.user, restaurant))
		})
	}

	t.Run("không có nhà hàng thì roster không tính, chỉ còn admin", func(t *testing.T) {
		assert.Equal(t, RoleUser, RoleOf(&models.User{UserID: "owner1"}, nil))
		assert.Equal(t, RoleAdmin, RoleOf(&models.User{UserID: "owner1", Admin: true}, nil))
	})
}

func TestRoleAllows(t *testing.T) {
	t.Run("worker có quyền vận hành, không có quyền sửa thực đơn", func(t *testing.T) {
		assert.True(t, RoleWorker.Allows(CapSeeInactiveMenu))
		assert.True(t, RoleWorker.Allows(CapViewRestaurantOrders))
		assert.True(t, RoleWorker.Allows(CapToggleOrderWorker))
		assert.True(t, RoleWorker.Allows(CapCompleteOrder))
		assert.True(t, RoleWorker.Allows(CapEditItemActive))
		assert.False(t, RoleWorker.Allows(CapEditItemFields))
		assert.False(t, RoleWorker.Allows(CapManageCategories))
		assert.False(t, RoleWorker.Allows(CapManageWorkers))
	})

	t.Run("owner quản lý thực đơn và worker, không quản lý owner", func(t *testing.T) {
		assert.True(t, RoleOwner.Allows(CapEditItemFields))
		assert.True(t, RoleOwner.Allows(CapManageCategories))
		assert.True(t, RoleOwner.Allows(CapEditRestaurant))
		assert.True(t, RoleOwner.Allows(CapManageWorkers))
		assert.False(t, RoleOwner.Allows(CapManageOwners))
		assert.False(t, RoleOwner.Allows(CapCreateRestaurant))
		assert.False(t, RoleOwner.Allows(CapDeleteRestaurant))
	})

	t.Run("admin có mọi quyền", func(t *testing.T) {
		for _, capability := range []Capability{
			CapSeeInactiveMenu, CapViewRestaurantOrders, CapToggleOrderWorker,
			CapCompleteOrder, CapEditItemActive, CapEditItemFields,
			CapManageCategories, CapEditRestaurant, CapManageWorkers,
			CapManageOwners, CapCreateRestaurant, CapDeleteRestaurant,
			CapViewStaffUser, CapViewFeedback,
		} {
			assert.True(t, RoleAdmin.Allows(capability), "admin thiếu capability %s", capability)
		}
	})

	t.Run("capability không khai báo thì từ chối kể cả admin", func(t *testing.T) {
		assert.False(t, RoleAdmin.Allows(Capability("nonexistent")))
		assert.False(t, RoleUser.Allows(Capability("nonexistent")))
	})
}
