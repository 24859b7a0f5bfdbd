// Package authsvc - service phân quyền và phiên làm việc.
package authsvc

import (
	models "campus_commerce/internal/api/auth/models"
	catalogmodels "campus_commerce/internal/api/catalog/models"
)

// Role là mức đặc quyền của một user đối với một nhà hàng cụ thể.
// Thứ tự so sánh được: user < worker < owner < admin.
type Role int

const (
	RoleUser Role = iota
	RoleWorker
	RoleOwner
	RoleAdmin
)

// String trả về tên role để log và trả về client.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	case RoleWorker:
		return "worker"
	default:
		return "user"
	}
}

// Capability là một hành động cần kiểm tra quyền trước khi thực hiện.
type Capability string

const (
	CapSeeInactiveMenu      Capability = "menu.see_inactive"
	CapViewRestaurantOrders Capability = "restaurant.view_orders"
	CapToggleOrderWorker    Capability = "order.toggle_worker"
	CapCompleteOrder        Capability = "order.complete"
	CapEditItemActive       Capability = "item.edit_active"
	CapEditItemFields       Capability = "item.edit_fields"
	CapManageCategories     Capability = "restaurant.manage_categories"
	CapEditRestaurant       Capability = "restaurant.edit"
	CapManageWorkers        Capability = "restaurant.manage_workers"
	CapManageOwners         Capability = "restaurant.manage_owners"
	CapCreateRestaurant     Capability = "restaurant.create"
	CapDeleteRestaurant     Capability = "restaurant.delete"
	CapViewStaffUser        Capability = "user.view_staff"
	CapViewFeedback         Capability = "feedback.view"
)

// capabilityMatrix ánh xạ mỗi capability sang role tối thiểu được phép.
// Mọi quyết định quyền trong hệ thống đi qua bảng này, không có check
// boolean rải rác trong handler. Thêm capability mới chỉ cần thêm dòng.
var capabilityMatrix = map[Capability]Role{
	CapSeeInactiveMenu:      RoleWorker,
	CapViewRestaurantOrders: RoleWorker,
	CapToggleOrderWorker:    RoleWorker,
	CapCompleteOrder:        RoleWorker,
	CapEditItemActive:       RoleWorker,
	CapEditItemFields:       RoleOwner,
	CapManageCategories:     RoleOwner,
	CapEditRestaurant:       RoleOwner,
	CapManageWorkers:        RoleOwner,
	CapManageOwners:         RoleAdmin,
	CapCreateRestaurant:     RoleAdmin,
	CapDeleteRestaurant:     RoleAdmin,
	CapViewStaffUser:        RoleWorker,
	CapViewFeedback:         RoleWorker,
}

// Allows kiểm tra role có đủ mức cho capability không.
// Capability không có trong bảng bị từ chối với mọi role (fail closed).
func (r Role) Allows(cap Capability) bool {
	min, ok := capabilityMatrix[cap]
	if !ok {
		return false
	}
	return r >= min
}

// RoleOf tính role hiệu lực của user đối với một nhà hàng, theo thứ tự
// ưu tiên admin > owner > worker > user. Đây là hàm duy nhất quyết định
// role; user nil (chưa đăng nhập) luôn là RoleUser.
// Dữ liệu lệch (user nằm cả trong owners lẫn workers) vẫn cho kết quả
// xác định: owner thắng.
func RoleOf(user *models.User, restaurant *catalogmodels.Restaurant) Role {
	if user == nil {
		return RoleUser
	}
	if user.Admin {
		return RoleAdmin
	}
	if restaurant == nil {
		return RoleUser
	}
	for _, id := range restaurant.Owners {
		if id == user.UserID {
			return RoleOwner
		}
	}
	for _, id := range restaurant.Workers {
		if id == user.UserID {
			return RoleWorker
		}
	}
	return RoleUser
}
