// Package cataloghdl chứa các handler cho nhà hàng, thực đơn và roster.
package cataloghdl

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	basehdl "campus_commerce/internal/api/base/handler"
	authsvc "campus_commerce/internal/api/auth/service"
	catalogdto "campus_commerce/internal/api/catalog/dto"
	catalogmodels "campus_commerce/internal/api/catalog/models"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	"campus_commerce/internal/api/middleware"
	"campus_commerce/internal/common"
)

func errResourceNotFound() error {
	return common.NewError(common.ErrCodeDatabaseQuery, "Not found.", common.StatusNotFound, nil)
}

func errRestaurantNotFound() error {
	return common.NewError(common.ErrCodeDatabaseQuery, "Restaurant not found.", common.StatusNotFound, nil)
}

func errInvalidCategoryIndex() error {
	return common.NewError(common.ErrCodeValidationInput, "Invalid category index supplied.", common.StatusBadRequest, nil)
}

// CatalogHandler xử lý các endpoint /restaurant và mọi thứ bên dưới nó.
type CatalogHandler struct {
	restaurantService *catalogsvc.RestaurantService
	menuService       *catalogsvc.MenuService
}

// NewCatalogHandler tạo một instance mới của CatalogHandler.
func NewCatalogHandler() (*CatalogHandler, error) {
	restaurantService, err := catalogsvc.NewRestaurantService()
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant service: %v", err)
	}
	menuService, err := catalogsvc.NewMenuService()
	if err != nil {
		return nil, fmt.Errorf("failed to create menu service: %v", err)
	}
	return &CatalogHandler{
		restaurantService: restaurantService,
		menuService:       menuService,
	}, nil
}

// loadRestaurant tra nhà hàng từ path param :id. notFoundErr cho phép giữ
// nguyên message khác nhau giữa nhóm endpoint thực đơn ("Not found.") và
// nhóm roster/feedback ("Restaurant not found.").
func (h *CatalogHandler) loadRestaurant(c fiber.Ctx, notFoundErr error) (catalogmodels.Restaurant, error) {
	restaurant, err := h.restaurantService.FindByRestaurantID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return catalogmodels.Restaurant{}, notFoundErr
		}
		return catalogmodels.Restaurant{}, err
	}
	return restaurant, nil
}

// imagePath là đường dẫn client dùng để tải ảnh của một nhà hàng.
func imagePath(restaurantID string) string {
	return "/restaurant/" + restaurantID + "/image"
}

// HandleListRestaurants trả về danh sách mọi nhà hàng.
func (h *CatalogHandler) HandleListRestaurants(c fiber.Ctx) error {
	if _, err := middleware.RequireUser(c); err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurants, err := h.restaurantService.List(c.Context())
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	list := make([]fiber.Map, 0, len(restaurants))
	for _, restaurant := range restaurants {
		list = append(list, fiber.Map{
			"id":    restaurant.RestaurantID,
			"name":  restaurant.Name,
			"image": imagePath(restaurant.RestaurantID),
		})
	}
	return basehdl.RespondSuccess(c, fiber.Map{"list": list})
}

// HandleGetRestaurant trả về một nhà hàng kèm thực đơn đã shape theo vai trò
// của caller: staff thấy cả category/món inactive kèm cờ active, người dùng
// thường chỉ thấy phần active.
func (h *CatalogHandler) HandleGetRestaurant(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	role := authsvc.RoleOf(user, &restaurant)
	categories, err := h.menuService.BuildMenu(c.Context(), &restaurant, role.Allows(authsvc.CapSeeInactiveMenu))
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	return basehdl.RespondSuccess(c, fiber.Map{
		"id":         restaurant.RestaurantID,
		"name":       restaurant.Name,
		"image":      imagePath(restaurant.RestaurantID),
		"categories": categories,
	})
}

// HandleGetItem trả về một món theo id, shape theo vai trò caller.
func (h *CatalogHandler) HandleGetItem(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	role := authsvc.RoleOf(user, &restaurant)
	item, err := h.menuService.FindItemView(c.Context(), &restaurant, c.Params("itemid"), role.Allows(authsvc.CapSeeInactiveMenu))
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	payload := fiber.Map{
		"id":       item.ID,
		"name":     item.Name,
		"variants": item.Variants,
	}
	if item.Active != nil {
		payload["active"] = *item.Active
	}
	return basehdl.RespondSuccess(c, payload)
}

// HandleGetImage trả về file ảnh của nhà hàng theo đường dẫn đã lưu.
func (h *CatalogHandler) HandleGetImage(c fiber.Ctx) error {
	if _, err := middleware.RequireUser(c); err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	c.Set("Content-Type", "image/png")
	if err := c.SendFile(restaurant.Image); err != nil {
		return basehdl.RespondError(c, common.NewError(
			common.ErrCodeInternalServer, "Internal server error.", common.StatusInternalServerError, err.Error()))
	}
	return nil
}

// HandleCreateRestaurant tạo nhà hàng mới (chỉ admin).
func (h *CatalogHandler) HandleCreateRestaurant(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, nil).Allows(authsvc.CapCreateRestaurant) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	var input catalogdto.RestaurantCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.restaurantService.Create(c.Context(), input.Name, input.Image)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{"id": restaurant.RestaurantID})
}

// HandleUpdateRestaurant đổi tên / ảnh nhà hàng (owner trở lên).
func (h *CatalogHandler) HandleUpdateRestaurant(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapEditRestaurant) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	var input catalogdto.RestaurantUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.restaurantService.UpdateInfo(c.Context(), restaurant.RestaurantID, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleDeleteRestaurant xóa nhà hàng (chỉ admin). Idempotent: nhà hàng
// không tồn tại vẫn trả về thành công.
func (h *CatalogHandler) HandleDeleteRestaurant(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, nil).Allows(authsvc.CapDeleteRestaurant) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	if err := h.restaurantService.Delete(c.Context(), c.Params("id")); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleCreateItem thêm món mới vào một category (owner trở lên).
func (h *CatalogHandler) HandleCreateItem(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapEditItemFields) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	var input catalogdto.ItemCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	item, err := h.restaurantService.CreateItem(c.Context(), restaurant.RestaurantID, &input)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{"id": item.ItemID})
}

// HandleUpdateItem cập nhật một món. Worker chỉ được đổi cờ active; các field
// còn lại cần owner trở lên.
func (h *CatalogHandler) HandleUpdateItem(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	role := authsvc.RoleOf(user, &restaurant)
	if !role.Allows(authsvc.CapEditItemActive) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	var input catalogdto.ItemUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	err = h.restaurantService.UpdateItem(c.Context(), restaurant.RestaurantID, c.Params("itemid"),
		&input, role.Allows(authsvc.CapEditItemFields))
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleCreateCategory thêm category rỗng vào cuối thực đơn (owner trở lên).
func (h *CatalogHandler) HandleCreateCategory(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapManageCategories) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	var input catalogdto.CategoryCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.restaurantService.AddCategory(c.Context(), restaurant.RestaurantID, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// categoryIndex parse path param :catindex thành chỉ số nguyên không âm.
func categoryIndex(c fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("catindex"))
	if err != nil || index < 0 {
		return 0, errInvalidCategoryIndex()
	}
	return index, nil
}

// HandleUpdateCategory cập nhật category theo chỉ số (owner trở lên).
func (h *CatalogHandler) HandleUpdateCategory(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapManageCategories) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	index, err := categoryIndex(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input catalogdto.CategoryUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.restaurantService.UpdateCategory(c.Context(), restaurant.RestaurantID, index, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleDeleteCategory gỡ category theo chỉ số (owner trở lên). Các món của
// category vẫn tồn tại, chỉ mất tham chiếu từ thực đơn.
func (h *CatalogHandler) HandleDeleteCategory(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errResourceNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapManageCategories) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	index, err := categoryIndex(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.restaurantService.DeleteCategory(c.Context(), restaurant.RestaurantID, index); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// --------------------------------
// Rosters
// --------------------------------

// HandleListWorkers trả về roster worker của nhà hàng (staff trở lên).
func (h *CatalogHandler) HandleListWorkers(c fiber.Ctx) error {
	return h.handleListRoster(c, func(r *catalogmodels.Restaurant) []string { return r.Workers })
}

// HandleListOwners trả về roster owner của nhà hàng (staff trở lên).
func (h *CatalogHandler) HandleListOwners(c fiber.Ctx) error {
	return h.handleListRoster(c, func(r *catalogmodels.Restaurant) []string { return r.Owners })
}

func (h *CatalogHandler) handleListRoster(c fiber.Ctx, pick func(*catalogmodels.Restaurant) []string) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errRestaurantNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapViewStaffUser) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	return basehdl.RespondSuccess(c, fiber.Map{"list": pick(&restaurant)})
}

// HandleAddWorker thêm worker theo email (owner trở lên).
func (h *CatalogHandler) HandleAddWorker(c fiber.Ctx) error {
	return h.handleAddRoster(c, authsvc.CapManageWorkers, h.restaurantService.AddWorkerByEmail)
}

// HandleAddOwner thêm owner theo email (chỉ admin).
func (h *CatalogHandler) HandleAddOwner(c fiber.Ctx) error {
	return h.handleAddRoster(c, authsvc.CapManageOwners, h.restaurantService.AddOwnerByEmail)
}

func (h *CatalogHandler) handleAddRoster(c fiber.Ctx, capability authsvc.Capability, add func(ctx context.Context, restaurantID, userEmail string) error) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errRestaurantNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(capability) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	var input catalogdto.RosterAddInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := add(c.Context(), restaurant.RestaurantID, input.UserEmail); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleRemoveWorker gỡ worker theo user id (owner trở lên).
func (h *CatalogHandler) HandleRemoveWorker(c fiber.Ctx) error {
	return h.handleRemoveRoster(c, authsvc.CapManageWorkers, "workerid", h.restaurantService.RemoveWorker)
}

// HandleRemoveOwner gỡ owner theo user id (chỉ admin).
func (h *CatalogHandler) HandleRemoveOwner(c fiber.Ctx) error {
	return h.handleRemoveRoster(c, authsvc.CapManageOwners, "ownerid", h.restaurantService.RemoveOwner)
}

func (h *CatalogHandler) handleRemoveRoster(c fiber.Ctx, capability authsvc.Capability, param string, remove func(ctx context.Context, restaurantID, userID string) error) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.loadRestaurant(c, errRestaurantNotFound())
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	if !authsvc.RoleOf(user, &restaurant).Allows(capability) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	if err := remove(c.Context(), restaurant.RestaurantID, c.Params(param)); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}
