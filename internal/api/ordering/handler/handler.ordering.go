// Package orderinghdl chứa các handler cho giỏ hàng và đơn hàng.
package orderinghdl

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "campus_commerce/internal/api/base/handler"
	authsvc "campus_commerce/internal/api/auth/service"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	"campus_commerce/internal/api/middleware"
	orderingdto "campus_commerce/internal/api/ordering/dto"
	models "campus_commerce/internal/api/ordering/models"
	orderingsvc "campus_commerce/internal/api/ordering/service"
	"campus_commerce/internal/common"
)

// OrderingHandler xử lý các endpoint /cart, /order và danh sách đơn của nhà hàng.
type OrderingHandler struct {
	cartService       *orderingsvc.CartService
	orderService      *orderingsvc.OrderService
	restaurantService *catalogsvc.RestaurantService
}

// NewOrderingHandler tạo một instance mới của OrderingHandler.
func NewOrderingHandler() (*OrderingHandler, error) {
	cartService, err := orderingsvc.NewCartService()
	if err != nil {
		return nil, fmt.Errorf("failed to create cart service: %v", err)
	}
	orderService, err := orderingsvc.NewOrderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %v", err)
	}
	restaurantService, err := catalogsvc.NewRestaurantService()
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant service: %v", err)
	}
	return &OrderingHandler{
		cartService:       cartService,
		orderService:      orderService,
		restaurantService: restaurantService,
	}, nil
}

// itemsPayload chuyển danh sách item của transaction về dạng trả cho client.
func itemsPayload(items []models.TransactionItem) []fiber.Map {
	list := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		list = append(list, fiber.Map{
			"item_id":    item.ItemID,
			"variant_id": item.VariantID,
			"quantity":   item.Quantity,
		})
	}
	return list
}

// requireRestaurant tra nhà hàng theo id, không có trả về "Not found." 404.
func (h *OrderingHandler) requireRestaurant(c fiber.Ctx, restaurantID string) error {
	_, err := h.restaurantService.FindByRestaurantID(c.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "Not found.", common.StatusNotFound, nil)
		}
		return err
	}
	return nil
}

// HandleSetCart thay toàn bộ giỏ hàng của caller cho một nhà hàng. Giỏ cũ
// (nếu có) bị thay bằng transaction mới, trả về id của transaction mới.
func (h *OrderingHandler) HandleSetCart(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input orderingdto.CartSetInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.requireRestaurant(c, input.Restaurant); err != nil {
		return basehdl.RespondError(c, err)
	}

	cart, err := h.cartService.SetCart(c.Context(), user, input.Restaurant, input.Items)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{"id": cart.TransactionID})
}

// HandleGetCart trả về giỏ hàng hiện tại của caller cho nhà hàng trong query
// param "restaurant".
func (h *OrderingHandler) HandleGetCart(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurantID := c.Query("restaurant")
	if err := h.requireRestaurant(c, restaurantID); err != nil {
		return basehdl.RespondError(c, err)
	}

	cart, err := h.cartService.GetCart(c.Context(), user, restaurantID)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{
		"id":    cart.TransactionID,
		"items": itemsPayload(cart.Items),
	})
}

// HandleUpdateCart thay danh sách món của một giỏ hàng đang tồn tại.
func (h *OrderingHandler) HandleUpdateCart(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input orderingdto.CartUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.cartService.UpdateCart(c.Context(), user, input.CartID, input.Items); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleCheckout chuyển một giỏ hàng thành đơn hàng.
func (h *OrderingHandler) HandleCheckout(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input orderingdto.CheckoutInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.orderService.Checkout(c.Context(), user, input.CartID); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleListOrders trả về lịch sử đơn của caller, phân hoạch thành đang xử lý
// và đã kết thúc theo trạng thái hiện tại của từng đơn.
func (h *OrderingHandler) HandleListOrders(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	active, past, err := h.orderService.ListUserOrders(c.Context(), user)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{
		"active": active,
		"past":   past,
	})
}

// HandleGetOrder trả về chi tiết một đơn hàng nếu caller được phép thấy.
func (h *OrderingHandler) HandleGetOrder(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	order, err := h.orderService.GetOrderDetail(c.Context(), user, c.Params("id"))
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{
		"id":             order.TransactionID,
		"items":          itemsPayload(order.Items),
		"completed":      order.Completed,
		"canceled":       order.Canceled,
		"time_ordered":   order.TimeOrdered,
		"time_completed": order.TimeCompleted,
		"restaurant":     order.RestaurantID,
		"user":           order.UserID,
		"workers":        order.Workers,
	})
}

// HandleToggleWorker thêm hoặc gỡ caller khỏi danh sách worker của một đơn.
// Body gửi remove là chuỗi "true"/"false".
func (h *OrderingHandler) HandleToggleWorker(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input orderingdto.WorkerToggleInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.orderService.ToggleWorker(c.Context(), user, c.Params("id"), input.Remove == "true"); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleFinalize kết thúc một đơn hàng: staff hoàn thành, chủ đơn hủy.
func (h *OrderingHandler) HandleFinalize(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.orderService.Finalize(c.Context(), user, c.Params("id")); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleListRestaurantOrders trả về hai danh sách đơn của một nhà hàng
// (staff trở lên). Danh sách trả nguyên văn, không re-read từng đơn.
func (h *OrderingHandler) HandleListRestaurantOrders(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurant, err := h.restaurantService.FindByRestaurantID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return basehdl.RespondError(c, common.NewError(common.ErrCodeDatabaseQuery, "Not found.", common.StatusNotFound, nil))
		}
		return basehdl.RespondError(c, err)
	}

	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapViewRestaurantOrders) {
		return basehdl.RespondError(c, common.ErrUnauthorized)
	}

	return basehdl.RespondSuccess(c, fiber.Map{
		"active": restaurant.CurrentTransactions,
		"past":   restaurant.PastTransactions,
	})
}
