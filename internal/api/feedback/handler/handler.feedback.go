// Package feedbackhdl chứa các handler cho góp ý người dùng.
package feedbackhdl

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "campus_commerce/internal/api/base/handler"
	authsvc "campus_commerce/internal/api/auth/service"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	feedbackdto "campus_commerce/internal/api/feedback/dto"
	feedbacksvc "campus_commerce/internal/api/feedback/service"
	"campus_commerce/internal/api/middleware"
	"campus_commerce/internal/common"
)

// FeedbackHandler xử lý POST /feedback và các endpoint góp ý theo nhà hàng.
type FeedbackHandler struct {
	feedbackService   *feedbacksvc.FeedbackService
	restaurantService *catalogsvc.RestaurantService
}

// NewFeedbackHandler tạo một instance mới của FeedbackHandler.
func NewFeedbackHandler() (*FeedbackHandler, error) {
	feedbackService, err := feedbacksvc.NewFeedbackService()
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback service: %v", err)
	}
	restaurantService, err := catalogsvc.NewRestaurantService()
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant service: %v", err)
	}
	return &FeedbackHandler{
		feedbackService:   feedbackService,
		restaurantService: restaurantService,
	}, nil
}

// HandleCreate lưu một góp ý mới của caller.
func (h *FeedbackHandler) HandleCreate(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input feedbackdto.FeedbackCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.feedbackService.Create(c.Context(), user.UserID, input.Restaurant, input.Type, input.Feedback, input.Email); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// requireStaff tra nhà hàng từ path param :id và kiểm tra caller là staff.
func (h *FeedbackHandler) requireStaff(c fiber.Ctx) (string, error) {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return "", err
	}

	restaurant, err := h.restaurantService.FindByRestaurantID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.NewError(common.ErrCodeDatabaseQuery, "Restaurant not found.", common.StatusNotFound, nil)
		}
		return "", err
	}

	if !authsvc.RoleOf(user, &restaurant).Allows(authsvc.CapViewFeedback) {
		return "", common.ErrUnauthorized
	}
	return restaurant.RestaurantID, nil
}

// HandleList trả về mọi góp ý của một nhà hàng (staff trở lên).
func (h *FeedbackHandler) HandleList(c fiber.Ctx) error {
	restaurantID, err := h.requireStaff(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	entries, err := h.feedbackService.ListForRestaurant(c.Context(), restaurantID)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{"list": entries})
}

// HandleDelete xóa một góp ý (staff trở lên). Idempotent.
func (h *FeedbackHandler) HandleDelete(c fiber.Ctx) error {
	if _, err := h.requireStaff(c); err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.feedbackService.Delete(c.Context(), c.Params("fid")); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}
