// Package authhdl chứa các handler xử lý request HTTP cho xác thực và phiên làm việc
package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "campus_commerce/internal/api/base/handler"
	authdto "campus_commerce/internal/api/auth/dto"
	authsvc "campus_commerce/internal/api/auth/service"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	"campus_commerce/internal/api/middleware"
	"campus_commerce/internal/common"
)

// AuthHandler xử lý signin/signup/signout và các endpoint tra cứu phiên.
type AuthHandler struct {
	userService       *authsvc.UserService
	sessionService    *authsvc.SessionService
	restaurantService *catalogsvc.RestaurantService
}

// NewAuthHandler tạo một instance mới của AuthHandler.
func NewAuthHandler() (*AuthHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	sessionService, err := authsvc.NewSessionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %v", err)
	}
	restaurantService, err := catalogsvc.NewRestaurantService()
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant service: %v", err)
	}
	return &AuthHandler{
		userService:       userService,
		sessionService:    sessionService,
		restaurantService: restaurantService,
	}, nil
}

func errAlreadySignedIn() error {
	return common.NewError(common.ErrCodeValidationInput, "Already signed in.", common.StatusBadRequest, nil)
}

// HandleSignin xác thực id token Firebase và gắn phiên hiện tại vào tài khoản.
func (h *AuthHandler) HandleSignin(c fiber.Ctx) error {
	session, _ := middleware.SessionFromCtx(c)
	if !session.IsAnonymous() {
		return basehdl.RespondError(c, errAlreadySignedIn())
	}

	var input authdto.SigninInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	user, err := h.userService.Signin(c.Context(), input.IDToken)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.sessionService.Attach(c.Context(), session.SessionToken, user.UserID); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleSignup tạo tài khoản mới rồi gắn phiên hiện tại vào tài khoản đó.
func (h *AuthHandler) HandleSignup(c fiber.Ctx) error {
	session, _ := middleware.SessionFromCtx(c)
	if !session.IsAnonymous() {
		return basehdl.RespondError(c, errAlreadySignedIn())
	}

	var input authdto.SignupInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	user, err := h.userService.Signup(c.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	if err := h.sessionService.Attach(c.Context(), session.SessionToken, user.UserID); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleSignout tách phiên khỏi tài khoản. Phiên ẩn danh signout vẫn thành công.
func (h *AuthHandler) HandleSignout(c fiber.Ctx) error {
	session, _ := middleware.SessionFromCtx(c)
	if err := h.sessionService.Detach(c.Context(), session.SessionToken); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}

// HandleSignedIn trả về trạng thái đăng nhập của phiên hiện tại.
func (h *AuthHandler) HandleSignedIn(c fiber.Ctx) error {
	session, _ := middleware.SessionFromCtx(c)
	return basehdl.RespondSuccess(c, fiber.Map{"signed_in": !session.IsAnonymous()})
}

// HandleSessionInfo trả về id và cờ normal_user của tài khoản đang đăng nhập.
func (h *AuthHandler) HandleSessionInfo(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	normalUser := !user.Admin && len(user.WorkerOf) == 0 && len(user.OwnerOf) == 0
	return basehdl.RespondSuccess(c, fiber.Map{
		"id":          user.UserID,
		"normal_user": normalUser,
	})
}

// HandleSessionAdmin trả về cờ admin của tài khoản đang đăng nhập.
func (h *AuthHandler) HandleSessionAdmin(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{"admin": user.Admin})
}

// HandleSessionRestaurant trả về vai trò của tài khoản đối với một nhà hàng
// (query param "id"). Client chỉ phân biệt user/worker/owner nên admin được
// báo là owner.
func (h *AuthHandler) HandleSessionRestaurant(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	restaurantID := c.Query("id")
	restaurant, err := h.restaurantService.FindByRestaurantID(c.Context(), restaurantID)
	if err != nil {
		return basehdl.RespondError(c, common.NewError(common.ErrCodeDatabaseQuery, "Restaurant not found.", common.StatusNotFound, nil))
	}

	role := authsvc.RoleOf(user, &restaurant)
	status := "user"
	switch role {
	case authsvc.RoleWorker:
		status = "worker"
	case authsvc.RoleOwner, authsvc.RoleAdmin:
		status = "owner"
	}
	return basehdl.RespondSuccess(c, fiber.Map{"status": status})
}

// HandleGetUser trả về tên và email của một người dùng khác. Người dùng
// thường không thấy người dùng thường khác; trường hợp đó trả về cùng 404
// với user không tồn tại.
func (h *AuthHandler) HandleGetUser(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	target, err := h.userService.GetVisible(c.Context(), user, c.Params("id"))
	if err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, fiber.Map{
		"name":  target.Name,
		"email": target.Email,
	})
}

// HandleUpdateName đổi tên hiển thị của tài khoản đang đăng nhập.
func (h *AuthHandler) HandleUpdateName(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return basehdl.RespondError(c, err)
	}

	var input authdto.UpdateNameInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.RespondError(c, err)
	}
	if err := basehdl.ValidateInput(&input); err != nil {
		return basehdl.RespondError(c, err)
	}

	if _, err := h.userService.UpdateName(c.Context(), user.UserID, input.Name); err != nil {
		return basehdl.RespondError(c, err)
	}
	return basehdl.RespondSuccess(c, nil)
}
