// Package middleware chứa middleware resolve phiên làm việc từ cookie.
package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	basehdl "campus_commerce/internal/api/base/handler"
	models "campus_commerce/internal/api/auth/models"
	authsvc "campus_commerce/internal/api/auth/service"
	"campus_commerce/internal/common"
)

const (
	// SessionCookieName là tên cookie chứa bearer token của phiên.
	SessionCookieName = "session"

	// sessionCookieMaxAge là tuổi thọ cookie phía client (giây).
	// Phiên phía server hết hạn sớm hơn theo idle window.
	sessionCookieMaxAge = 7 * 24 * 60 * 60

	localsSessionKey = "session"
	localsUserKey    = "user"
	localsUserIDKey  = "user_id"
)

// SessionMiddleware resolve phiên từ cookie trên mọi request: token không
// khớp thì phiên ẩn danh mới được tạo và cookie được set lại. Phiên có user
// thì load luôn bản ghi User vào Locals cho handler phía sau dùng.
func SessionMiddleware(sessionService *authsvc.SessionService, userService *authsvc.UserService) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)

		session, err := sessionService.Resolve(c.Context(), token)
		if err != nil {
			return basehdl.RespondError(c, err)
		}

		// Set lại cookie kể cả khi token không đổi để gia hạn tuổi thọ
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookieName,
			Value:    session.SessionToken,
			MaxAge:   sessionCookieMaxAge,
			HTTPOnly: true,
			Path:     "/",
		})

		c.Locals(localsSessionKey, session)

		if !session.IsAnonymous() {
			user, err := userService.FindByUserID(c.Context(), session.UserID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					// Phiên trỏ tới user đã biến mất: lệch dữ liệu, không phải lỗi client
					return basehdl.RespondError(c, common.NewError(
						common.ErrCodeInconsistency,
						"Failed to find user.",
						common.StatusInternalServerError,
						"session "+session.SessionToken+" trỏ tới user không tồn tại",
					))
				}
				return basehdl.RespondError(c, err)
			}
			c.Locals(localsUserKey, &user)
			c.Locals(localsUserIDKey, user.UserID)
		}

		return c.Next()
	}
}

// SessionFromCtx lấy phiên đã resolve từ Locals.
func SessionFromCtx(c fiber.Ctx) (models.Session, bool) {
	session, ok := c.Locals(localsSessionKey).(models.Session)
	return session, ok
}

// UserFromCtx lấy user đã đăng nhập từ Locals, nil nếu phiên ẩn danh.
func UserFromCtx(c fiber.Ctx) *models.User {
	user, ok := c.Locals(localsUserKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// RequireUser trả về user đã đăng nhập hoặc ErrUnauthorized nếu phiên ẩn danh.
func RequireUser(c fiber.Ctx) (*models.User, error) {
	user := UserFromCtx(c)
	if user == nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}
