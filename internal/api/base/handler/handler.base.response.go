// package basehdl chứa các helper dùng chung cho tầng handler:
// chuẩn hóa response, parse body, bắt panic.
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// RespondSuccess trả về response thành công theo format thống nhất:
// {"success": true, ...payload}. Payload được merge vào top-level
// để client đọc trực tiếp các field như cart, transaction, menu.
func RespondSuccess(c fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return JSONResponse(c, common.StatusOK, body)
}

// RespondError trả về response lỗi theo format thống nhất:
// {"success": false, "error": "..."}.
// Chỉ Message của *common.Error được trả cho client; Details chỉ để log.
func RespondError(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		if customErr.Details != nil {
			logger.GetAppLogger().WithFields(map[string]interface{}{
				"code":    customErr.Code.Code,
				"details": fmt.Sprintf("%v", customErr.Details),
				"path":    c.Path(),
			}).Error(customErr.Message)
		}
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"success": false,
			"error":   customErr.Message,
		})
	}

	// Lỗi không phải custom error: không lộ chi tiết nội bộ cho client
	logger.GetAppLogger().WithField("path", c.Path()).Error(err.Error())
	return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"success": false,
		"error":   "Internal server error.",
	})
}

// SafeHandler bọc các handler với recover để bắt panic và xử lý lỗi an toàn.
// Đảm bảo server luôn trả về response cho client, kể cả khi có panic xảy ra.
func SafeHandler(handler fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
				RespondError(c, common.NewError(
					common.ErrCodeInternalServer,
					"Internal server error.",
					common.StatusInternalServerError,
					fmt.Sprintf("panic: %v", r),
				))
			}
		}()
		return handler(c)
	}
}

// ParseRequestBody parse JSON body vào dst.
// Body không phải JSON hợp lệ trả về ErrInvalidInput.
func ParseRequestBody(c fiber.Ctx, dst interface{}) error {
	if err := c.Bind().Body(dst); err != nil {
		return common.ErrInvalidInput
	}
	return nil
}

// ValidateInput chạy validator trên struct input đã parse.
func ValidateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationInput,
			"Invalid request.",
			common.StatusBadRequest,
			err.Error(),
		)
	}
	return nil
}
