package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"campus_commerce/internal/api/router"
	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
)

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Campus Commerce API",
		ServerHeader:  "Campus Commerce API",
		StrictRouting: false,
		CaseSensitive: true,

		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// Lỗi routing (method không hỗ trợ, path không tồn tại) cũng phải
		// trả về envelope {success, error}
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error."
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				if code == fiber.StatusNotFound {
					message = "Not found."
				}
			}
			logger.GetAppLogger().WithFields(map[string]interface{}{
				"path":   c.Path(),
				"status": code,
			}).Error(err.Error())
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   message,
			})
		},
	})

	// 1. Request ID để trace request qua log
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
	}))

	// 2. CORS - đặt trước các middleware khác để xử lý preflight
	corsOrigins := global.ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		allowOrigins = []string{"*"}
	} else {
		allowOrigins = strings.Split(corsOrigins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: global.ServerConfig.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Rate limiting theo IP
	if global.ServerConfig.RateLimit_Enabled && global.ServerConfig.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        global.ServerConfig.RateLimit_Max,
			Expiration: time.Duration(global.ServerConfig.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"success": false,
					"error":   "Too many requests.",
				})
			},
			Next: func(c fiber.Ctx) bool {
				return c.Method() == "OPTIONS"
			},
		}))
		logger.GetAppLogger().Infof("Rate limiting enabled: %d requests per %d seconds",
			global.ServerConfig.RateLimit_Max, global.ServerConfig.RateLimit_Window)
	} else {
		logger.GetAppLogger().Info("Rate limiting disabled")
	}

	// 4. Recover để bắt panic ngoài tầm SafeHandler
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Đăng ký routes
	r := router.NewRouter(app)
	if err := r.SetupRoutes(); err != nil {
		logger.GetAppLogger().Fatalf("Failed to setup routes: %v", err)
	}

	return app
}
