// Package router đăng ký toàn bộ route HTTP của server.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "campus_commerce/internal/api/auth/handler"
	authsvc "campus_commerce/internal/api/auth/service"
	basehdl "campus_commerce/internal/api/base/handler"
	cataloghdl "campus_commerce/internal/api/catalog/handler"
	feedbackhdl "campus_commerce/internal/api/feedback/handler"
	"campus_commerce/internal/api/middleware"
	orderinghdl "campus_commerce/internal/api/ordering/handler"
)

// Router quản lý việc định tuyến cho API.
type Router struct {
	app *fiber.App
}

// NewRouter tạo mới một instance của Router.
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// SetupRoutes khởi tạo handler và đăng ký mọi route. Middleware phiên chạy
// trước tất cả route: mọi request đều có session (tạo ẩn danh nếu cần) và
// user đã load sẵn trong Locals.
func (r *Router) SetupRoutes() error {
	sessionService, err := authsvc.NewSessionService()
	if err != nil {
		return fmt.Errorf("failed to create session service: %v", err)
	}
	userService, err := authsvc.NewUserService()
	if err != nil {
		return fmt.Errorf("failed to create user service: %v", err)
	}

	authHandler, err := authhdl.NewAuthHandler()
	if err != nil {
		return fmt.Errorf("failed to create auth handler: %v", err)
	}
	catalogHandler, err := cataloghdl.NewCatalogHandler()
	if err != nil {
		return fmt.Errorf("failed to create catalog handler: %v", err)
	}
	orderingHandler, err := orderinghdl.NewOrderingHandler()
	if err != nil {
		return fmt.Errorf("failed to create ordering handler: %v", err)
	}
	feedbackHandler, err := feedbackhdl.NewFeedbackHandler()
	if err != nil {
		return fmt.Errorf("failed to create feedback handler: %v", err)
	}

	app := r.app
	app.Use(middleware.SessionMiddleware(sessionService, userService))

	// Xác thực và phiên
	app.Post("/signin", basehdl.SafeHandler(authHandler.HandleSignin))
	app.Post("/signup", basehdl.SafeHandler(authHandler.HandleSignup))
	app.Post("/signout", basehdl.SafeHandler(authHandler.HandleSignout))
	app.Get("/signedin", basehdl.SafeHandler(authHandler.HandleSignedIn))
	app.Get("/session", basehdl.SafeHandler(authHandler.HandleSessionInfo))
	app.Get("/session/admin", basehdl.SafeHandler(authHandler.HandleSessionAdmin))
	app.Get("/session/restaurant", basehdl.SafeHandler(authHandler.HandleSessionRestaurant))
	app.Get("/user/:id", basehdl.SafeHandler(authHandler.HandleGetUser))
	app.Put("/user/update-name", basehdl.SafeHandler(authHandler.HandleUpdateName))

	// Nhà hàng và thực đơn
	app.Get("/restaurant", basehdl.SafeHandler(catalogHandler.HandleListRestaurants))
	app.Post("/restaurant", basehdl.SafeHandler(catalogHandler.HandleCreateRestaurant))
	app.Get("/restaurant/:id", basehdl.SafeHandler(catalogHandler.HandleGetRestaurant))
	app.Put("/restaurant/:id", basehdl.SafeHandler(catalogHandler.HandleUpdateRestaurant))
	app.Delete("/restaurant/:id", basehdl.SafeHandler(catalogHandler.HandleDeleteRestaurant))
	app.Get("/restaurant/:id/image", basehdl.SafeHandler(catalogHandler.HandleGetImage))
	app.Get("/restaurant/:id/item/:itemid", basehdl.SafeHandler(catalogHandler.HandleGetItem))
	app.Put("/restaurant/:id/item/:itemid", basehdl.SafeHandler(catalogHandler.HandleUpdateItem))
	app.Post("/restaurant/:id/item", basehdl.SafeHandler(catalogHandler.HandleCreateItem))
	app.Post("/restaurant/:id/category", basehdl.SafeHandler(catalogHandler.HandleCreateCategory))
	app.Put("/restaurant/:id/category/:catindex", basehdl.SafeHandler(catalogHandler.HandleUpdateCategory))
	app.Delete("/restaurant/:id/category/:catindex", basehdl.SafeHandler(catalogHandler.HandleDeleteCategory))

	// Rosters
	app.Get("/restaurant/:id/workers", basehdl.SafeHandler(catalogHandler.HandleListWorkers))
	app.Post("/restaurant/:id/workers", basehdl.SafeHandler(catalogHandler.HandleAddWorker))
	app.Delete("/restaurant/:id/workers/:workerid", basehdl.SafeHandler(catalogHandler.HandleRemoveWorker))
	app.Get("/restaurant/:id/owners", basehdl.SafeHandler(catalogHandler.HandleListOwners))
	app.Post("/restaurant/:id/owners", basehdl.SafeHandler(catalogHandler.HandleAddOwner))
	app.Delete("/restaurant/:id/owners/:ownerid", basehdl.SafeHandler(catalogHandler.HandleRemoveOwner))

	// Giỏ hàng và đơn hàng
	app.Post("/cart", basehdl.SafeHandler(orderingHandler.HandleSetCart))
	app.Get("/cart", basehdl.SafeHandler(orderingHandler.HandleGetCart))
	app.Put("/cart", basehdl.SafeHandler(orderingHandler.HandleUpdateCart))
	app.Post("/order", basehdl.SafeHandler(orderingHandler.HandleCheckout))
	app.Get("/order", basehdl.SafeHandler(orderingHandler.HandleListOrders))
	app.Get("/order/:id", basehdl.SafeHandler(orderingHandler.HandleGetOrder))
	app.Put("/order/:id", basehdl.SafeHandler(orderingHandler.HandleToggleWorker))
	app.Delete("/order/:id", basehdl.SafeHandler(orderingHandler.HandleFinalize))
	app.Get("/restaurant/:id/order", basehdl.SafeHandler(orderingHandler.HandleListRestaurantOrders))

	// Góp ý
	app.Post("/feedback", basehdl.SafeHandler(feedbackHandler.HandleCreate))
	app.Get("/restaurant/:id/feedback", basehdl.SafeHandler(feedbackHandler.HandleList))
	app.Delete("/restaurant/:id/feedback/:fid", basehdl.SafeHandler(feedbackHandler.HandleDelete))

	return nil
}
