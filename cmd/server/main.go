package main

import (
	"fmt"

	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread() {
	app := InitFiberApp()

	cfg := global.ServerConfig
	log := logger.GetAppLogger()
	log.WithFields(map[string]interface{}{
		"address": cfg.Address,
	}).Info("Starting Fiber server")

	if err := app.Listen(cfg.Address); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry collections
	InitRegistry()

	// Khởi tạo dữ liệu mặc định
	InitDefaultData()

	// Chạy Fiber server trên main thread
	main_thread()
}
