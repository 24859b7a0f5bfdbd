package main

import (
	"context"

	"campus_commerce/config"
	"campus_commerce/internal/database"
	"campus_commerce/internal/global"
	"campus_commerce/internal/utility"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initFirebase()         // Khởi tạo Firebase
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.ColNames.Users = "auth_users"
	global.ColNames.Sessions = "auth_sessions"
	global.ColNames.Restaurants = "catalog_restaurants"
	global.ColNames.MenuItems = "catalog_menu_items"
	global.ColNames.Transactions = "ordering_transactions"
	global.ColNames.Feedback = "feedback_entries"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (đăng ký custom validators: no_xss, campus_localpart)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")
}

// initFirebase khởi tạo Firebase Admin SDK
func initFirebase() {
	cfg := global.ServerConfig
	if cfg.FirebaseProjectID == "" || cfg.FirebaseCredentialsPath == "" {
		logrus.Warn("Firebase config không đầy đủ, bỏ qua khởi tạo Firebase")
		return
	}

	if err := utility.InitFirebase(context.Background(), cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath); err != nil {
		logrus.Errorf("Failed to initialize Firebase: %v", err)
		return
	}
	logrus.Info("Firebase initialized successfully")
}
