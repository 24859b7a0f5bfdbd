package main

import (
	"context"
	"errors"

	authsvc "campus_commerce/internal/api/auth/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
)

// InitDefaultData nâng quyền admin cho tài khoản cấu hình sẵn khi chạy ở
// InitMode. Tài khoản phải đăng ký trước rồi mới chạy InitMode để nâng quyền.
func InitDefaultData() {
	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	if !cfg.InitMode {
		return
	}
	if cfg.AdminEmail == "" {
		log.Warn("INITMODE bật nhưng ADMIN_EMAIL trống, bỏ qua seed admin")
		return
	}

	userService, err := authsvc.NewUserService()
	if err != nil {
		log.Fatalf("Failed to create user service: %v", err)
	}

	ctx := context.Background()
	user, err := userService.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warnf("Admin seed: chưa có tài khoản với email %s", cfg.AdminEmail)
			return
		}
		log.Fatalf("Failed to look up admin account: %v", err)
	}

	if user.Admin {
		log.Infof("Admin seed: %s đã là admin", cfg.AdminEmail)
		return
	}

	if err := userService.PromoteAdmin(ctx, user.UserID); err != nil {
		log.Fatalf("Failed to promote admin account: %v", err)
	}
	log.Infof("Admin seed: đã nâng quyền admin cho %s", cfg.AdminEmail)
}
