package main

import (
	"context"

	"campus_commerce/config"
	"campus_commerce/internal/database"
	"campus_commerce/internal/global"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func InitRegistry() {
	// Khởi tạo registry và đăng ký các collections
	if err := InitCollections(global.MongoDB_Session, global.ServerConfig); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")

	// Tạo index sau khi mọi collection đã nằm trong registry
	if err := database.EnsureIndexes(context.Background()); err != nil {
		logrus.Fatalf("Failed to ensure indexes: %v", err)
	}
}

// InitCollections khởi tạo và đăng ký các collections MongoDB
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	colNames := []string{
		global.ColNames.Users,
		global.ColNames.Sessions,
		global.ColNames.Restaurants,
		global.ColNames.MenuItems,
		global.ColNames.Transactions,
		global.ColNames.Feedback,
	}

	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}
