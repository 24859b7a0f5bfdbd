package database

import (
	"context"
	"time"

	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes tạo các index cần thiết cho các collection nghiệp vụ.
// Idempotent: Mongo bỏ qua index đã tồn tại với cùng spec.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		global.ColNames.Users: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "auth", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		global.ColNames.Sessions: {
			// Token phiên phải định danh duy nhất một phiên còn sống
			{Keys: bson.D{{Key: "session_token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "time_last_used", Value: 1}}},
		},
		global.ColNames.Restaurants: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		global.ColNames.MenuItems: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "restaurant", Value: 1}}},
		},
		global.ColNames.Transactions: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "restaurant", Value: 1}}},
		},
		global.ColNames.Feedback: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "feedback_id", Value: 1}}},
		},
	}

	for colName, models := range specs {
		collection, exists := global.RegistryCollections.Get(colName)
		if !exists {
			continue
		}
		if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
			logger.GetAppLogger().WithError(err).Errorf("Failed to create indexes for %s", colName)
			return err
		}
	}

	logger.GetAppLogger().Info("Ensured database indexes")
	return nil
}
