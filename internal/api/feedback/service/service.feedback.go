// Package feedbacksvc - Nghiệp vụ góp ý của người dùng.
package feedbacksvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	basesvc "campus_commerce/internal/api/base/service"
	catalogmodels "campus_commerce/internal/api/catalog/models"
	models "campus_commerce/internal/api/feedback/models"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/utility"
)

// FeedbackService quản lý các bản ghi góp ý.
type FeedbackService struct {
	entries     basesvc.BaseServiceMongo[models.Feedback]
	restaurants basesvc.BaseServiceMongo[catalogmodels.Restaurant]
}

// NewFeedbackService tạo FeedbackService từ registry collections.
func NewFeedbackService() (*FeedbackService, error) {
	feedbackCol, exist := global.RegistryCollections.Get(global.ColNames.Feedback)
	if !exist {
		return nil, fmt.Errorf("failed to get feedback collection: %v", common.ErrNotFound)
	}
	restaurantCol, exist := global.RegistryCollections.Get(global.ColNames.Restaurants)
	if !exist {
		return nil, fmt.Errorf("failed to get restaurants collection: %v", common.ErrNotFound)
	}
	return NewFeedbackServiceWithStores(
		basesvc.NewBaseServiceMongo[models.Feedback](feedbackCol),
		basesvc.NewBaseServiceMongo[catalogmodels.Restaurant](restaurantCol),
	), nil
}

// NewFeedbackServiceWithStores tạo FeedbackService với stores chỉ định (dùng trong test).
func NewFeedbackServiceWithStores(
	entries basesvc.BaseServiceMongo[models.Feedback],
	restaurants basesvc.BaseServiceMongo[catalogmodels.Restaurant],
) *FeedbackService {
	return &FeedbackService{entries: entries, restaurants: restaurants}
}

// Create lưu một góp ý mới. Client tham chiếu nhà hàng bằng TÊN, bản ghi lưu
// lại id đã resolve.
func (s *FeedbackService) Create(ctx context.Context, userID string, restaurantName string, feedbackType string, message string, contact string) error {
	restaurant, err := s.restaurants.FindOne(ctx, bson.M{"name": restaurantName}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "Restaurant not found.", common.StatusNotFound, nil)
		}
		return err
	}

	_, err = s.entries.InsertOne(ctx, models.Feedback{
		EntryID:      utility.GenerateUniqueID(),
		UserID:       userID,
		FeedbackType: feedbackType,
		FeedbackID:   restaurant.RestaurantID,
		Message:      message,
		Contact:      contact,
	})
	return err
}

// ListForRestaurant trả về toàn bộ góp ý gắn với một nhà hàng.
func (s *FeedbackService) ListForRestaurant(ctx context.Context, restaurantID string) ([]models.Feedback, error) {
	return s.entries.Find(ctx, bson.M{"feedback_id": restaurantID}, nil)
}

// Delete xóa một góp ý theo entry id. Idempotent: id không tồn tại vẫn thành công.
func (s *FeedbackService) Delete(ctx context.Context, entryID string) error {
	err := s.entries.DeleteOne(ctx, bson.M{"id": entryID})
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}
