package catalogsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	authmodels "campus_commerce/internal/api/auth/models"
	catalogdto "campus_commerce/internal/api/catalog/dto"
	models "campus_commerce/internal/api/catalog/models"
	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
	"campus_commerce/internal/utility"
)

// RestaurantService quản lý nhà hàng: CRUD, category thực đơn và roster
// owner/worker. Roster là set: add khi đã có và remove khi không có đều là
// no-op thành công, và cả hai phía (set trên nhà hàng + owner_of/worker_of
// trên user) cùng được cập nhật.
type RestaurantService struct {
	restaurants basesvc.BaseServiceMongo[models.Restaurant]
	users       basesvc.BaseServiceMongo[authmodels.User]
	items       basesvc.BaseServiceMongo[models.MenuItem]
}

// NewRestaurantService tạo RestaurantService từ registry collections.
func NewRestaurantService() (*RestaurantService, error) {
	restaurantCol, exist := global.RegistryCollections.Get(global.ColNames.Restaurants)
	if !exist {
		return nil, fmt.Errorf("failed to get restaurants collection: %v", common.ErrNotFound)
	}
	userCol, exist := global.RegistryCollections.Get(global.ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	itemCol, exist := global.RegistryCollections.Get(global.ColNames.MenuItems)
	if !exist {
		return nil, fmt.Errorf("failed to get menu_items collection: %v", common.ErrNotFound)
	}
	return NewRestaurantServiceWithStores(
		basesvc.NewBaseServiceMongo[models.Restaurant](restaurantCol),
		basesvc.NewBaseServiceMongo[authmodels.User](userCol),
		basesvc.NewBaseServiceMongo[models.MenuItem](itemCol),
	), nil
}

// NewRestaurantServiceWithStores tạo RestaurantService với stores chỉ định
// (dùng trong test).
func NewRestaurantServiceWithStores(
	restaurants basesvc.BaseServiceMongo[models.Restaurant],
	users basesvc.BaseServiceMongo[authmodels.User],
	items basesvc.BaseServiceMongo[models.MenuItem],
) *RestaurantService {
	return &RestaurantService{
		restaurants: restaurants,
		users:       users,
		items:       items,
	}
}

// FindByRestaurantID tìm nhà hàng theo id nghiệp vụ.
func (s *RestaurantService) FindByRestaurantID(ctx context.Context, restaurantID string) (models.Restaurant, error) {
	return s.restaurants.FindOne(ctx, bson.M{"id": restaurantID}, nil)
}

// List trả về toàn bộ nhà hàng.
func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.Find(ctx, bson.M{}, nil)
}

// Create tạo nhà hàng mới với các danh sách rỗng.
func (s *RestaurantService) Create(ctx context.Context, name, image string) (models.Restaurant, error) {
	restaurant := models.Restaurant{
		RestaurantID:        utility.GenerateUniqueID(),
		Name:                name,
		Image:               image,
		Owners:              []string{},
		Workers:             []string{},
		MenuCategories:      []models.MenuCategory{},
		CurrentTransactions: []string{},
		PastTransactions:    []string{},
	}
	created, err := s.restaurants.InsertOne(ctx, restaurant)
	if err != nil {
		return models.Restaurant{}, err
	}
	logger.GetAuditLogger().WithFields(map[string]interface{}{
		"restaurant_id": created.RestaurantID,
		"name":          created.Name,
	}).Info("Nhà hàng mới được tạo")
	return created, nil
}

// Delete xóa nhà hàng. Nhà hàng không tồn tại vẫn trả thành công (idempotent).
func (s *RestaurantService) Delete(ctx context.Context, restaurantID string) error {
	err := s.restaurants.DeleteOne(ctx, bson.M{"id": restaurantID})
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// UpdateInfo đổi tên / ảnh nhà hàng, field nil giữ nguyên.
func (s *RestaurantService) UpdateInfo(ctx context.Context, restaurantID string, input *catalogdto.RestaurantUpdateInput) error {
	set := map[string]interface{}{}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Image != nil {
		set["image"] = *input.Image
	}
	if len(set) == 0 {
		return nil
	}
	_, err := s.restaurants.UpdateOne(ctx, bson.M{"id": restaurantID}, &basesvc.UpdateData{Set: set}, nil)
	return err
}

// saveCategories ghi lại toàn bộ dãy category của nhà hàng.
func (s *RestaurantService) saveCategories(ctx context.Context, restaurantID string, categories []models.MenuCategory) error {
	_, err := s.restaurants.UpdateOne(ctx,
		bson.M{"id": restaurantID},
		&basesvc.UpdateData{Set: map[string]interface{}{"menu_categories": categories}},
		nil,
	)
	return err
}

// AddCategory thêm category mới vào cuối thực đơn.
func (s *RestaurantService) AddCategory(ctx context.Context, restaurantID string, input *catalogdto.CategoryCreateInput) error {
	restaurant, err := s.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return err
	}
	categories := append(restaurant.MenuCategories, models.MenuCategory{
		Name:   input.Name,
		Active: input.Active,
		Items:  []string{},
	})
	return s.saveCategories(ctx, restaurantID, categories)
}

// errInvalidCategoryIndex là lỗi chung cho chỉ số category ngoài biên.
func errInvalidCategoryIndex() error {
	return common.NewError(common.ErrCodeValidationInput, "Invalid category index supplied.", common.StatusBadRequest, nil)
}

// UpdateCategory cập nhật category theo chỉ số: tên, cờ active, danh sách món
// (mọi món phải thuộc nhà hàng này), và tùy chọn đổi chỗ với category liền
// kề. Swap dùng thao tác có kiểm tra biên; chỉ số ở biên thì yêu cầu di
// chuyển bị bỏ qua chứ không lỗi.
func (s *RestaurantService) UpdateCategory(ctx context.Context, restaurantID string, index int, input *catalogdto.CategoryUpdateInput) error {
	restaurant, err := s.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(restaurant.MenuCategories) {
		return errInvalidCategoryIndex()
	}

	for _, itemID := range input.Items {
		item, err := s.items.FindOne(ctx, bson.M{"id": itemID}, nil)
		if err != nil || item.RestaurantID != restaurantID {
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			return common.NewError(common.ErrCodeValidationInput,
				`Expected array of string item IDs belonging to same restaurant for "items".`,
				common.StatusBadRequest, nil)
		}
	}

	categories := restaurant.MenuCategories
	categories[index].Name = input.Name
	categories[index].Active = input.Active
	categories[index].Items = input.Items

	if input.MoveUp && !input.MoveDown {
		utility.SwapAt(categories, index-1, index)
	}
	if input.MoveDown && !input.MoveUp {
		utility.SwapAt(categories, index, index+1)
	}

	return s.saveCategories(ctx, restaurantID, categories)
}

// DeleteCategory xóa category theo chỉ số (có kiểm tra biên). Các món trong
// category vẫn tồn tại trong collection, chỉ mất tham chiếu khỏi thực đơn.
func (s *RestaurantService) DeleteCategory(ctx context.Context, restaurantID string, index int) error {
	restaurant, err := s.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return err
	}
	categories, ok := utility.RemoveAt(restaurant.MenuCategories, index)
	if !ok {
		return errInvalidCategoryIndex()
	}
	return s.saveCategories(ctx, restaurantID, categories)
}

// CreateItem tạo món mới và gắn vào category theo chỉ số. Mỗi variant nhận
// một id mới; phải có ít nhất một variant.
func (s *RestaurantService) CreateItem(ctx context.Context, restaurantID string, input *catalogdto.ItemCreateInput) (models.MenuItem, error) {
	var zero models.MenuItem

	restaurant, err := s.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return zero, err
	}
	if input.CategoryIndex < 0 || input.CategoryIndex >= len(restaurant.MenuCategories) {
		return zero, errInvalidCategoryIndex()
	}

	variants := make([]models.Variant, 0, len(input.Variants))
	for _, v := range input.Variants {
		variants = append(variants, models.Variant{
			VariantID: utility.GenerateUniqueID(),
			Name:      v.Name,
			PriceUSD:  v.PriceUSD,
		})
	}

	item := models.MenuItem{
		ItemID:       utility.GenerateUniqueID(),
		Name:         input.Name,
		Desc:         input.Desc,
		Active:       input.Active,
		RestaurantID: restaurantID,
		Variants:     variants,
	}
	created, err := s.items.InsertOne(ctx, item)
	if err != nil {
		return zero, err
	}

	categories := restaurant.MenuCategories
	categories[input.CategoryIndex].Items = append(categories[input.CategoryIndex].Items, created.ItemID)
	if err := s.saveCategories(ctx, restaurantID, categories); err != nil {
		return zero, err
	}

	return created, nil
}

// UpdateItem cập nhật món: cờ active cần worker trở lên, các field còn lại
// cần owner trở lên (canEditFields). Variants mới được nối thêm vào danh
// sách sẵn có, không thay thế.
func (s *RestaurantService) UpdateItem(ctx context.Context, restaurantID, itemID string, input *catalogdto.ItemUpdateInput, canEditFields bool) error {
	item, err := s.items.FindOne(ctx, bson.M{"id": itemID}, nil)
	if err != nil || item.RestaurantID != restaurantID {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return common.ErrNotFound
	}

	if !canEditFields && (input.Name != nil || input.Desc != nil || len(input.Variants) > 0) {
		return common.ErrUnauthorized
	}

	set := map[string]interface{}{}
	if input.Active != nil {
		set["active"] = *input.Active
	}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Desc != nil {
		set["desc"] = *input.Desc
	}
	if len(input.Variants) > 0 {
		variants := item.Variants
		for _, v := range input.Variants {
			variants = append(variants, models.Variant{
				VariantID: utility.GenerateUniqueID(),
				Name:      v.Name,
				PriceUSD:  v.PriceUSD,
			})
		}
		set["variants"] = variants
	}
	if len(set) == 0 {
		return nil
	}

	_, err = s.items.UpdateOne(ctx, bson.M{"id": itemID}, &basesvc.UpdateData{Set: set}, nil)
	return err
}

// rosterField xác định cặp field cần cập nhật cho một loại roster.
type rosterField struct {
	restaurantField string // field set trên restaurant ("workers" / "owners")
	userField       string // field set trên user ("worker_of" / "owner_of")
}

var (
	workerRoster = rosterField{restaurantField: "workers", userField: "worker_of"}
	ownerRoster  = rosterField{restaurantField: "owners", userField: "owner_of"}
)

// addToRoster thêm user (tra theo email) vào roster của nhà hàng và cập nhật
// chiều ngược lại trên user. Đã có sẵn thì không ghi gì.
func (s *RestaurantService) addToRoster(ctx context.Context, restaurantID, userEmail string, field rosterField) error {
	restaurant, err := s.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return err
	}

	user, err := s.users.FindOne(ctx, bson.M{"email": userEmail}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "User not found.", common.StatusNotFound, nil)
		}
		return err
	}

	var restaurantSet, userSet []string
	if field == workerRoster {
		restaurantSet, userSet = restaurant.Workers, user.WorkerOf
	} else {
		restaurantSet, userSet = restaurant.Owners, user.OwnerOf
	}

	restaurantSet, added := utility.AppendUnique(restaurantSet, user.UserID)
	if !added {
		return nil
	}
	userSet, _ = utility.AppendUnique(userSet, restaurantID)

	if _, err := s.restaurants.UpdateOne(ctx, bson.M{"id": restaurantID},
		&basesvc.UpdateData{Set: map[string]interface{}{field.restaurantField: restaurantSet}}, nil); err != nil {
		return err
	}
	_, err = s.users.UpdateOne(ctx, bson.M{"id": user.UserID},
		&basesvc.UpdateData{Set: map[string]interface{}{field.userField: userSet}}, nil)
	return err
}

// removeFromRoster gỡ user khỏi roster của nhà hàng và cập nhật chiều ngược
// lại. Không có sẵn thì không ghi gì.
func (s *RestaurantService) removeFromRoster(ctx context.Context, restaurantID, userID string, field rosterField) error {
	restaurant, err := s.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return err
	}

	user, err := s.users.FindOne(ctx, bson.M{"id": userID}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "User not found.", common.StatusNotFound, nil)
		}
		return err
	}

	var restaurantSet, userSet []string
	if field == workerRoster {
		restaurantSet, userSet = restaurant.Workers, user.WorkerOf
	} else {
		restaurantSet, userSet = restaurant.Owners, user.OwnerOf
	}

	restaurantSet, removed := utility.Remove(restaurantSet, userID)
	if !removed {
		return nil
	}
	userSet, _ = utility.Remove(userSet, restaurantID)

	if _, err := s.restaurants.UpdateOne(ctx, bson.M{"id": restaurantID},
		&basesvc.UpdateData{Set: map[string]interface{}{field.restaurantField: restaurantSet}}, nil); err != nil {
		return err
	}
	_, err = s.users.UpdateOne(ctx, bson.M{"id": userID},
		&basesvc.UpdateData{Set: map[string]interface{}{field.userField: userSet}}, nil)
	return err
}

// AddWorkerByEmail thêm worker vào nhà hàng theo email.
func (s *RestaurantService) AddWorkerByEmail(ctx context.Context, restaurantID, userEmail string) error {
	return s.addToRoster(ctx, restaurantID, userEmail, workerRoster)
}

// AddOwnerByEmail thêm owner vào nhà hàng theo email.
func (s *RestaurantService) AddOwnerByEmail(ctx context.Context, restaurantID, userEmail string) error {
	return s.addToRoster(ctx, restaurantID, userEmail, ownerRoster)
}

// RemoveWorker gỡ worker khỏi nhà hàng theo user id.
func (s *RestaurantService) RemoveWorker(ctx context.Context, restaurantID, userID string) error {
	return s.removeFromRoster(ctx, restaurantID, userID, workerRoster)
}

// RemoveOwner gỡ owner khỏi nhà hàng theo user id.
func (s *RestaurantService) RemoveOwner(ctx context.Context, restaurantID, userID string) error {
	return s.removeFromRoster(ctx, restaurantID, userID, ownerRoster)
}
