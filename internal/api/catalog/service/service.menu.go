// Package catalogsvc - service thực đơn và nhà hàng.
package catalogsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	catalogdto "campus_commerce/internal/api/catalog/dto"
	models "campus_commerce/internal/api/catalog/models"
	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
)

// MenuService đọc và kiểm tra thực đơn: shape menu theo role, tra món đơn lẻ,
// validate danh sách món cho giỏ hàng và cho checkout.
type MenuService struct {
	items basesvc.BaseServiceMongo[models.MenuItem]
}

// NewMenuService tạo MenuService từ registry collection.
func NewMenuService() (*MenuService, error) {
	col, exist := global.RegistryCollections.Get(global.ColNames.MenuItems)
	if !exist {
		return nil, fmt.Errorf("failed to get menu_items collection: %v", common.ErrNotFound)
	}
	return NewMenuServiceWithStore(basesvc.NewBaseServiceMongo[models.MenuItem](col)), nil
}

// NewMenuServiceWithStore tạo MenuService với store chỉ định (dùng trong test).
func NewMenuServiceWithStore(store basesvc.BaseServiceMongo[models.MenuItem]) *MenuService {
	return &MenuService{items: store}
}

// FindItemByID tìm món theo id nghiệp vụ.
func (s *MenuService) FindItemByID(ctx context.Context, itemID string) (models.MenuItem, error) {
	return s.items.FindOne(ctx, bson.M{"id": itemID}, nil)
}

func buildVariantViews(item *models.MenuItem) []catalogdto.VariantView {
	views := make([]catalogdto.VariantView, 0, len(item.Variants))
	for _, v := range item.Variants {
		views = append(views, catalogdto.VariantView{
			ID:       v.VariantID,
			Name:     v.Name,
			PriceUSD: v.PriceUSD,
		})
	}
	return views
}

// BuildMenu dựng cấu trúc thực đơn trả về client theo quyền của caller:
//   - staff thấy mọi category/món kèm cờ active
//   - user thường chỉ thấy category active, món active, và category rỗng
//     (sau khi lọc) bị bỏ
//
// Món được tham chiếu trong category mà không còn tồn tại bị bỏ qua thay vì
// làm hỏng cả menu (tham chiếu ngược không đáng tin, xem service ordering).
func (s *MenuService) BuildMenu(ctx context.Context, restaurant *models.Restaurant, canSeeInactive bool) ([]catalogdto.MenuCategoryView, error) {
	categories := make([]catalogdto.MenuCategoryView, 0, len(restaurant.MenuCategories))
	for _, category := range restaurant.MenuCategories {
		if !canSeeInactive && !category.Active {
			continue
		}

		view := catalogdto.MenuCategoryView{
			Name:  category.Name,
			Items: []catalogdto.MenuItemView{},
		}
		if canSeeInactive {
			active := category.Active
			view.Active = &active
		}

		for _, itemID := range category.Items {
			item, err := s.FindItemByID(ctx, itemID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					continue
				}
				return nil, err
			}
			if !canSeeInactive && !item.Active {
				continue
			}

			itemView := catalogdto.MenuItemView{
				ID:       item.ItemID,
				Name:     item.Name,
				Desc:     item.Desc,
				Variants: buildVariantViews(&item),
			}
			if canSeeInactive {
				active := item.Active
				itemView.Active = &active
			}
			view.Items = append(view.Items, itemView)
		}

		if len(view.Items) > 0 || canSeeInactive {
			categories = append(categories, view)
		}
	}
	return categories, nil
}

// FindItemView tra một món trong thực đơn của nhà hàng, áp cùng quy tắc
// hiển thị như BuildMenu. Món không thuộc category nào của nhà hàng, hoặc
// inactive với user thường, trả về not-found.
func (s *MenuService) FindItemView(ctx context.Context, restaurant *models.Restaurant, itemID string, canSeeInactive bool) (catalogdto.MenuItemView, error) {
	var zero catalogdto.MenuItemView

	for _, category := range restaurant.MenuCategories {
		if !canSeeInactive && !category.Active {
			continue
		}
		found := false
		for _, id := range category.Items {
			if id == itemID {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		item, err := s.FindItemByID(ctx, itemID)
		if err != nil {
			return zero, err
		}
		if !canSeeInactive && !item.Active {
			return zero, common.ErrNotFound
		}

		view := catalogdto.MenuItemView{
			ID:       item.ItemID,
			Name:     item.Name,
			Variants: buildVariantViews(&item),
		}
		if canSeeInactive {
			active := item.Active
			view.Active = &active
		}
		return view, nil
	}

	return zero, common.ErrNotFound
}

// ValidateOrderLines kiểm tra từng dòng món trước khi ghi giỏ hàng: món tồn
// tại, thuộc đúng nhà hàng, đang active; variant tồn tại trên món; số lượng
// trong [1, maxQty]. Sai một dòng là từ chối cả request, không ghi gì.
func (s *MenuService) ValidateOrderLines(ctx context.Context, restaurantID string, lines []catalogdto.OrderLineInput, maxQty int) error {
	for _, line := range lines {
		item, err := s.FindItemByID(ctx, line.ItemID)
		if err != nil || item.RestaurantID != restaurantID || !item.Active {
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			return common.NewError(common.ErrCodeDatabaseQuery, "Failed to find menu item on restaurant.", common.StatusNotFound, nil)
		}
		if item.FindVariant(line.VariantID) == nil {
			return common.NewError(common.ErrCodeDatabaseQuery, "Failed to find menu item variant.", common.StatusNotFound, nil)
		}
		if line.Quantity < 1 || line.Quantity > maxQty {
			return common.NewError(common.ErrCodeValidationInput, "Invalid quantity supplied.", common.StatusBadRequest, nil)
		}
	}
	return nil
}

// RevalidateOrderLines kiểm tra lại toàn bộ dòng món lúc checkout, độc lập
// với lần kiểm tra khi set giỏ: thực đơn có thể đã đổi. Chỉ cần món còn tồn
// tại và active, variant còn trên món; số lượng đã chốt khi set giỏ.
func (s *MenuService) RevalidateOrderLines(ctx context.Context, lines []catalogdto.OrderLineInput) error {
	for _, line := range lines {
		item, err := s.FindItemByID(ctx, line.ItemID)
		if err != nil || !item.Active {
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			return common.NewError(common.ErrCodeDatabaseQuery, "One or more items in cart do not currently exist.", common.StatusNotFound, nil)
		}
		if item.FindVariant(line.VariantID) == nil {
			return common.NewError(common.ErrCodeDatabaseQuery, "Failed to find menu item variant.", common.StatusNotFound, nil)
		}
	}
	return nil
}
