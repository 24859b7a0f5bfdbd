// Package orderingsvc - giỏ hàng và vòng đời đơn hàng.
package orderingsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	authmodels "campus_commerce/internal/api/auth/models"
	catalogdto "campus_commerce/internal/api/catalog/dto"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	models "campus_commerce/internal/api/ordering/models"
	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/utility"
)

// errCartNotFoundForRestaurant: không có giỏ sống cho nhà hàng được hỏi.
func errCartNotFoundForRestaurant() error {
	return common.NewError(common.ErrCodeDatabaseQuery, "Cart not found for given restaurant.", common.StatusNotFound, nil)
}

// errCartNotFoundByID: id không trỏ tới giỏ sống thuộc về caller.
func errCartNotFoundByID() error {
	return common.NewError(common.ErrCodeDatabaseQuery, "Cart not found with given ID.", common.StatusNotFound, nil)
}

// CartService giữ bất biến "mỗi cặp (user, nhà hàng) có tối đa một giỏ sống".
// Ghi giỏ là thay thế chứ không sửa tại chỗ: transaction mới được tạo với
// đúng danh sách client vừa gửi, transaction cũ bị xóa, nhờ đó race giữa hai
// lần set đồng thời co về một lần thay thế trọn vẹn.
type CartService struct {
	transactions basesvc.BaseServiceMongo[models.Transaction]
	users        basesvc.BaseServiceMongo[authmodels.User]
	menu         *catalogsvc.MenuService

	maxQuantity int
}

// NewCartService tạo CartService từ registry collections và config.
func NewCartService() (*CartService, error) {
	txnCol, exist := global.RegistryCollections.Get(global.ColNames.Transactions)
	if !exist {
		return nil, fmt.Errorf("failed to get transactions collection: %v", common.ErrNotFound)
	}
	userCol, exist := global.RegistryCollections.Get(global.ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	menu, err := catalogsvc.NewMenuService()
	if err != nil {
		return nil, err
	}
	maxQty := 50
	if global.ServerConfig != nil && global.ServerConfig.CartQuantityMax > 0 {
		maxQty = global.ServerConfig.CartQuantityMax
	}
	return NewCartServiceWithStores(
		basesvc.NewBaseServiceMongo[models.Transaction](txnCol),
		basesvc.NewBaseServiceMongo[authmodels.User](userCol),
		menu,
		maxQty,
	), nil
}

// NewCartServiceWithStores tạo CartService với stores chỉ định (dùng trong test).
func NewCartServiceWithStores(
	transactions basesvc.BaseServiceMongo[models.Transaction],
	users basesvc.BaseServiceMongo[authmodels.User],
	menu *catalogsvc.MenuService,
	maxQuantity int,
) *CartService {
	return &CartService{
		transactions: transactions,
		users:        users,
		menu:         menu,
		maxQuantity:  maxQuantity,
	}
}

// FindTransactionByID tìm transaction theo id nghiệp vụ.
func (s *CartService) FindTransactionByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	return s.transactions.FindOne(ctx, bson.M{"id": transactionID}, nil)
}

// findLiveCart quét danh sách cart của user tìm giỏ sống cho nhà hàng.
// Từng id được đọc lại từ store và kiểm tra flag thật, không tin danh sách:
// id trỏ tới transaction đã mất hoặc không còn in_cart bị bỏ qua.
// Trả về transaction và vị trí của nó trong user.Cart, hoặc index -1.
func (s *CartService) findLiveCart(ctx context.Context, user *authmodels.User, restaurantID string) (models.Transaction, int, error) {
	var zero models.Transaction
	for i, transactionID := range user.Cart {
		transaction, err := s.FindTransactionByID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return zero, -1, err
		}
		if !transaction.InCart {
			continue
		}
		if transaction.RestaurantID != restaurantID {
			continue
		}
		return transaction, i, nil
	}
	return zero, -1, nil
}

// toTransactionItems chuyển các dòng input đã validate sang dạng lưu trữ.
func toTransactionItems(lines []catalogdto.OrderLineInput) []models.TransactionItem {
	items := make([]models.TransactionItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.TransactionItem{
			ItemID:    line.ItemID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// linesFromItems chuyển chiều ngược lại, dùng khi re-validate lúc checkout.
func linesFromItems(items []models.TransactionItem) []catalogdto.OrderLineInput {
	lines := make([]catalogdto.OrderLineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, catalogdto.OrderLineInput{
			ItemID:    item.ItemID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// SetCart tạo hoặc thay thế giỏ sống của user cho một nhà hàng. Mọi dòng món
// phải qua validate trước khi có bất kỳ ghi nào. Nếu đã có giỏ sống cho nhà
// hàng này, bản ghi cũ bị xóa khỏi store và id cũ bị gỡ khỏi user.Cart; id
// của giỏ mới luôn được append. Sau khi thành công user.Cart chứa đúng một
// giỏ sống cho nhà hàng đó.
func (s *CartService) SetCart(ctx context.Context, user *authmodels.User, restaurantID string, lines []catalogdto.OrderLineInput) (models.Transaction, error) {
	var zero models.Transaction

	if err := s.menu.ValidateOrderLines(ctx, restaurantID, lines, s.maxQuantity); err != nil {
		return zero, err
	}

	_, existingIndex, err := s.findLiveCart(ctx, user, restaurantID)
	if err != nil {
		return zero, err
	}

	newTransaction := models.Transaction{
		TransactionID: utility.GenerateUniqueID(),
		Items:         toTransactionItems(lines),
		InCart:        true,
		Completed:     false,
		Canceled:      false,
		TimeOrdered:   0,
		TimeCompleted: 0,
		RestaurantID:  restaurantID,
		UserID:        user.UserID,
		Workers:       []string{},
	}
	created, err := s.transactions.InsertOne(ctx, newTransaction)
	if err != nil {
		return zero, err
	}

	userCart := user.Cart
	if existingIndex != -1 {
		oldID := userCart[existingIndex]
		if err := s.transactions.DeleteOne(ctx, bson.M{"id": oldID}); err != nil && !errors.Is(err, common.ErrNotFound) {
			return zero, err
		}
		userCart, _ = utility.RemoveAt(userCart, existingIndex)
	}
	userCart = append(userCart, created.TransactionID)

	if _, err := s.users.UpdateOne(ctx,
		bson.M{"id": user.UserID},
		&basesvc.UpdateData{Set: map[string]interface{}{"cart": userCart}},
		nil,
	); err != nil {
		return zero, err
	}
	user.Cart = userCart

	return created, nil
}

// GetCart trả về giỏ sống của user cho một nhà hàng, dùng cùng phép quét
// phòng thủ như SetCart nhưng chỉ đọc.
func (s *CartService) GetCart(ctx context.Context, user *authmodels.User, restaurantID string) (models.Transaction, error) {
	transaction, index, err := s.findLiveCart(ctx, user, restaurantID)
	if err != nil {
		return models.Transaction{}, err
	}
	if index == -1 {
		return models.Transaction{}, errCartNotFoundForRestaurant()
	}
	return transaction, nil
}

// UpdateCart thay danh sách món của một giỏ sống thuộc về caller (PUT /cart).
// Khác SetCart, thao tác này giữ nguyên bản ghi transaction, chỉ thay items
// sau khi toàn bộ dòng mới qua validate.
func (s *CartService) UpdateCart(ctx context.Context, user *authmodels.User, cartID string, lines []catalogdto.OrderLineInput) error {
	cart, err := s.FindTransactionByID(ctx, cartID)
	if err != nil || cart.UserID != user.UserID || !cart.InCart {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return errCartNotFoundByID()
	}

	if err := s.menu.ValidateOrderLines(ctx, cart.RestaurantID, lines, s.maxQuantity); err != nil {
		return err
	}

	_, err = s.transactions.UpdateOne(ctx,
		bson.M{"id": cartID},
		&basesvc.UpdateData{Set: map[string]interface{}{"items": toTransactionItems(lines)}},
		nil,
	)
	return err
}
