package orderingsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	authmodels "campus_commerce/internal/api/auth/models"
	authsvc "campus_commerce/internal/api/auth/service"
	catalogmodels "campus_commerce/internal/api/catalog/models"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	models "campus_commerce/internal/api/ordering/models"
	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
	"campus_commerce/internal/utility"
)

// errOrderNotFound: id không trỏ tới đơn hàng caller được thấy. Dùng chung
// cho cả trường hợp không tồn tại lẫn không đủ quyền để không lộ sự tồn tại.
func errOrderNotFound() error {
	return common.NewError(common.ErrCodeDatabaseQuery, "Order not found with given ID.", common.StatusNotFound, nil)
}

// OrderService điều khiển máy trạng thái CART -> ORDERED -> {COMPLETED, CANCELED}.
// Mỗi chuyển trạng thái là một dãy ghi độc lập không atomic; bản ghi
// Transaction luôn được ghi trước vì nó là nguồn sự thật, các danh sách
// tham chiếu trên User/Restaurant theo sau best-effort. Reader bù lại bằng
// cách đọc lại flag thật của từng transaction được tham chiếu.
type OrderService struct {
	transactions basesvc.BaseServiceMongo[models.Transaction]
	users        basesvc.BaseServiceMongo[authmodels.User]
	restaurants  basesvc.BaseServiceMongo[catalogmodels.Restaurant]
	menu         *catalogsvc.MenuService
}

// NewOrderService tạo OrderService từ registry collections.
func NewOrderService() (*OrderService, error) {
	txnCol, exist := global.RegistryCollections.Get(global.ColNames.Transactions)
	if !exist {
		return nil, fmt.Errorf("failed to get transactions collection: %v", common.ErrNotFound)
	}
	userCol, exist := global.RegistryCollections.Get(global.ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	restaurantCol, exist := global.RegistryCollections.Get(global.ColNames.Restaurants)
	if !exist {
		return nil, fmt.Errorf("failed to get restaurants collection: %v", common.ErrNotFound)
	}
	menu, err := catalogsvc.NewMenuService()
	if err != nil {
		return nil, err
	}
	return NewOrderServiceWithStores(
		basesvc.NewBaseServiceMongo[models.Transaction](txnCol),
		basesvc.NewBaseServiceMongo[authmodels.User](userCol),
		basesvc.NewBaseServiceMongo[catalogmodels.Restaurant](restaurantCol),
		menu,
	), nil
}

// NewOrderServiceWithStores tạo OrderService với stores chỉ định (dùng trong test).
func NewOrderServiceWithStores(
	transactions basesvc.BaseServiceMongo[models.Transaction],
	users basesvc.BaseServiceMongo[authmodels.User],
	restaurants basesvc.BaseServiceMongo[catalogmodels.Restaurant],
	menu *catalogsvc.MenuService,
) *OrderService {
	return &OrderService{
		transactions: transactions,
		users:        users,
		restaurants:  restaurants,
		menu:         menu,
	}
}

func (s *OrderService) findRestaurant(ctx context.Context, restaurantID string) (catalogmodels.Restaurant, error) {
	return s.restaurants.FindOne(ctx, bson.M{"id": restaurantID}, nil)
}

// findOrder tra một transaction đã order (không còn in_cart). Id không tồn
// tại hoặc vẫn là giỏ hàng đều trả về cùng một lỗi not-found.
func (s *OrderService) findOrder(ctx context.Context, orderID string) (models.Transaction, error) {
	transaction, err := s.transactions.FindOne(ctx, bson.M{"id": orderID}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.Transaction{}, errOrderNotFound()
		}
		return models.Transaction{}, err
	}
	if transaction.InCart {
		return models.Transaction{}, errOrderNotFound()
	}
	return transaction, nil
}

// Checkout chuyển giỏ hàng thành đơn hàng. Toàn bộ món được kiểm tra lại với
// thực đơn hiện hành, độc lập với lần kiểm tra khi set giỏ, vì thực đơn có
// thể đã đổi. Mọi precondition (giỏ thuộc caller, nhà hàng còn, món hợp lệ,
// id có trong user.Cart) kiểm xong mới ghi, theo thứ tự cố định: flip
// transaction trước, rồi danh sách của user, cuối cùng danh sách của nhà hàng.
func (s *OrderService) Checkout(ctx context.Context, user *authmodels.User, cartID string) error {
	cart, err := s.transactions.FindOne(ctx, bson.M{"id": cartID}, nil)
	if err != nil || cart.UserID != user.UserID || !cart.InCart {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return errCartNotFoundByID()
	}

	restaurant, err := s.findRestaurant(ctx, cart.RestaurantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "Failed to find restaurant.", common.StatusNotFound, nil)
		}
		return err
	}

	if err := s.menu.RevalidateOrderLines(ctx, linesFromItems(cart.Items)); err != nil {
		return err
	}

	userCart, found := utility.Remove(user.Cart, cart.TransactionID)
	if !found {
		return common.NewInconsistencyError(
			"checkout: transaction " + cart.TransactionID + " không có trong cart của user " + user.UserID)
	}

	// Ghi 1: bản ghi transaction, nguồn sự thật về trạng thái
	if _, err := s.transactions.UpdateOne(ctx,
		bson.M{"id": cart.TransactionID},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"in_cart":      false,
			"time_ordered": utility.NowMillis(),
		}},
		nil,
	); err != nil {
		return err
	}

	// Ghi 2: danh sách của user
	userHistory := append(user.TransactionHistory, cart.TransactionID)
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"id": user.UserID},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"cart":                userCart,
			"transaction_history": userHistory,
		}},
		nil,
	); err != nil {
		return err
	}
	user.Cart = userCart
	user.TransactionHistory = userHistory

	// Ghi 3: danh sách đơn đang xử lý của nhà hàng
	currentTransactions := append(restaurant.CurrentTransactions, cart.TransactionID)
	if _, err := s.restaurants.UpdateOne(ctx,
		bson.M{"id": restaurant.RestaurantID},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"current_transactions": currentTransactions,
		}},
		nil,
	); err != nil {
		return err
	}

	return nil
}

// ListUserOrders phân hoạch transaction_history của user thành đơn đang xử lý
// và đơn đã kết thúc bằng cách đọc lại trạng thái hiện tại của từng
// transaction. Phân hoạch này chỉ tính lúc đọc, không bao giờ được lưu.
// Id trỏ tới transaction đã mất bị bỏ qua.
func (s *OrderService) ListUserOrders(ctx context.Context, user *authmodels.User) (active []string, past []string, err error) {
	active = []string{}
	past = []string{}
	for _, transactionID := range user.TransactionHistory {
		transaction, err := s.transactions.FindOne(ctx, bson.M{"id": transactionID}, nil)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}
		if transaction.IsTerminal() {
			past = append(past, transactionID)
		} else {
			active = append(active, transactionID)
		}
	}
	return active, past, nil
}

// GetOrderDetail trả về đơn hàng nếu caller là chủ đơn, admin, hoặc staff
// của nhà hàng sở hữu. Không đủ quyền trả về cùng lỗi not-found như khi đơn
// không tồn tại.
func (s *OrderService) GetOrderDetail(ctx context.Context, user *authmodels.User, orderID string) (models.Transaction, error) {
	var zero models.Transaction

	transaction, err := s.findOrder(ctx, orderID)
	if err != nil {
		return zero, err
	}

	restaurant, err := s.findRestaurant(ctx, transaction.RestaurantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return zero, common.NewError(common.ErrCodeDatabaseQuery, "Failed to find restaurant for order.", common.StatusNotFound, nil)
		}
		return zero, err
	}

	role := authsvc.RoleOf(user, &restaurant)
	if transaction.UserID != user.UserID && !role.Allows(authsvc.CapViewRestaurantOrders) {
		return zero, errOrderNotFound()
	}

	return transaction, nil
}

// ToggleWorker thêm hoặc gỡ chính caller khỏi set worker của một đơn hàng.
// Set semantics: thêm khi đã có hoặc gỡ khi không có là no-op thành công,
// không ghi store.
func (s *OrderService) ToggleWorker(ctx context.Context, user *authmodels.User, orderID string, remove bool) error {
	transaction, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	restaurant, err := s.findRestaurant(ctx, transaction.RestaurantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "Failed to find restaurant for order.", common.StatusNotFound, nil)
		}
		return err
	}

	role := authsvc.RoleOf(user, &restaurant)
	if !role.Allows(authsvc.CapToggleOrderWorker) {
		return common.ErrUnauthorized
	}

	var workers []string
	var changed bool
	if remove {
		workers, changed = utility.Remove(transaction.Workers, user.UserID)
	} else {
		workers, changed = utility.AppendUnique(transaction.Workers, user.UserID)
	}
	if !changed {
		return nil
	}

	_, err = s.transactions.UpdateOne(ctx,
		bson.M{"id": transaction.TransactionID},
		&basesvc.UpdateData{Set: map[string]interface{}{"workers": workers}},
		nil,
	)
	return err
}

// Finalize kết thúc một đơn hàng. Chủ đơn (không phải staff) thì kết quả là
// canceled; staff trở lên của nhà hàng thì kết quả là completed. Latch một
// chiều: đơn đã kết thúc thì gọi lại là no-op thành công, không bao giờ đảo
// latch hay set latch còn lại. Latch được ghi trên transaction trước, sau đó
// id mới được chuyển từ current_transactions sang past_transactions.
func (s *OrderService) Finalize(ctx context.Context, user *authmodels.User, orderID string) error {
	transaction, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	restaurant, err := s.findRestaurant(ctx, transaction.RestaurantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrCodeDatabaseQuery, "Failed to find restaurant for order.", common.StatusNotFound, nil)
		}
		return err
	}

	role := authsvc.RoleOf(user, &restaurant)
	isStaff := role.Allows(authsvc.CapCompleteOrder)
	if !isStaff && transaction.UserID != user.UserID {
		return common.ErrUnauthorized
	}

	if transaction.IsTerminal() {
		return nil
	}

	currentTransactions, found := utility.Remove(restaurant.CurrentTransactions, transaction.TransactionID)
	if !found {
		return common.NewInconsistencyError(
			"finalize: transaction " + transaction.TransactionID + " không có trong current_transactions của nhà hàng " + restaurant.RestaurantID)
	}

	// Chủ đơn hủy, staff hoàn thành. Hai latch loại trừ lẫn nhau.
	latch := "completed"
	if !isStaff {
		latch = "canceled"
	}

	// Ghi 1: latch trên transaction
	if _, err := s.transactions.UpdateOne(ctx,
		bson.M{"id": transaction.TransactionID},
		&basesvc.UpdateData{Set: map[string]interface{}{
			latch:            true,
			"time_completed": utility.NowMillis(),
		}},
		nil,
	); err != nil {
		return err
	}

	// Ghi 2: chuyển id giữa hai danh sách của nhà hàng
	pastTransactions := append(restaurant.PastTransactions, transaction.TransactionID)
	if _, err := s.restaurants.UpdateOne(ctx,
		bson.M{"id": restaurant.RestaurantID},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"current_transactions": currentTransactions,
			"past_transactions":    pastTransactions,
		}},
		nil,
	); err != nil {
		return err
	}

	logger.GetAuditLogger().WithFields(map[string]interface{}{
		"transaction_id": transaction.TransactionID,
		"restaurant_id":  restaurant.RestaurantID,
		"outcome":        latch,
		"by_user":        user.UserID,
	}).Info("Đơn hàng kết thúc")
	return nil
}
