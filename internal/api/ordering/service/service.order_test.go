package orderingsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	authmodels "campus_commerce/internal/api/auth/models"
	basesvc "campus_commerce/internal/api/base/service"
	catalogdto "campus_commerce/internal/api/catalog/dto"
	catalogmodels "campus_commerce/internal/api/catalog/models"
	catalogsvc "campus_commerce/internal/api/catalog/service"
	models "campus_commerce/internal/api/ordering/models"
	"campus_commerce/internal/common"
	"campus_commerce/internal/testutil"
)

type orderFixture struct {
	cart       *CartService
	orders     *OrderService
	txnStore   *testutil.MemoryStore[models.Transaction]
	userStore  *testutil.MemoryStore[authmodels.User]
	restStore  *testutil.MemoryStore[catalogmodels.Restaurant]
	user       authmodels.User
	worker     authmodels.User
	owner      authmodels.User
	restaurant catalogmodels.Restaurant
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	ctx := context.Background()

	itemStore := testutil.NewMemoryStore[catalogmodels.MenuItem]()
	_, err := itemStore.InsertOne(ctx, catalogmodels.MenuItem{
		ItemID: "item1", Name: "Pho", RestaurantID: "rest1", Active: true,
		Variants: []catalogmodels.Variant{{VariantID: "v1", Name: "Regular", PriceUSD: "8.00"}},
	})
	require.NoError(t, err)

	txnStore := testutil.NewMemoryStore[models.Transaction]()
	userStore := testutil.NewMemoryStore[authmodels.User]()
	restStore := testutil.NewMemoryStore[catalogmodels.Restaurant]()

	restaurant, err := restStore.InsertOne(ctx, catalogmodels.Restaurant{
		RestaurantID:        "rest1",
		Name:                "Test Kitchen",
		Workers:             []string{"worker1"},
		Owners:              []string{"owner1"},
		CurrentTransactions: []string{},
		PastTransactions:    []string{},
	})
	require.NoError(t, err)

	user, err := userStore.InsertOne(ctx, authmodels.User{
		UserID: "user1", Name: "Customer", Email: "cust@rpi.edu", Cart: []string{},
	})
	require.NoError(t, err)
	worker, err := userStore.InsertOne(ctx, authmodels.User{
		UserID: "worker1", Name: "Worker", Email: "worker@rpi.edu",
	})
	require.NoError(t, err)
	owner, err := userStore.InsertOne(ctx, authmodels.User{
		UserID: "owner1", Name: "Owner", Email: "owner@rpi.edu",
	})
	require.NoError(t, err)

	menu := catalogsvc.NewMenuServiceWithStore(itemStore)
	return &orderFixture{
		cart:       NewCartServiceWithStores(txnStore, userStore, menu, 50),
		orders:     NewOrderServiceWithStores(txnStore, userStore, restStore, menu),
		txnStore:   txnStore,
		userStore:  userStore,
		restStore:  restStore,
		user:       user,
		worker:     worker,
		owner:      owner,
		restaurant: restaurant,
	}
}

// checkoutOrder dựng một đơn đã order cho fixture user và trả về id của nó.
func (f *orderFixture) checkoutOrder(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	cart, err := f.cart.SetCart(ctx, &f.user, "rest1",
		[]catalogdto.OrderLineInput{{ItemID: "item1", VariantID: "v1", Quantity: 2}})
	require.NoError(t, err)
	require.NoError(t, f.orders.Checkout(ctx, &f.user, cart.TransactionID))
	return cart.TransactionID
}

func (f *orderFixture) reloadTxn(t *testing.T, id string) models.Transaction {
	t.Helper()
	txn, err := f.txnStore.FindOne(context.Background(), bson.M{"id": id}, nil)
	require.NoError(t, err)
	return txn
}

func (f *orderFixture) reloadRestaurant(t *testing.T) catalogmodels.Restaurant {
	t.Helper()
	restaurant, err := f.restStore.FindOne(context.Background(), bson.M{"id": "rest1"}, nil)
	require.NoError(t, err)
	return restaurant
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("giỏ thành đơn, tham chiếu chuyển đúng chỗ", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)

		txn := f.reloadTxn(t, orderID)
		assert.False(t, txn.InCart)
		assert.NotZero(t, txn.TimeOrdered)
		assert.False(t, txn.Completed)
		assert.False(t, txn.Canceled)

		assert.NotContains(t, f.user.Cart, orderID)
		assert.Contains(t, f.user.TransactionHistory, orderID)

		restaurant := f.reloadRestaurant(t)
		assert.Contains(t, restaurant.CurrentTransactions, orderID)
		assert.NotContains(t, restaurant.PastTransactions, orderID)
	})

	t.Run("id không tồn tại", func(t *testing.T) {
		f := newOrderFixture(t)
		err := f.orders.Checkout(ctx, &f.user, "ghost")
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "Cart not found with given ID.", customErr.Message)
	})

	t.Run("giỏ của user khác", func(t *testing.T) {
		f := newOrderFixture(t)
		cart, err := f.cart.SetCart(ctx, &f.user, "rest1",
			[]catalogdto.OrderLineInput{{ItemID: "item1", VariantID: "v1", Quantity: 1}})
		require.NoError(t, err)
		err = f.orders.Checkout(ctx, &f.worker, cart.TransactionID)
		require.Error(t, err)
	})

	t.Run("checkout hai lần cùng giỏ", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)
		err := f.orders.Checkout(ctx, &f.user, orderID)
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "Cart not found with given ID.", customErr.Message)
	})

	t.Run("món bị tắt sau khi set giỏ chặn checkout", func(t *testing.T) {
		f := newOrderFixture(t)
		cart, err := f.cart.SetCart(ctx, &f.user, "rest1",
			[]catalogdto.OrderLineInput{{ItemID: "item1", VariantID: "v1", Quantity: 1}})
		require.NoError(t, err)

		menu := NewOrderServiceWithStores(f.txnStore, f.userStore, f.restStore,
			catalogsvc.NewMenuServiceWithStore(testutil.NewMemoryStore[catalogmodels.MenuItem]()))
		err = menu.Checkout(ctx, &f.user, cart.TransactionID)
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "One or more items in cart do not currently exist.", customErr.Message)

		// từ chối là không ghi: giỏ vẫn sống
		txn := f.reloadTxn(t, cart.TransactionID)
		assert.True(t, txn.InCart)
	})

	t.Run("tham chiếu cart bị mất là lỗi nhất quán", func(t *testing.T) {
		f := newOrderFixture(t)
		cart, err := f.cart.SetCart(ctx, &f.user, "rest1",
			[]catalogdto.OrderLineInput{{ItemID: "item1", VariantID: "v1", Quantity: 1}})
		require.NoError(t, err)

		f.user.Cart = []string{}
		err = f.orders.Checkout(ctx, &f.user, cart.TransactionID)
		require.Error(t, err)
	})
}

func TestListUserOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	first := f.checkoutOrder(t)
	second := f.checkoutOrder(t)

	t.Run("đơn mới nằm ở active", func(t *testing.T) {
		active, past, err := f.orders.ListUserOrders(ctx, &f.user)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{first, second}, active)
		assert.Empty(t, past)
	})

	t.Run("đơn kết thúc chuyển sang past khi đọc", func(t *testing.T) {
		require.NoError(t, f.orders.Finalize(ctx, &f.worker, first))

		active, past, err := f.orders.ListUserOrders(ctx, &f.user)
		require.NoError(t, err)
		assert.Equal(t, []string{second}, active)
		assert.Equal(t, []string{first}, past)
	})

	t.Run("tham chiếu rác bị bỏ qua", func(t *testing.T) {
		f.user.TransactionHistory = append(f.user.TransactionHistory, "ghost")
		active, past, err := f.orders.ListUserOrders(ctx, &f.user)
		require.NoError(t, err)
		assert.NotContains(t, active, "ghost")
		assert.NotContains(t, past, "ghost")
	})
}

func TestGetOrderDetail(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	orderID := f.checkoutOrder(t)

	t.Run("chủ đơn thấy đơn", func(t *testing.T) {
		txn, err := f.orders.GetOrderDetail(ctx, &f.user, orderID)
		require.NoError(t, err)
		assert.Equal(t, orderID, txn.TransactionID)
		assert.Equal(t, "user1", txn.UserID)
	})

	t.Run("worker của nhà hàng thấy đơn", func(t *testing.T) {
		_, err := f.orders.GetOrderDetail(ctx, &f.worker, orderID)
		assert.NoError(t, err)
	})

	t.Run("admin thấy đơn", func(t *testing.T) {
		admin := authmodels.User{UserID: "admin1", Admin: true}
		_, err := f.orders.GetOrderDetail(ctx, &admin, orderID)
		assert.NoError(t, err)
	})

	t.Run("người ngoài nhận cùng lỗi not-found", func(t *testing.T) {
		stranger := authmodels.User{UserID: "stranger"}
		_, err := f.orders.GetOrderDetail(ctx, &stranger, orderID)
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "Order not found with given ID.", customErr.Message)
	})

	t.Run("giỏ chưa checkout là not-found", func(t *testing.T) {
		cart, err := f.cart.SetCart(ctx, &f.user, "rest1",
			[]catalogdto.OrderLineInput{{ItemID: "item1", VariantID: "v1", Quantity: 1}})
		require.NoError(t, err)
		_, err = f.orders.GetOrderDetail(ctx, &f.user, cart.TransactionID)
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "Order not found with given ID.", customErr.Message)
	})
}

func TestToggleWorker(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	orderID := f.checkoutOrder(t)

	t.Run("worker tự thêm mình", func(t *testing.T) {
		require.NoError(t, f.orders.ToggleWorker(ctx, &f.worker, orderID, false))
		txn := f.reloadTxn(t, orderID)
		assert.Equal(t, []string{"worker1"}, txn.Workers)
	})

	t.Run("thêm lần hai là no-op", func(t *testing.T) {
		require.NoError(t, f.orders.ToggleWorker(ctx, &f.worker, orderID, false))
		txn := f.reloadTxn(t, orderID)
		assert.Equal(t, []string{"worker1"}, txn.Workers)
	})

	t.Run("owner cũng được gắn", func(t *testing.T) {
		require.NoError(t, f.orders.ToggleWorker(ctx, &f.owner, orderID, false))
		txn := f.reloadTxn(t, orderID)
		assert.ElementsMatch(t, []string{"worker1", "owner1"}, txn.Workers)
	})

	t.Run("gỡ mình khỏi đơn", func(t *testing.T) {
		require.NoError(t, f.orders.ToggleWorker(ctx, &f.worker, orderID, true))
		txn := f.reloadTxn(t, orderID)
		assert.Equal(t, []string{"owner1"}, txn.Workers)
	})

	t.Run("gỡ khi không có là no-op", func(t *testing.T) {
		require.NoError(t, f.orders.ToggleWorker(ctx, &f.worker, orderID, true))
	})

	t.Run("user thường bị chặn", func(t *testing.T) {
		err := f.orders.ToggleWorker(ctx, &f.user, orderID, false)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	t.Run("staff hoàn thành đơn", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)

		require.NoError(t, f.orders.Finalize(ctx, &f.worker, orderID))

		txn := f.reloadTxn(t, orderID)
		assert.True(t, txn.Completed)
		assert.False(t, txn.Canceled)
		assert.NotZero(t, txn.TimeCompleted)

		restaurant := f.reloadRestaurant(t)
		assert.NotContains(t, restaurant.CurrentTransactions, orderID)
		assert.Contains(t, restaurant.PastTransactions, orderID)
	})

	t.Run("chủ đơn hủy đơn", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)

		require.NoError(t, f.orders.Finalize(ctx, &f.user, orderID))

		txn := f.reloadTxn(t, orderID)
		assert.True(t, txn.Canceled)
		assert.False(t, txn.Completed)
	})

	t.Run("latch một chiều, gọi lại không đảo kết quả", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)

		require.NoError(t, f.orders.Finalize(ctx, &f.worker, orderID))
		// Chủ đơn gọi lại sau khi staff đã complete: no-op thành công
		require.NoError(t, f.orders.Finalize(ctx, &f.user, orderID))

		txn := f.reloadTxn(t, orderID)
		assert.True(t, txn.Completed)
		assert.False(t, txn.Canceled)

		restaurant := f.reloadRestaurant(t)
		assert.Len(t, restaurant.PastTransactions, 1)
	})

	t.Run("người ngoài bị chặn", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)
		stranger := authmodels.User{UserID: "stranger"}
		err := f.orders.Finalize(ctx, &stranger, orderID)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("đơn không nằm trong current_transactions là lỗi nhất quán", func(t *testing.T) {
		f := newOrderFixture(t)
		orderID := f.checkoutOrder(t)

		restaurant := f.reloadRestaurant(t)
		_, err := f.restStore.UpdateOne(ctx, bson.M{"id": restaurant.RestaurantID},
			&basesvc.UpdateData{Set: map[string]interface{}{"current_transactions": []string{}}}, nil)
		require.NoError(t, err)

		err = f.orders.Finalize(ctx, &f.worker, orderID)
		require.Error(t, err)

		// không ghi gì khi precondition hỏng
		txn := f.reloadTxn(t, orderID)
		assert.False(t, txn.Completed)
		assert.False(t, txn.Canceled)
	})
}
