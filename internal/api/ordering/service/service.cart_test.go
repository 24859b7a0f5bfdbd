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

type cartFixture struct {
	service  *CartService
	txnStore *testutil.MemoryStore[models.Transaction]
	userStore *testutil.MemoryStore[authmodels.User]
	user     authmodels.User
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	ctx := context.Background()

	itemStore := testutil.NewMemoryStore[catalogmodels.MenuItem]()
	items := []catalogmodels.MenuItem{
		{ItemID: "item1", Name: "Pho", RestaurantID: "rest1", Active: true,
			Variants: []catalogmodels.Variant{{VariantID: "v1", Name: "Regular", PriceUSD: "8.00"}}},
		{ItemID: "item2", Name: "Spring rolls", RestaurantID: "rest1", Active: true,
			Variants: []catalogmodels.Variant{{VariantID: "v2", Name: "Two", PriceUSD: "4.00"}}},
		{ItemID: "item-inactive", Name: "Off menu", RestaurantID: "rest1", Active: false,
			Variants: []catalogmodels.Variant{{VariantID: "v3", Name: "Regular", PriceUSD: "3.00"}}},
		{ItemID: "item-other", Name: "Burger", RestaurantID: "rest2", Active: true,
			Variants: []catalogmodels.Variant{{VariantID: "v4", Name: "Single", PriceUSD: "6.00"}}},
	}
	for _, item := range items {
		_, err := itemStore.InsertOne(ctx, item)
		require.NoError(t, err)
	}

	txnStore := testutil.NewMemoryStore[models.Transaction]()
	userStore := testutil.NewMemoryStore[authmodels.User]()
	user, err := userStore.InsertOne(ctx, authmodels.User{
		UserID: "user1",
		Name:   "Test User",
		Email:  "test@rpi.edu",
		Cart:   []string{},
	})
	require.NoError(t, err)

	service := NewCartServiceWithStores(txnStore, userStore, catalogsvc.NewMenuServiceWithStore(itemStore), 50)
	return &cartFixture{service: service, txnStore: txnStore, userStore: userStore, user: user}
}

func lines(entries ...catalogdto.OrderLineInput) []catalogdto.OrderLineInput {
	return entries
}

func line(itemID, variantID string, qty int) catalogdto.OrderLineInput {
	return catalogdto.OrderLineInput{ItemID: itemID, VariantID: variantID, Quantity: qty}
}

func TestSetCartCreatesLiveCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	created, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item1", "v1", 2)))
	require.NoError(t, err)
	assert.NotEmpty(t, created.TransactionID)
	assert.True(t, created.InCart)
	assert.False(t, created.Completed)
	assert.False(t, created.Canceled)
	assert.Zero(t, created.TimeOrdered)
	assert.Equal(t, "user1", created.UserID)
	assert.Equal(t, "rest1", created.RestaurantID)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 2, created.Items[0].Quantity)

	// back-reference đã vào user.Cart, cả in-memory lẫn trong store
	assert.Contains(t, f.user.Cart, created.TransactionID)
	stored, err := f.userStore.FindOne(ctx, bson.M{"id": "user1"}, nil)
	require.NoError(t, err)
	assert.Contains(t, stored.Cart, created.TransactionID)
}

func TestSetCartReplacesExistingCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	first, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item1", "v1", 1)))
	require.NoError(t, err)
	second, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item2", "v2", 3)))
	require.NoError(t, err)

	assert.NotEqual(t, first.TransactionID, second.TransactionID)

	// giỏ cũ bị xóa khỏi store, user.Cart chỉ còn giỏ mới
	_, err = f.txnStore.FindOne(ctx, bson.M{"id": first.TransactionID}, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, []string{second.TransactionID}, f.user.Cart)
	assert.Equal(t, 1, f.txnStore.Len())

	current, err := f.service.GetCart(ctx, &f.user, "rest1")
	require.NoError(t, err)
	assert.Equal(t, second.TransactionID, current.TransactionID)
	require.Len(t, current.Items, 1)
	assert.Equal(t, "item2", current.Items[0].ItemID)
}

func TestSetCartPerRestaurantIsolation(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	cart1, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item1", "v1", 1)))
	require.NoError(t, err)
	cart2, err := f.service.SetCart(ctx, &f.user, "rest2", lines(line("item-other", "v4", 1)))
	require.NoError(t, err)

	// hai nhà hàng là hai giỏ độc lập, set giỏ này không đụng giỏ kia
	require.Len(t, f.user.Cart, 2)
	got1, err := f.service.GetCart(ctx, &f.user, "rest1")
	require.NoError(t, err)
	assert.Equal(t, cart1.TransactionID, got1.TransactionID)
	got2, err := f.service.GetCart(ctx, &f.user, "rest2")
	require.NoError(t, err)
	assert.Equal(t, cart2.TransactionID, got2.TransactionID)
}

func TestSetCartValidationRejections(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	tests := []struct {
		name    string
		line    catalogdto.OrderLineInput
		message string
	}{
		{"món inactive", line("item-inactive", "v3", 1), "Failed to find menu item on restaurant."},
		{"món nhà hàng khác", line("item-other", "v4", 1), "Failed to find menu item on restaurant."},
		{"món không tồn tại", line("ghost", "v1", 1), "Failed to find menu item on restaurant."},
		{"variant sai", line("item1", "nope", 1), "Failed to find menu item variant."},
		{"số lượng âm", line("item1", "v1", -1), "Invalid quantity supplied."},
		{"số lượng vượt trần", line("item1", "v1", 51), "Invalid quantity supplied."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.SetCart(ctx, &f.user, "rest1", lines(tt.line))
			require.Error(t, err)
			var customErr *common.Error
			require.ErrorAs(t, err, &customErr)
			assert.Equal(t, tt.message, customErr.Message)
		})
	}

	// từ chối là không ghi gì
	assert.Equal(t, 0, f.txnStore.Len())
	assert.Empty(t, f.user.Cart)
}

func TestGetCartNotFound(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	_, err := f.service.GetCart(ctx, &f.user, "rest1")
	require.Error(t, err)
	var customErr *common.Error
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, "Cart not found for given restaurant.", customErr.Message)
}

func TestGetCartSkipsDanglingReference(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	cart, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item1", "v1", 1)))
	require.NoError(t, err)

	// id rác chen trước id thật không được làm hỏng phép quét
	f.user.Cart = append([]string{"dangling"}, f.user.Cart...)
	got, err := f.service.GetCart(ctx, &f.user, "rest1")
	require.NoError(t, err)
	assert.Equal(t, cart.TransactionID, got.TransactionID)
}

func TestGetCartIgnoresOrderedTransaction(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	cart, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item1", "v1", 1)))
	require.NoError(t, err)

	// transaction đã rời trạng thái cart: tham chiếu còn đó nhưng flag quyết định
	_, err = f.txnStore.UpdateOne(ctx, bson.M{"id": cart.TransactionID},
		&basesvc.UpdateData{Set: map[string]interface{}{"in_cart": false}}, nil)
	require.NoError(t, err)

	_, err = f.service.GetCart(ctx, &f.user, "rest1")
	require.Error(t, err)
}

func TestUpdateCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	cart, err := f.service.SetCart(ctx, &f.user, "rest1", lines(line("item1", "v1", 1)))
	require.NoError(t, err)

	t.Run("thay items giữ nguyên id", func(t *testing.T) {
		err := f.service.UpdateCart(ctx, &f.user, cart.TransactionID, lines(line("item2", "v2", 5)))
		require.NoError(t, err)

		got, err := f.service.GetCart(ctx, &f.user, "rest1")
		require.NoError(t, err)
		assert.Equal(t, cart.TransactionID, got.TransactionID)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "item2", got.Items[0].ItemID)
		assert.Equal(t, 5, got.Items[0].Quantity)
	})

	t.Run("id không tồn tại", func(t *testing.T) {
		err := f.service.UpdateCart(ctx, &f.user, "ghost", lines(line("item1", "v1", 1)))
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "Cart not found with given ID.", customErr.Message)
	})

	t.Run("giỏ của user khác", func(t *testing.T) {
		other := authmodels.User{UserID: "user2"}
		err := f.service.UpdateCart(ctx, &other, cart.TransactionID, lines(line("item1", "v1", 1)))
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "Cart not found with given ID.", customErr.Message)
	})

	t.Run("dòng mới vẫn phải qua validate", func(t *testing.T) {
		err := f.service.UpdateCart(ctx, &f.user, cart.TransactionID, lines(line("item1", "v1", 0)))
		require.Error(t, err)
	})
}
