package catalogsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	authmodels "campus_commerce/internal/api/auth/models"
	catalogdto "campus_commerce/internal/api/catalog/dto"
	models "campus_commerce/internal/api/catalog/models"
	"campus_commerce/internal/common"
	"campus_commerce/internal/testutil"
)

type restaurantFixture struct {
	service   *RestaurantService
	restStore *testutil.MemoryStore[models.Restaurant]
	userStore *testutil.MemoryStore[authmodels.User]
	itemStore *testutil.MemoryStore[models.MenuItem]
}

func newRestaurantFixture(t *testing.T) *restaurantFixture {
	t.Helper()
	restStore := testutil.NewMemoryStore[models.Restaurant]()
	userStore := testutil.NewMemoryStore[authmodels.User]()
	itemStore := testutil.NewMemoryStore[models.MenuItem]()
	return &restaurantFixture{
		service:   NewRestaurantServiceWithStores(restStore, userStore, itemStore),
		restStore: restStore,
		userStore: userStore,
		itemStore: itemStore,
	}
}

func (f *restaurantFixture) reload(t *testing.T, restaurantID string) models.Restaurant {
	t.Helper()
	restaurant, err := f.restStore.FindOne(context.Background(), bson.M{"id": restaurantID}, nil)
	require.NoError(t, err)
	return restaurant
}

func TestRestaurantCreateDelete(t *testing.T) {
	ctx := context.Background()
	f := newRestaurantFixture(t)

	created, err := f.service.Create(ctx, "Test Kitchen", "/tmp/image.png")
	require.NoError(t, err)
	assert.NotEmpty(t, created.RestaurantID)
	assert.Empty(t, created.Owners)
	assert.Empty(t, created.Workers)
	assert.Empty(t, created.MenuCategories)
	assert.Empty(t, created.CurrentTransactions)
	assert.Empty(t, created.PastTransactions)

	require.NoError(t, f.service.Delete(ctx, created.RestaurantID))
	_, err = f.restStore.FindOne(ctx, bson.M{"id": created.RestaurantID}, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// xóa lần hai vẫn thành công
	assert.NoError(t, f.service.Delete(ctx, created.RestaurantID))
}

func TestCategoryIndexBounds(t *testing.T) {
	ctx := context.Background()
	f := newRestaurantFixture(t)

	restaurant, err := f.service.Create(ctx, "Kitchen", "")
	require.NoError(t, err)
	id := restaurant.RestaurantID

	require.NoError(t, f.service.AddCategory(ctx, id, &catalogdto.CategoryCreateInput{Name: "Mains", Active: true}))
	require.NoError(t, f.service.AddCategory(ctx, id, &catalogdto.CategoryCreateInput{Name: "Drinks", Active: true}))

	update := func(name string) *catalogdto.CategoryUpdateInput {
		return &catalogdto.CategoryUpdateInput{Name: name, Active: true, Items: []string{}}
	}

	t.Run("chỉ số ngoài biên bị chặn", func(t *testing.T) {
		for _, index := range []int{-1, 2, 100} {
			err := f.service.UpdateCategory(ctx, id, index, update("X"))
			require.Error(t, err)
			var customErr *common.Error
			require.ErrorAs(t, err, &customErr)
			assert.Equal(t, "Invalid category index supplied.", customErr.Message)

			err = f.service.DeleteCategory(ctx, id, index)
			require.Error(t, err)
		}
	})

	t.Run("move_down đổi chỗ với category kế", func(t *testing.T) {
		input := update("Mains")
		input.MoveDown = true
		require.NoError(t, f.service.UpdateCategory(ctx, id, 0, input))

		reloaded := f.reload(t, id)
		assert.Equal(t, "Drinks", reloaded.MenuCategories[0].Name)
		assert.Equal(t, "Mains", reloaded.MenuCategories[1].Name)
	})

	t.Run("move_up ở đỉnh là no-op, không lỗi", func(t *testing.T) {
		input := update("Drinks")
		input.MoveUp = true
		require.NoError(t, f.service.UpdateCategory(ctx, id, 0, input))

		reloaded := f.reload(t, id)
		assert.Equal(t, "Drinks", reloaded.MenuCategories[0].Name)
	})

	t.Run("move_down ở đáy là no-op, không lỗi", func(t *testing.T) {
		input := update("Mains")
		input.MoveDown = true
		require.NoError(t, f.service.UpdateCategory(ctx, id, 1, input))

		reloaded := f.reload(t, id)
		assert.Equal(t, "Mains", reloaded.MenuCategories[1].Name)
	})

	t.Run("cả hai cờ cùng bật thì đứng yên", func(t *testing.T) {
		input := update("Drinks")
		input.MoveUp = true
		input.MoveDown = true
		require.NoError(t, f.service.UpdateCategory(ctx, id, 0, input))

		reloaded := f.reload(t, id)
		assert.Equal(t, "Drinks", reloaded.MenuCategories[0].Name)
	})

	t.Run("xóa theo chỉ số hợp lệ", func(t *testing.T) {
		require.NoError(t, f.service.DeleteCategory(ctx, id, 0))
		reloaded := f.reload(t, id)
		require.Len(t, reloaded.MenuCategories, 1)
		assert.Equal(t, "Mains", reloaded.MenuCategories[0].Name)
	})
}

func TestUpdateCategoryItemOwnership(t *testing.T) {
	ctx := context.Background()
	f := newRestaurantFixture(t)

	restaurant, err := f.service.Create(ctx, "Kitchen", "")
	require.NoError(t, err)
	id := restaurant.RestaurantID
	require.NoError(t, f.service.AddCategory(ctx, id, &catalogdto.CategoryCreateInput{Name: "Mains", Active: true}))

	_, err = f.itemStore.InsertOne(ctx, models.MenuItem{ItemID: "own-item", RestaurantID: id, Active: true})
	require.NoError(t, err)
	_, err = f.itemStore.InsertOne(ctx, models.MenuItem{ItemID: "foreign-item", RestaurantID: "other", Active: true})
	require.NoError(t, err)

	t.Run("món của chính nhà hàng được nhận", func(t *testing.T) {
		err := f.service.UpdateCategory(ctx, id, 0, &catalogdto.CategoryUpdateInput{
			Name: "Mains", Active: true, Items: []string{"own-item"},
		})
		require.NoError(t, err)
		reloaded := f.reload(t, id)
		assert.Equal(t, []string{"own-item"}, reloaded.MenuCategories[0].Items)
	})

	t.Run("món của nhà hàng khác bị chặn", func(t *testing.T) {
		err := f.service.UpdateCategory(ctx, id, 0, &catalogdto.CategoryUpdateInput{
			Name: "Mains", Active: true, Items: []string{"foreign-item"},
		})
		require.Error(t, err)
	})

	t.Run("món không tồn tại bị chặn", func(t *testing.T) {
		err := f.service.UpdateCategory(ctx, id, 0, &catalogdto.CategoryUpdateInput{
			Name: "Mains", Active: true, Items: []string{"ghost"},
		})
		require.Error(t, err)
	})
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	f := newRestaurantFixture(t)

	restaurant, err := f.service.Create(ctx, "Kitchen", "")
	require.NoError(t, err)
	id := restaurant.RestaurantID
	require.NoError(t, f.service.AddCategory(ctx, id, &catalogdto.CategoryCreateInput{Name: "Mains", Active: true}))

	t.Run("món mới vào đúng category", func(t *testing.T) {
		created, err := f.service.CreateItem(ctx, id, &catalogdto.ItemCreateInput{
			Name: "Pho", Active: true, CategoryIndex: 0,
			Variants: []catalogdto.VariantInput{{Name: "Regular", PriceUSD: "8.00"}},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ItemID)
		require.Len(t, created.Variants, 1)
		assert.NotEmpty(t, created.Variants[0].VariantID)
		assert.Equal(t, id, created.RestaurantID)

		reloaded := f.reload(t, id)
		assert.Contains(t, reloaded.MenuCategories[0].Items, created.ItemID)
	})

	t.Run("chỉ số category ngoài biên bị chặn", func(t *testing.T) {
		_, err := f.service.CreateItem(ctx, id, &catalogdto.ItemCreateInput{
			Name: "Ghost", CategoryIndex: 5,
			Variants: []catalogdto.VariantInput{{Name: "Regular", PriceUSD: "1.00"}},
		})
		require.Error(t, err)
	})
}

func TestUpdateItemPermissionSplit(t *testing.T) {
	ctx := context.Background()
	f := newRestaurantFixture(t)

	_, err := f.itemStore.InsertOne(ctx, models.MenuItem{
		ItemID: "item1", Name: "Pho", RestaurantID: "rest1", Active: true,
		Variants: []models.Variant{{VariantID: "v1", Name: "Regular", PriceUSD: "8.00"}},
	})
	require.NoError(t, err)

	boolPtr := func(b bool) *bool { return &b }
	strPtr := func(s string) *string { return &s }

	t.Run("worker chỉ đụng được cờ active", func(t *testing.T) {
		err := f.service.UpdateItem(ctx, "rest1", "item1",
			&catalogdto.ItemUpdateInput{Active: boolPtr(false)}, false)
		require.NoError(t, err)

		item, err := f.itemStore.FindOne(ctx, bson.M{"id": "item1"}, nil)
		require.NoError(t, err)
		assert.False(t, item.Active)
	})

	t.Run("worker sửa field khác bị chặn", func(t *testing.T) {
		err := f.service.UpdateItem(ctx, "rest1", "item1",
			&catalogdto.ItemUpdateInput{Name: strPtr("New name")}, false)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("owner sửa field và nối thêm variant", func(t *testing.T) {
		err := f.service.UpdateItem(ctx, "rest1", "item1", &catalogdto.ItemUpdateInput{
			Name:     strPtr("Pho dac biet"),
			Variants: []catalogdto.VariantInput{{Name: "Large", PriceUSD: "10.00"}},
		}, true)
		require.NoError(t, err)

		item, err := f.itemStore.FindOne(ctx, bson.M{"id": "item1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Pho dac biet", item.Name)
		require.Len(t, item.Variants, 2)
		assert.Equal(t, "v1", item.Variants[0].VariantID)
		assert.Equal(t, "Large", item.Variants[1].Name)
	})

	t.Run("món của nhà hàng khác là not-found", func(t *testing.T) {
		err := f.service.UpdateItem(ctx, "rest2", "item1",
			&catalogdto.ItemUpdateInput{Active: boolPtr(true)}, true)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestRosterSetSemantics(t *testing.T) {
	ctx := context.Background()
	f := newRestaurantFixture(t)

	restaurant, err := f.service.Create(ctx, "Kitchen", "")
	require.NoError(t, err)
	id := restaurant.RestaurantID

	staff, err := f.userStore.InsertOne(ctx, authmodels.User{
		UserID: "staff1", Name: "Staff", Email: "staff@rpi.edu",
	})
	require.NoError(t, err)

	reloadUser := func() authmodels.User {
		user, err := f.userStore.FindOne(ctx, bson.M{"id": staff.UserID}, nil)
		require.NoError(t, err)
		return user
	}

	t.Run("thêm worker cập nhật cả hai phía", func(t *testing.T) {
		require.NoError(t, f.service.AddWorkerByEmail(ctx, id, "staff@rpi.edu"))
		assert.Equal(t, []string{"staff1"}, f.reload(t, id).Workers)
		assert.Equal(t, []string{id}, reloadUser().WorkerOf)
	})

	t.Run("thêm lần hai không nhân đôi", func(t *testing.T) {
		require.NoError(t, f.service.AddWorkerByEmail(ctx, id, "staff@rpi.edu"))
		assert.Equal(t, []string{"staff1"}, f.reload(t, id).Workers)
		assert.Equal(t, []string{id}, reloadUser().WorkerOf)
	})

	t.Run("worker và owner là hai roster độc lập", func(t *testing.T) {
		require.NoError(t, f.service.AddOwnerByEmail(ctx, id, "staff@rpi.edu"))
		reloaded := f.reload(t, id)
		assert.Equal(t, []string{"staff1"}, reloaded.Workers)
		assert.Equal(t, []string{"staff1"}, reloaded.Owners)
		user := reloadUser()
		assert.Equal(t, []string{id}, user.WorkerOf)
		assert.Equal(t, []string{id}, user.OwnerOf)
	})

	t.Run("gỡ worker giữ nguyên owner", func(t *testing.T) {
		require.NoError(t, f.service.RemoveWorker(ctx, id, "staff1"))
		reloaded := f.reload(t, id)
		assert.Empty(t, reloaded.Workers)
		assert.Equal(t, []string{"staff1"}, reloaded.Owners)
		user := reloadUser()
		assert.Empty(t, user.WorkerOf)
		assert.Equal(t, []string{id}, user.OwnerOf)
	})

	t.Run("gỡ khi không có là no-op thành công", func(t *testing.T) {
		require.NoError(t, f.service.RemoveWorker(ctx, id, "staff1"))
	})

	t.Run("email không tồn tại", func(t *testing.T) {
		err := f.service.AddWorkerByEmail(ctx, id, "nobody@rpi.edu")
		require.Error(t, err)
		var customErr *common.Error
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, "User not found.", customErr.Message)
	})
}
