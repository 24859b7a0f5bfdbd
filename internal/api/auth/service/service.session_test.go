package authsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "campus_commerce/internal/api/auth/models"
	"campus_commerce/internal/testutil"
)

func newSessionServiceForTest(idleWindow time.Duration) (*SessionService, *testutil.MemoryStore[models.Session]) {
	store := testutil.NewMemoryStore[models.Session]()
	return NewSessionServiceWithStore(store, idleWindow), store
}

func TestSessionResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("token rỗng tạo phiên ẩn danh mới", func(t *testing.T) {
		service, store := newSessionServiceForTest(24 * time.Hour)

		session, err := service.Resolve(ctx, "")
		require.NoError(t, err)
		assert.NotEmpty(t, session.SessionToken)
		assert.True(t, session.IsAnonymous())
		assert.NotZero(t, session.TimeCreated)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("token khớp trả về phiên cũ và touch time_last_used", func(t *testing.T) {
		service, store := newSessionServiceForTest(24 * time.Hour)

		first, err := service.Resolve(ctx, "")
		require.NoError(t, err)

		second, err := service.Resolve(ctx, first.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, first.SessionToken, second.SessionToken)
		assert.GreaterOrEqual(t, second.TimeLastUsed, first.TimeLastUsed)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("token không khớp tạo phiên mới với token khác", func(t *testing.T) {
		service, store := newSessionServiceForTest(24 * time.Hour)

		session, err := service.Resolve(ctx, "deadbeef")
		require.NoError(t, err)
		assert.NotEqual(t, "deadbeef", session.SessionToken)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("phiên quá hạn bị dọn và token của nó tạo phiên mới", func(t *testing.T) {
		// idle window 0: mọi phiên đều quá hạn ngay ở lần resolve kế tiếp
		service, store := newSessionServiceForTest(0)

		first, err := service.Resolve(ctx, "")
		require.NoError(t, err)

		second, err := service.Resolve(ctx, first.SessionToken)
		require.NoError(t, err)
		assert.NotEqual(t, first.SessionToken, second.SessionToken)
		assert.Equal(t, 1, store.Len(), "phiên cũ phải bị xóa khỏi store")
	})

	t.Run("dọn phiên không đụng phiên còn trong hạn", func(t *testing.T) {
		service, store := newSessionServiceForTest(24 * time.Hour)

		first, err := service.Resolve(ctx, "")
		require.NoError(t, err)
		_, err = service.Resolve(ctx, "")
		require.NoError(t, err)
		require.Equal(t, 2, store.Len())

		_, err = service.Resolve(ctx, first.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, 2, store.Len())
	})
}

func TestSessionAttachDetach(t *testing.T) {
	ctx := context.Background()
	service, _ := newSessionServiceForTest(24 * time.Hour)

	session, err := service.Resolve(ctx, "")
	require.NoError(t, err)

	require.NoError(t, service.Attach(ctx, session.SessionToken, "user1"))
	resolved, err := service.Resolve(ctx, session.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "user1", resolved.UserID)
	assert.False(t, resolved.IsAnonymous())

	require.NoError(t, service.Detach(ctx, session.SessionToken))
	resolved, err = service.Resolve(ctx, session.SessionToken)
	require.NoError(t, err)
	assert.True(t, resolved.IsAnonymous())
}
