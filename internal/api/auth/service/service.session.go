package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "campus_commerce/internal/api/auth/models"
	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/utility"
)

// SessionService quản lý phiên làm việc: tạo phiên ẩn danh, touch, gắn và
// gỡ user, dọn phiên hết hạn. Việc dọn chạy inline trước mỗi lần resolve,
// không có background job, nên chi phí do request kích hoạt trả.
type SessionService struct {
	sessions   basesvc.BaseServiceMongo[models.Session]
	idleWindow time.Duration
}

// NewSessionService tạo SessionService từ registry collection và config.
func NewSessionService() (*SessionService, error) {
	col, exist := global.RegistryCollections.Get(global.ColNames.Sessions)
	if !exist {
		return nil, fmt.Errorf("failed to get sessions collection: %v", common.ErrNotFound)
	}
	idleHours := 24
	if global.ServerConfig != nil && global.ServerConfig.SessionIdleHours > 0 {
		idleHours = global.ServerConfig.SessionIdleHours
	}
	return NewSessionServiceWithStore(
		basesvc.NewBaseServiceMongo[models.Session](col),
		time.Duration(idleHours)*time.Hour,
	), nil
}

// NewSessionServiceWithStore tạo SessionService với store và idle window
// chỉ định trực tiếp (test inject store in-memory qua đây).
func NewSessionServiceWithStore(store basesvc.BaseServiceMongo[models.Session], idleWindow time.Duration) *SessionService {
	return &SessionService{
		sessions:   store,
		idleWindow: idleWindow,
	}
}

// purgeIdleSessions xóa mọi phiên không được dùng trong idleWindow.
func (s *SessionService) purgeIdleSessions(ctx context.Context) error {
	cutoff := utility.NowMillis() - s.idleWindow.Milliseconds()
	_, err := s.sessions.DeleteMany(ctx, bson.M{
		"time_last_used": bson.M{"$lte": cutoff},
	})
	return err
}

// Resolve ánh xạ token sang phiên sống. Token rỗng hoặc không khớp phiên nào
// thì tạo phiên ẩn danh mới với token mới; caller phải đưa token trong
// session trả về ngược lại cho client (set cookie). Phiên khớp được touch
// time_last_used. Mỗi lần gọi ghi store tối đa một lần (tạo hoặc touch),
// không tính lần dọn phiên hết hạn chạy trước đó.
func (s *SessionService) Resolve(ctx context.Context, token string) (models.Session, error) {
	var zero models.Session

	if err := s.purgeIdleSessions(ctx); err != nil {
		return zero, err
	}

	if token != "" {
		session, err := s.sessions.FindOneAndUpdate(ctx,
			bson.M{"session_token": token},
			&basesvc.UpdateData{Set: map[string]interface{}{
				"time_last_used": utility.NowMillis(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return zero, err
		}
		// Token không khớp phiên nào (hết hạn đã bị dọn): rơi xuống tạo mới
	}

	now := utility.NowMillis()
	session := models.Session{
		UserID:       "",
		SessionToken: utility.GenerateUniqueID(),
		TimeCreated:  now,
		TimeLastUsed: now,
	}
	created, err := s.sessions.InsertOne(ctx, session)
	if err != nil {
		return zero, err
	}
	return created, nil
}

// Attach gắn phiên với một user (đăng nhập thành công).
func (s *SessionService) Attach(ctx context.Context, token string, userID string) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"session_token": token},
		&basesvc.UpdateData{Set: map[string]interface{}{"user": userID}},
		nil,
	)
	return err
}

// Detach gỡ user khỏi phiên (đăng xuất), phiên trở lại ẩn danh.
func (s *SessionService) Detach(ctx context.Context, token string) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"session_token": token},
		&basesvc.UpdateData{Set: map[string]interface{}{"user": ""}},
		nil,
	)
	return err
}
