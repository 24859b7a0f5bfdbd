package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	models "campus_commerce/internal/api/auth/models"
	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/global"
	"campus_commerce/internal/logger"
	"campus_commerce/internal/utility"
)

// UserService quản lý tài khoản: đăng ký, đăng nhập, đổi tên, tra cứu.
type UserService struct {
	users    basesvc.BaseServiceMongo[models.User]
	identity IdentityProvider

	allowAnyEmail bool
	campusDomain  string
}

// NewUserService tạo UserService từ registry collection và config,
// với Firebase làm identity provider mặc định.
func NewUserService() (*UserService, error) {
	col, exist := global.RegistryCollections.Get(global.ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	allowAny := false
	domain := "@rpi.edu"
	if global.ServerConfig != nil {
		allowAny = global.ServerConfig.AllowAnyEmail
		if global.ServerConfig.CampusDomain != "" {
			domain = global.ServerConfig.CampusDomain
		}
	}
	return NewUserServiceWithStore(
		basesvc.NewBaseServiceMongo[models.User](col),
		NewFirebaseIdentity(),
		allowAny,
		domain,
	), nil
}

// NewUserServiceWithStore tạo UserService với store và identity provider
// chỉ định trực tiếp (dùng trong test).
func NewUserServiceWithStore(store basesvc.BaseServiceMongo[models.User], identity IdentityProvider, allowAnyEmail bool, campusDomain string) *UserService {
	return &UserService{
		users:         store,
		identity:      identity,
		allowAnyEmail: allowAnyEmail,
		campusDomain:  campusDomain,
	}
}

// FindByUserID tìm user theo id nghiệp vụ (không phải ObjectID).
func (s *UserService) FindByUserID(ctx context.Context, userID string) (models.User, error) {
	return s.users.FindOne(ctx, bson.M{"id": userID}, nil)
}

// FindByEmail tìm user theo email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.users.FindOne(ctx, bson.M{"email": email}, nil)
}

// validateCampusEmail kiểm tra email thuộc domain trường và phần local
// chỉ gồm chữ thường và số (format RCS ID). Bỏ qua khi allowAnyEmail bật.
func (s *UserService) validateCampusEmail(email string) error {
	if s.allowAnyEmail {
		return nil
	}
	if !strings.HasSuffix(email, s.campusDomain) {
		return common.NewError(common.ErrCodeValidationInput, "Only RPI emails allowed.", common.StatusBadRequest, nil)
	}
	localPart := email[:strings.LastIndex(email, s.campusDomain)]
	for _, c := range localPart {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return common.NewError(common.ErrCodeValidationInput, "Invalid RCS ID.", common.StatusBadRequest, nil)
		}
	}
	return nil
}

// Signup tạo tài khoản mới: kiểm tra email chưa dùng và đúng domain trường,
// tạo account bên identity provider rồi tạo bản ghi User với các danh sách rỗng.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (models.User, error) {
	var zero models.User

	exists, err := s.users.DocumentExists(ctx, bson.M{"email": email})
	if err != nil {
		return zero, err
	}
	if exists {
		return zero, common.NewError(common.ErrCodeValidationInput, "Account already exists.", common.StatusBadRequest, nil)
	}

	if err := s.validateCampusEmail(email); err != nil {
		return zero, err
	}

	uid, err := s.identity.CreateAccount(ctx, email, password, name)
	if err != nil {
		logger.GetAppLogger().WithField("email", email).WithError(err).Warn("Signup: tạo account bên identity provider thất bại")
		return zero, common.NewError(common.ErrCodeAuthCredentials, "Failed to create account.", common.StatusBadRequest, err)
	}

	user := models.User{
		UserID:             utility.GenerateUniqueID(),
		Name:               name,
		Email:              email,
		Auth:               uid,
		RegisteredOn:       utility.NowMillis(),
		Cart:               []string{},
		TransactionHistory: []string{},
		Admin:              false,
		OwnerOf:            []string{},
		WorkerOf:           []string{},
	}
	created, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(map[string]interface{}{
		"user_id": created.UserID,
		"email":   created.Email,
	}).Info("Tài khoản mới được tạo")
	return created, nil
}

// Signin xác minh ID token với identity provider và trả về user tương ứng.
func (s *UserService) Signin(ctx context.Context, idToken string) (models.User, error) {
	var zero models.User

	uid, err := s.identity.VerifyToken(ctx, idToken)
	if err != nil {
		return zero, common.NewError(common.ErrCodeAuthCredentials, "Failed to verify login.", common.StatusBadRequest, err)
	}

	user, err := s.users.FindOne(ctx, bson.M{"auth": uid}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Provider biết tài khoản này nhưng hệ thống thì không
			return zero, common.NewError(common.ErrCodeAuthCredentials, "Invalid credentials.", common.StatusBadRequest, nil)
		}
		return zero, err
	}
	return user, nil
}

// UpdateName đổi tên hiển thị của user, trả về tên mới.
func (s *UserService) UpdateName(ctx context.Context, userID string, name string) (models.User, error) {
	return s.users.UpdateOne(ctx,
		bson.M{"id": userID},
		&basesvc.UpdateData{Set: map[string]interface{}{"name": name}},
		nil,
	)
}

// GetVisible trả về user được yêu cầu nếu viewer có quyền thấy: user thường
// chỉ thấy được staff/admin; staff và admin thấy tất cả. Không đủ quyền trả
// về not-found như khi user không tồn tại, tránh lộ sự tồn tại của tài khoản.
func (s *UserService) GetVisible(ctx context.Context, viewer *models.User, targetUserID string) (models.User, error) {
	var zero models.User

	target, err := s.FindByUserID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return zero, common.NewError(common.ErrCodeDatabaseQuery, "User not found.", common.StatusNotFound, nil)
		}
		return zero, err
	}

	targetIsPlain := !target.Admin && len(target.OwnerOf) == 0 && len(target.WorkerOf) == 0
	viewerIsPlain := viewer == nil ||
		(!viewer.Admin && len(viewer.OwnerOf) == 0 && len(viewer.WorkerOf) == 0)
	if targetIsPlain && viewerIsPlain {
		return zero, common.NewError(common.ErrCodeDatabaseQuery, "User not found.", common.StatusNotFound, nil)
	}

	return target, nil
}

// PromoteAdmin bật cờ admin toàn cục cho user (dùng khi seed dữ liệu init).
func (s *UserService) PromoteAdmin(ctx context.Context, userID string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"id": userID},
		&basesvc.UpdateData{Set: map[string]interface{}{"admin": true}},
		nil,
	)
	return err
}
