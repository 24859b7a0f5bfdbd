package authsvc

import (
	"context"

	"campus_commerce/internal/utility"
)

// IdentityProvider xác minh danh tính bên ngoài: đổi một bearer credential
// (Firebase ID token) lấy một UID ổn định, và tạo tài khoản mới bên provider.
// Service chỉ phụ thuộc interface này; test inject bản fake.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, idToken string) (uid string, err error)
	CreateAccount(ctx context.Context, email, password, displayName string) (uid string, err error)
}

// firebaseIdentity là IdentityProvider mặc định, backed bởi Firebase Auth.
type firebaseIdentity struct{}

// NewFirebaseIdentity trả về IdentityProvider dùng Firebase Admin SDK
// (đã init qua utility.InitFirebase).
func NewFirebaseIdentity() IdentityProvider {
	return firebaseIdentity{}
}

func (firebaseIdentity) VerifyToken(ctx context.Context, idToken string) (string, error) {
	return utility.VerifyIDToken(ctx, idToken)
}

func (firebaseIdentity) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	return utility.CreateFirebaseUser(ctx, email, password, displayName)
}
