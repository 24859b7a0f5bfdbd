package utility

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	firebaseApp  *firebase.App
	firebaseAuth *auth.Client
)

// InitFirebase khởi tạo Firebase Admin SDK.
// credentialsPath rỗng sẽ dùng Application Default Credentials.
func InitFirebase(ctx context.Context, projectID, credentialsPath string) error {
	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	cfg := &firebase.Config{}
	if projectID != "" {
		cfg.ProjectID = projectID
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	firebaseApp = app
	firebaseAuth = authClient
	return nil
}

// VerifyIDToken xác minh ID token và trả về UID của người dùng.
// checkRevoked = true: token đã bị thu hồi cũng bị từ chối.
func VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if firebaseAuth == nil {
		return "", fmt.Errorf("firebase auth client is not initialized")
	}
	token, err := firebaseAuth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// CreateFirebaseUser tạo tài khoản mới trên Firebase, trả về UID.
func CreateFirebaseUser(ctx context.Context, email, password, displayName string) (string, error) {
	if firebaseAuth == nil {
		return "", fmt.Errorf("firebase auth client is not initialized")
	}
	params := (&auth.UserToCreate{}).
		Email(email).
		EmailVerified(false).
		Password(password).
		DisplayName(displayName).
		Disabled(false)
	record, err := firebaseAuth.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}
	return record.UID, nil
}
