// Package authdto - input các endpoint domain auth.
package authdto

// SigninInput đầu vào đăng nhập bằng ID token của identity provider.
type SigninInput struct {
	IDToken string `json:"id_token" validate:"required"`
}

// SignupInput đầu vào đăng ký tài khoản mới.
type SignupInput struct {
	Name     string `json:"name" validate:"required,no_xss"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateNameInput đầu vào đổi tên hiển thị.
type UpdateNameInput struct {
	Name string `json:"name" validate:"required,no_xss"`
}
