package global

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("campus_localpart", validateCampusLocalPart)
}

// validateNoXSS kiểm tra XSS trong các field người dùng nhập tự do
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateCampusLocalPart kiểm tra phần local của email campus:
// chỉ cho phép chữ thường và chữ số (định dạng RCS ID).
func validateCampusLocalPart(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, r := range value {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return len(value) > 0
}
