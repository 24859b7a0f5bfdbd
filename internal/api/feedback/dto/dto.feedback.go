// Package feedbackdto - Input cho domain feedback.
package feedbackdto

// FeedbackCreateInput là body của POST /feedback. Restaurant là TÊN nhà hàng
// (client gửi tên hiển thị, không phải id).
type FeedbackCreateInput struct {
	Restaurant string `json:"restaurant" validate:"required,no_xss"`
	Type       string `json:"type" validate:"required,oneof=app restaurant"`
	Feedback   string `json:"feedback" validate:"required,no_xss"`
	Email      string `json:"email" validate:"omitempty,email"`
}
