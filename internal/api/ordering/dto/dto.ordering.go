// Package orderingdto - input các endpoint domain ordering.
package orderingdto

import (
	catalogdto "campus_commerce/internal/api/catalog/dto"
)

// CartSetInput đầu vào tạo / thay thế giỏ hàng cho một nhà hàng.
type CartSetInput struct {
	Restaurant string                      `json:"restaurant" validate:"required"`
	Items      []catalogdto.OrderLineInput `json:"items" validate:"required,dive"`
}

// CartUpdateInput đầu vào thay danh sách món của một giỏ hàng đang sống.
type CartUpdateInput struct {
	CartID string                      `json:"cart_id" validate:"required"`
	Items  []catalogdto.OrderLineInput `json:"items" validate:"required,dive"`
}

// CheckoutInput đầu vào chuyển giỏ hàng thành đơn hàng.
type CheckoutInput struct {
	CartID string `json:"cart_id" validate:"required"`
}

// WorkerToggleInput đầu vào bật/tắt nhận xử lý đơn của chính caller.
// Remove là chuỗi "true"/"false" theo contract của client.
type WorkerToggleInput struct {
	Remove string `json:"remove" validate:"required,oneof=true false"`
}
