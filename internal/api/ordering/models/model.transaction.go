// Package models - Transaction thuộc domain ordering.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionItem là một dòng trong giỏ hàng / đơn hàng.
type TransactionItem struct {
	ItemID    string `json:"item_id" bson:"item_id"`
	VariantID string `json:"variant_id" bson:"variant_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Transaction là giỏ hàng (InCart=true) hoặc đơn hàng (InCart=false).
// Completed và Canceled loại trừ lẫn nhau và là latch một chiều:
// đã bật thì không bao giờ tắt lại. Bản ghi này là nguồn sự thật duy nhất
// về trạng thái; các danh sách tham chiếu trong User/Restaurant chỉ là
// follower best-effort.
type Transaction struct {
	ID            primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	TransactionID string             `json:"id" bson:"id"`
	Items         []TransactionItem  `json:"items" bson:"items"`
	InCart        bool               `json:"in_cart" bson:"in_cart"`
	Completed     bool               `json:"completed" bson:"completed"`
	Canceled      bool               `json:"canceled" bson:"canceled"`
	TimeOrdered   int64              `json:"time_ordered" bson:"time_ordered,omitempty"`
	TimeCompleted int64              `json:"time_completed" bson:"time_completed,omitempty"`
	RestaurantID  string             `json:"restaurant" bson:"restaurant"`
	UserID        string             `json:"user" bson:"user"`
	Workers       []string           `json:"workers" bson:"workers"` // set id user nhận xử lý đơn
	CreatedAt     int64              `json:"-" bson:"createdAt,omitempty"`
	UpdatedAt     int64              `json:"-" bson:"updatedAt,omitempty"`
}

// IsTerminal cho biết transaction đã ở trạng thái kết thúc chưa.
func (t *Transaction) IsTerminal() bool {
	return t.Completed || t.Canceled
}

// IsLiveCart cho biết transaction có còn là giỏ hàng sống không.
func (t *Transaction) IsLiveCart() bool {
	return t.InCart && !t.IsTerminal()
}
