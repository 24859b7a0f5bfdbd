// Package models - Restaurant thuộc domain catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuCategory là một mục trong thực đơn: tên, cờ active và danh sách id món
// theo thứ tự hiển thị. Thứ tự thay đổi bằng các thao tác swap/remove có kiểm
// tra biên chỉ số, không thao tác mảng trực tiếp từ handler.
type MenuCategory struct {
	Name   string   `json:"name" bson:"name"`
	Items  []string `json:"items" bson:"items"`
	Active bool     `json:"active" bson:"active"`
}

// Restaurant là nhà hàng. Owners và Workers là set id user.
// CurrentTransactions / PastTransactions là tham chiếu ngược tới transaction:
// một id chỉ nằm trong đúng một danh sách tại một thời điểm (cart thì không
// nằm trong danh sách nào).
type Restaurant struct {
	ID                  primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RestaurantID        string             `json:"id" bson:"id"`
	Name                string             `json:"name" bson:"name"`
	Image               string             `json:"image" bson:"image,omitempty"`
	Owners              []string           `json:"owners" bson:"owners"`
	Workers             []string           `json:"workers" bson:"workers"`
	MenuCategories      []MenuCategory     `json:"menu_categories" bson:"menu_categories"`
	CurrentTransactions []string           `json:"current_transactions" bson:"current_transactions"`
	PastTransactions    []string           `json:"past_transactions" bson:"past_transactions"`
	CreatedAt           int64              `json:"-" bson:"createdAt,omitempty"`
	UpdatedAt           int64              `json:"-" bson:"updatedAt,omitempty"`
}
