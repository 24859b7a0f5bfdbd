// Package models - User thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User là tài khoản trong hệ thống. Cart và TransactionHistory là danh sách
// tham chiếu ngược tới transaction; bản ghi Transaction mới là nguồn sự thật
// về trạng thái, reader phải kiểm tra lại flag trên từng transaction.
type User struct {
	ID                 primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID             string             `json:"id" bson:"id"`
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email,omitempty"`
	Auth               string             `json:"-" bson:"auth,omitempty"` // UID từ identity provider, không trả về client
	RegisteredOn       int64              `json:"registered_on" bson:"registered_on"`
	Cart               []string           `json:"cart" bson:"cart"`                               // id các transaction in_cart (tham chiếu ngược)
	TransactionHistory []string           `json:"transaction_history" bson:"transaction_history"` // id các transaction đã order, append-only
	Admin              bool               `json:"admin" bson:"admin"`
	OwnerOf            []string           `json:"owner_of" bson:"owner_of"`   // set id nhà hàng user là owner
	WorkerOf           []string           `json:"worker_of" bson:"worker_of"` // set id nhà hàng user là worker
	CreatedAt          int64              `json:"-" bson:"createdAt,omitempty"`
	UpdatedAt          int64              `json:"-" bson:"updatedAt,omitempty"`
}

// IsStaffOf kiểm tra user có là owner hoặc worker của nhà hàng không (không xét admin).
func (u *User) IsStaffOf(restaurantID string) bool {
	for _, id := range u.OwnerOf {
		if id == restaurantID {
			return true
		}
	}
	for _, id := range u.WorkerOf {
		if id == restaurantID {
			return true
		}
	}
	return false
}
