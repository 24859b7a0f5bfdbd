// Package models - MenuItem thuộc domain catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant là một biến thể của món (size, topping). Giá giữ dạng chuỗi theo
// format client gửi lên, hệ thống không tính toán trên giá.
type Variant struct {
	Name     string `json:"name" bson:"name"`
	PriceUSD string `json:"price_usd" bson:"price_usd"`
	VariantID string `json:"id" bson:"id"`
}

// MenuItem là một món trong thực đơn của đúng một nhà hàng.
type MenuItem struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ItemID       string             `json:"id" bson:"id"`
	Name         string             `json:"name" bson:"name"`
	Desc         string             `json:"desc" bson:"desc,omitempty"`
	Variants     []Variant          `json:"variants" bson:"variants"`
	RestaurantID string             `json:"restaurant" bson:"restaurant"`
	Active       bool               `json:"active" bson:"active"`
	CreatedAt    int64              `json:"-" bson:"createdAt,omitempty"`
	UpdatedAt    int64              `json:"-" bson:"updatedAt,omitempty"`
}

// FindVariant tìm variant theo id, trả về nil nếu không có.
func (m *MenuItem) FindVariant(variantID string) *Variant {
	for i := range m.Variants {
		if m.Variants[i].VariantID == variantID {
			return &m.Variants[i]
		}
	}
	return nil
}
