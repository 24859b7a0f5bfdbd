// Package models - Feedback thuộc domain feedback.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại feedback hợp lệ. FeedbackID là id nhà hàng khi type là restaurant,
// rỗng khi góp ý chung cho hệ thống.
const (
	FeedbackTypeApp        = "app"
	FeedbackTypeRestaurant = "restaurant"
)

// Feedback là một góp ý của người dùng.
type Feedback struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	EntryID      string             `json:"id" bson:"id"`
	UserID       string             `json:"user" bson:"user"`
	FeedbackType string             `json:"feedback_type" bson:"feedback_type"`
	FeedbackID   string             `json:"feedback_id" bson:"feedback_id,omitempty"`
	Message      string             `json:"message" bson:"message"`
	Contact      string             `json:"contact" bson:"contact,omitempty"`
	CreatedAt    int64              `json:"-" bson:"createdAt,omitempty"`
	UpdatedAt    int64              `json:"-" bson:"updatedAt,omitempty"`
}
