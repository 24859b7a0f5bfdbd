// Package models - Session thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session là phiên làm việc gắn với một bearer token opaque.
// UserID rỗng nghĩa là phiên ẩn danh (chưa đăng nhập).
type Session struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID       string             `json:"user" bson:"user"`
	SessionToken string             `json:"-" bson:"session_token"`
	TimeCreated  int64              `json:"time_created" bson:"time_created"`
	TimeLastUsed int64              `json:"time_last_used" bson:"time_last_used"`
	CreatedAt    int64              `json:"-" bson:"createdAt,omitempty"`
	UpdatedAt    int64              `json:"-" bson:"updatedAt,omitempty"`
}

// IsAnonymous cho biết phiên có gắn với user nào không.
func (s *Session) IsAnonymous() bool {
	return s.UserID == ""
}
