package utility

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// GenerateUniqueID sinh một định danh ngẫu nhiên 32 ký tự hex (16 bytes).
// Dùng cho id của mọi thực thể nghiệp vụ và token phiên.
// crypto/rand.Read không bao giờ trả lỗi từ Go 1.24.
func GenerateUniqueID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// NowMillis trả về thời gian hiện tại theo Unix milliseconds.
// Toàn bộ timestamp trong hệ thống dùng chung đơn vị này.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// ToMap chuyển đổi một struct sang bson.M, giữ nguyên bson tags.
func ToMap(data interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}
	result := bson.M{}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}
