package global

import (
	"campus_commerce/config"
	"campus_commerce/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName chứa tên các collection trong MongoDB
type CollectionName struct {
	Users        string // Tên collection cho người dùng
	Sessions     string // Tên collection cho phiên làm việc
	Restaurants  string // Tên collection cho nhà hàng
	MenuItems    string // Tên collection cho món ăn
	Transactions string // Tên collection cho giỏ hàng / đơn hàng
	Feedback     string // Tên collection cho góp ý
}

// Các biến toàn cục
var Validate *validator.Validate                            // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                           // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration                      // Cấu hình của server
var ColNames CollectionName = *new(CollectionName)          // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
