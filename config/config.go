package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Các giới hạn nghiệp vụ (số lượng món tối đa, thời gian hết hạn phiên) là
// giá trị cấu hình có default, không phải hằng số cứng.
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo dữ liệu mẫu
	AdminEmail            string `env:"ADMIN_EMAIL"`                               // Email được nâng quyền admin khi chạy InitMode
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`  // Cho phép gửi credentials (cookie phiên)
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Giới hạn nghiệp vụ giỏ hàng / phiên
	CartQuantityMax  int `env:"CART_QTY_MAX" envDefault:"50"`      // Số lượng tối đa cho một món trong giỏ
	SessionIdleHours int `env:"SESSION_IDLE_HOURS" envDefault:"24"` // Phiên không dùng quá số giờ này sẽ bị xóa

	// Ràng buộc email khi đăng ký tài khoản
	AllowAnyEmail bool   `env:"ALLOW_ANY_EMAIL" envDefault:"false"` // true = bỏ ràng buộc domain email
	CampusDomain  string `env:"CAMPUS_EMAIL_DOMAIN" envDefault:"@rpi.edu"` // Domain email được phép đăng ký

	// Firebase Configuration (nhà cung cấp xác minh danh tính)
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`       // Firebase Project ID
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"` // Đường dẫn đến service account JSON

	// Thư mục lưu ảnh nhà hàng (chỉ lưu path, việc serve ảnh là tầng ngoài)
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ thư mục hiện tại
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// File env không bắt buộc khi các biến đã có sẵn trong môi trường
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
