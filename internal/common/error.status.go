package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK      = 200 // Thành công
	StatusCreated = 201 // Tạo mới thành công

	// Client Error Codes (4xx)
	StatusBadRequest   = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized = 401 // Chưa xác thực
	StatusForbidden    = 403 // Không có quyền truy cập
	StatusNotFound     = 404 // Không tìm thấy tài nguyên
	StatusConflict     = 409 // Xung đột dữ liệu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Authentication)
	SubCategory string // Phân loại con (ví dụ: Session)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Lệch dữ liệu giữa các collection: danh sách tham chiếu ngược không chứa
	// id mà nó được kỳ vọng phải chứa. Chi tiết chỉ ghi log, không trả về client.
	ErrCodeInconsistency = ErrorCode{
		Code:        "SYS_002",
		Category:    "System",
		SubCategory: "Consistency",
		Description: "Tham chiếu ngược giữa các collection bị lệch",
	}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuth = ErrorCode{
		Code:        "AUTH",
		Category:    "Authentication",
		SubCategory: "General",
		Description: "Lỗi xác thực chung",
	}

	ErrCodeAuthSession = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Session",
		Description: "Lỗi liên quan đến phiên làm việc",
	}

	ErrCodeAuthCredentials = ErrorCode{
		Code:        "AUTH_002",
		Category:    "Authentication",
		SubCategory: "Credentials",
		Description: "Lỗi thông tin đăng nhập",
	}

	ErrCodeAuthRole = ErrorCode{
		Code:        "AUTH_003",
		Category:    "Authentication",
		SubCategory: "Role",
		Description: "Lỗi liên quan đến vai trò người dùng",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusinessState = ErrorCode{
		Code:        "BIZ_001",
		Category:    "Business",
		SubCategory: "State",
		Description: "Lỗi trạng thái nghiệp vụ",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi trả về client
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi (chỉ dùng để log)
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	targetErr, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors. Message là chuỗi client thấy được, giữ nguyên wording của API.
var (
	// Authentication Errors
	ErrUnauthorized       = NewError(ErrCodeAuthSession, "Unauthorized request.", StatusUnauthorized, nil)
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Invalid credentials.", StatusBadRequest, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Invalid input supplied.", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Invalid data format.", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Not found.", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Resource already exists.", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Internal server error.", StatusServiceUnavailable, nil)

	// System Errors
	ErrInternal = NewError(ErrCodeInternalServer, "Internal server error.", StatusInternalServerError, nil)
)

// NewInconsistencyError tạo lỗi lệch tham chiếu ngược. Client chỉ nhận thông báo
// chung chung; phần mô tả cụ thể nằm trong Details để ghi log.
func NewInconsistencyError(details string) error {
	return &Error{
		Code:       ErrCodeInconsistency,
		Message:    "Internal server error.",
		StatusCode: StatusInternalServerError,
		Details:    details,
	}
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert lỗi ErrNotFound đã chuẩn hóa
	if errors.Is(err, ErrNotFound) {
		return err
	}

	// mongo.ErrNoDocuments là trường hợp not-found chuẩn của driver
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "Internal server error.", StatusServiceUnavailable, err)
	}

	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		return NewError(ErrCodeDatabase, "Internal server error.", StatusInternalServerError, err)
	}

	// Nếu không nhận diện được lỗi cụ thể, trả về lỗi hệ thống chung
	return NewError(ErrCodeDatabase, "Internal server error.", StatusInternalServerError, err)
}
