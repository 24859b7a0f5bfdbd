package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// loggers map lưu các logger instances theo tên
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	// config chứa cấu hình logging hiện hành
	config *LogConfig
)

// LogConfig chứa cấu hình cho hệ thống logging
type LogConfig struct {
	Level      string // Log level: debug, info, warn, error
	Format     string // Format: json hoặc text
	Output     string // Output: stdout, file, both
	LogPath    string // Thư mục chứa file log
	MaxSize    int    // Kích thước tối đa mỗi file (MB)
	MaxBackups int    // Số file cũ giữ lại
	MaxAge     int    // Số ngày giữ file cũ
	Compress   bool   // Nén file cũ
}

// DefaultConfig trả về cấu hình mặc định, đọc từ environment variables nếu có
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		LogPath:    "logs",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	return cfg
}

// Init khởi tạo hệ thống logging với cấu hình
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	config = cfg

	// Tạo thư mục logs nếu cần ghi file
	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(cfg.LogPath, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	return nil
}

// GetLogger trả về logger theo tên (app, audit)
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Nếu chưa init, init với config mặc định
	if config == nil {
		if err := Init(nil); err != nil {
			panic(fmt.Sprintf("Failed to initialize logger: %v", err))
		}
	}

	if logger, ok := loggers[name]; ok {
		return logger
	}

	logger := createLogger(name)
	loggers[name] = logger
	return logger
}

// createLogger tạo một logger mới với cấu hình hiện hành
func createLogger(name string) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer

	// File output với rotation
	if config.Output == "file" || config.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(config.LogPath, fmt.Sprintf("%s.log", name)),
			MaxSize:    config.MaxSize,    // MB
			MaxBackups: config.MaxBackups, // Số file cũ giữ lại
			MaxAge:     config.MaxAge,     // Số ngày
			Compress:   config.Compress,   // Nén file cũ
		})
	}

	// Stdout output
	if config.Output == "stdout" || config.Output == "both" {
		writers = append(writers, os.Stdout)
	}

	if len(writers) == 1 {
		logger.SetOutput(writers[0])
	} else if len(writers) > 1 {
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger
}

// GetAppLogger trả về logger chính của ứng dụng
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

// GetAuditLogger trả về logger cho các thao tác cần audit
// (chuyển trạng thái đơn hàng, thay đổi roster, cấp/thu quyền)
func GetAuditLogger() *logrus.Logger {
	return GetLogger("audit")
}
