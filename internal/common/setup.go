package common

import (
	"context"
	"log"
	"os"
	"strings"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/database"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/session"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		// Only log if the file exists but couldn't be read
		// (godotenv returns an error if .env doesn't exist)
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService *database.Service
	Backend   *backend.Service
	Session   *session.Manager
}

// InitializeLogger sets up the global zap logger. When logFile is non-empty
// the output is teed into a size-rotated file as well.
func InitializeLogger(logFile string) (*zap.Logger, func()) {
	var logger *zap.Logger

	if logFile == "" {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
		core := zapcore.NewTee(
			zapcore.NewCore(encoder, fileWriter, zapcore.InfoLevel),
			zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.InfoLevel),
		)
		logger = zap.New(core)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Connecting to licensing backend", zap.String("base_url", cfg.Backend.BaseURL))
	backendService, err := backend.NewService(cfg.Backend)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	return &Services{
		DbService: dbService,
		Backend:   backendService,
		Session:   session.NewManager(dbService, backendService),
	}, nil
}

// InitializeDatabaseOnly initializes just the local store without the backend
// Useful for offline reads like showing the cached license list
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
