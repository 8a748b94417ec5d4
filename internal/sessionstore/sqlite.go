package sessionstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nmhoang/libshelf/internal/crypto"
	"github.com/nmhoang/libshelf/internal/entities"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "SESSION_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".libshelf-session-key"
)

// SQLiteConfig configures the sqlite-backed session persistence.
type SQLiteConfig struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte encryption key.
	// If empty, resolution falls back to the environment, then the
	// passphrase, then the key file.
	EncryptionKey string

	// Passphrase derives the key via scrypt when no explicit key is
	// available. The salt lives next to the key file.
	Passphrase string

	// KeyFilePath overrides where the generated key (or scrypt salt)
	// is kept. Defaults to ~/.libshelf-session-key.
	KeyFilePath string
}

// SQLiteStore persists session values in a local sqlite database,
// encrypted at rest. It implements Persistence.
type SQLiteStore struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

// NewSQLiteStore opens (or creates) the database and resolves the
// encryption key.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	encryptor, err := resolveEncryptor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStore{db: db, encryptor: encryptor}, nil
}

// GetItem returns the decrypted value for key. A record that fails
// decryption (rotated key, tampered row) reads as absent.
func (s *SQLiteStore) GetItem(key string) (string, bool) {
	var record entities.SessionRecord
	result := s.db.Where("key = ?", key).First(&record)
	if result.Error != nil {
		return "", false
	}

	value, err := s.encryptor.Decrypt(record.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

// SetItem encrypts and upserts the value for key.
func (s *SQLiteStore) SetItem(key, value string) error {
	encrypted, err := s.encryptor.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	record := &entities.SessionRecord{Key: key, Value: encrypted}
	result := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{
			"value":      encrypted,
			"updated_at": time.Now(),
		}).
		FirstOrCreate(record)
	if result.Error != nil {
		return fmt.Errorf("failed to save session value: %w", result.Error)
	}
	return nil
}

// RemoveItem deletes the value for key. Missing keys are fine.
func (s *SQLiteStore) RemoveItem(key string) error {
	result := s.db.Where("key = ?", key).Delete(&entities.SessionRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session value: %w", result.Error)
	}
	return nil
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Ping()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// resolveEncryptor builds the encryptor from the configured key
// sources: explicit key > environment > passphrase > key file >
// freshly generated key.
func resolveEncryptor(cfg SQLiteConfig) (*crypto.Encryptor, error) {
	if cfg.EncryptionKey != "" {
		return crypto.NewEncryptorFromBase64(cfg.EncryptionKey)
	}

	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return crypto.NewEncryptorFromBase64(envKey)
	}

	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if cfg.Passphrase != "" {
		key, err := deriveFromPassphrase(cfg.Passphrase, keyFilePath+".salt")
		if err != nil {
			return nil, err
		}
		return crypto.NewEncryptor(key)
	}

	// Try an existing key file
	if data, err := os.ReadFile(keyFilePath); err == nil {
		return crypto.NewEncryptorFromBase64(string(data))
	}

	// Generate a new key and keep it for next start
	newKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return nil, fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}
	return crypto.NewEncryptorFromBase64(newKey)
}

// deriveFromPassphrase derives the key with scrypt, persisting the
// salt so the same passphrase keeps decrypting old records.
func deriveFromPassphrase(passphrase, saltPath string) ([]byte, error) {
	salt, err := os.ReadFile(saltPath)
	if errors.Is(err, os.ErrNotExist) {
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(saltPath, salt, 0600); err != nil {
			return nil, fmt.Errorf("failed to save key salt to %s: %w", saltPath, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read key salt: %w", err)
	}

	return crypto.DeriveKey(passphrase, salt)
}
