package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// DocumentStore loads and saves the whole warnings document.
type DocumentStore interface {
	Load() (*model.WarningData, error)
	Save(data *model.WarningData) error
	Close() error
}

// Open returns the store selected by cfg.Backend.
func Open(cfg model.StorageConfig) (DocumentStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "json":
		log.Info().Str("path", cfg.JSONPath).Msg("Using JSON warnings store")
		return NewJSONStore(cfg.JSONPath), nil
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("Using sqlite warnings store")
		return InitSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func (s *JSONStore) Close() error {
	return nil
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
