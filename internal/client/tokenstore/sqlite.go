package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/careercompass/internal/common"
	"github.com/dmitrijs2005/careercompass/internal/cryptox"
	"github.com/dmitrijs2005/careercompass/internal/dbx"
	"github.com/dmitrijs2005/careercompass/internal/logging"
)

// SQLiteStore keeps the entries in the token_store table. When a sealer is
// configured, values are encrypted with the storage key as associated data.
type SQLiteStore struct {
	db     *sql.DB
	sealer *cryptox.Sealer
	log    logging.Logger
}

// NewSQLiteStore returns a store over a migrated database. sealer may be nil,
// in which case values are stored in plain text.
func NewSQLiteStore(db *sql.DB, sealer *cryptox.Sealer, log logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer, log: log.With("component", "tokenstore")}
}

func (s *SQLiteStore) Save(ctx context.Context, tokens models.TokenPair, user models.User) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return s.put(ctx, map[string][]byte{
		common.AccessTokenKey:  []byte(tokens.AccessToken),
		common.RefreshTokenKey: []byte(tokens.RefreshToken),
		common.UserDataKey:     userData,
	})
}

func (s *SQLiteStore) UpdateTokens(ctx context.Context, tokens models.TokenPair) error {
	entries := map[string][]byte{common.AccessTokenKey: []byte(tokens.AccessToken)}
	if tokens.RefreshToken != "" {
		entries[common.RefreshTokenKey] = []byte(tokens.RefreshToken)
	}
	return s.put(ctx, entries)
}

func (s *SQLiteStore) AccessToken(ctx context.Context) (string, bool) {
	return s.getString(ctx, common.AccessTokenKey)
}

func (s *SQLiteStore) RefreshToken(ctx context.Context) (string, bool) {
	return s.getString(ctx, common.RefreshTokenKey)
}

func (s *SQLiteStore) User(ctx context.Context) (*models.User, bool) {
	raw, ok := s.get(ctx, common.UserDataKey)
	if !ok {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.log.Warn(ctx, "stored user profile is unreadable", "error", err)
		return nil, false
	}
	return &u, true
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)
	return repo.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey, common.UserDataKey)
}

// put seals entries and writes them in one transaction.
func (s *SQLiteStore) put(ctx context.Context, entries map[string][]byte) error {
	if s.sealer != nil {
		for key, value := range entries {
			entries[key] = s.sealer.Seal(value, []byte(key))
		}
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Put(ctx, entries)
	})
}

func (s *SQLiteStore) get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "token store unavailable", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	if s.sealer == nil {
		return raw, true
	}
	plain, err := s.sealer.Open(raw, []byte(key))
	if err != nil {
		s.log.Warn(ctx, "token store entry cannot be opened", "key", key, "error", err)
		return nil, false
	}
	return plain, true
}

func (s *SQLiteStore) getString(ctx context.Context, key string) (string, bool) {
	v, ok := s.get(ctx, key)
	if !ok || len(v) == 0 {
		return "", false
	}
	return string(v), true
}
