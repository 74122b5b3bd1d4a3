package tokens

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/repositories/metadata"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/dbx"
	"github.com/gymhub/gymclient/internal/logging"
)

// SQLiteStore persists the pair in the local metadata table so it survives
// restarts and is visible to other client processes sharing the file.
type SQLiteStore struct {
	db     *sql.DB
	repo   metadata.Repository
	logger logging.Logger
}

func NewSQLiteStore(db *sql.DB, logger logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, repo: metadata.NewSQLiteRepository(db), logger: logger}
}

func (s *SQLiteStore) Get(ctx context.Context) models.TokenPair {
	var pair models.TokenPair

	access, _, err := s.repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		s.logger.Error(ctx, "read access token", "error", err)
		return models.TokenPair{}
	}
	refresh, _, err := s.repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		s.logger.Error(ctx, "read refresh token", "error", err)
		return models.TokenPair{}
	}

	pair.AccessToken = access
	pair.RefreshToken = refresh
	return pair
}

func (s *SQLiteStore) Set(ctx context.Context, accessToken, refreshToken string) error {
	access, refresh := Normalize(accessToken), Normalize(refreshToken)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, _ dbx.DBTX) error {
		if err := s.repo.Set(ctx, common.AccessTokenKey, access); err != nil {
			return err
		}
		if refresh == "" {
			return nil
		}
		return s.repo.Set(ctx, common.RefreshTokenKey, refresh)
	})
	if err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
