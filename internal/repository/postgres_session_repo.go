package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/planit-app/planit/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。Data が空の場合は空のJSONオブジェクトを保存する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_sub, username, access_token, refresh_token, id_token,
		                       token_expiry, data, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		session.ID, session.UserSub, session.Username,
		session.AccessToken, session.RefreshToken, session.IDToken,
		nullTime(session.TokenExpiry), sessionData(session.Data),
		session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	var tokenExpiry sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_sub, username, access_token, refresh_token, id_token,
		        token_expiry, data, expires_at, created_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(
		&session.ID, &session.UserSub, &session.Username,
		&session.AccessToken, &session.RefreshToken, &session.IDToken,
		&tokenExpiry, &session.Data, &session.ExpiresAt, &session.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if tokenExpiry.Valid {
		session.TokenExpiry = tokenExpiry.Time
	}

	return session, nil
}

// UpdateTokens はセッションのトークンを更新する。
func (r *PostgresSessionRepo) UpdateTokens(ctx context.Context, id string, tokens TokenUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET access_token = $2, refresh_token = $3, id_token = $4, token_expiry = $5
		 WHERE id = $1`,
		id, tokens.AccessToken, tokens.RefreshToken, tokens.IDToken, nullTime(tokens.TokenExpiry),
	)
	if err != nil {
		return fmt.Errorf("failed to update session tokens: %w", err)
	}
	return nil
}

// UpdateData はセッションに保存するUI状態を更新する。
func (r *PostgresSessionRepo) UpdateData(ctx context.Context, id string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET data = $2 WHERE id = $1`,
		id, sessionData(data),
	)
	if err != nil {
		return fmt.Errorf("failed to update session data: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func sessionData(data []byte) []byte {
	if len(data) == 0 {
		return []byte("{}")
	}
	return data
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
