package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/leasap/portal-server-go/internal/database"
	"github.com/leasap/portal-server-go/internal/model"
)

// CredentialStore holds the signed-in credentials for each browser session.
// Save overwrites the whole record, Clear is idempotent, Find returns
// (nil, nil) for unknown or expired sessions. Only a successful sign-in may
// call Save; only the upstream client (on 401) and explicit logout may call
// Clear.
type CredentialStore interface {
	Save(ctx context.Context, tokenHash string, creds model.Credentials, expiresAt time.Time) error
	Find(ctx context.Context, tokenHash string) (*model.CredentialSession, error)
	Clear(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type credentialStore struct {
	db database.DBTX
}

func NewCredentialStore(db database.DBTX) CredentialStore {
	return &credentialStore{db: db}
}

func (r *credentialStore) Save(ctx context.Context, tokenHash string, creds model.Credentials, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credential_sessions (
			token_hash, access_token, refresh_token, account_id, account_type,
			auth_link, user_name, user_email, user_gender, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (token_hash) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			account_id = EXCLUDED.account_id,
			account_type = EXCLUDED.account_type,
			auth_link = EXCLUDED.auth_link,
			user_name = EXCLUDED.user_name,
			user_email = EXCLUDED.user_email,
			user_gender = EXCLUDED.user_gender,
			expires_at = EXCLUDED.expires_at
	`, tokenHash, creds.AccessToken, creds.RefreshToken, creds.AccountID,
		string(creds.AccountType), creds.AuthLink, creds.Name, creds.Email,
		creds.Gender, expiresAt)
	return err
}

func (r *credentialStore) Find(ctx context.Context, tokenHash string) (*model.CredentialSession, error) {
	var session model.CredentialSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM credential_sessions
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *credentialStore) Clear(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM credential_sessions WHERE token_hash = $1
	`, tokenHash)
	return err
}

func (r *credentialStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM credential_sessions WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
