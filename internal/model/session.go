package model

import (
	"time"
)

type AccountType string

const (
	AccountTypeRealtor         AccountType = "realtor"
	AccountTypePropertyManager AccountType = "property_manager"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeRealtor || t == AccountTypePropertyManager
}

// Credentials is the full set of values a signed-in browser session holds.
// Fields are write-once per login: a new sign-in overwrites the record
// wholesale, nothing mutates individual fields in place.
type Credentials struct {
	AccessToken  string      `db:"access_token" json:"accessToken"`
	RefreshToken string      `db:"refresh_token" json:"refreshToken"`
	AccountID    string      `db:"account_id" json:"accountId"`
	AccountType  AccountType `db:"account_type" json:"accountType"`
	AuthLink     string      `db:"auth_link" json:"authLink"`
	Name         string      `db:"user_name" json:"name"`
	Email        string      `db:"user_email" json:"email"`
	Gender       string      `db:"user_gender" json:"gender"`
}

// Authenticated reports whether the session passes the navigation gate.
// Token presence is necessary but not sufficient; the backend remains the
// source of truth and rejects stale tokens with 401.
func (c Credentials) Authenticated() bool {
	return c.AccessToken != ""
}

func (c Credentials) IsPropertyManager() bool {
	return c.AccountType == AccountTypePropertyManager
}

// CredentialSession is a stored credential record keyed by the hash of the
// opaque token the browser carries in its session cookie.
type CredentialSession struct {
	TokenHash string `db:"token_hash" json:"-"`
	Credentials
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
