// Package identity is the authentication-account collaborator. Accounts are
// keyed by email and hold a bcrypt hash; the record store never sees a
// plaintext password.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Accounts struct {
	rows store.Collection[models.IdentityAccount]
}

var _ store.IdentityProvider = (*Accounts)(nil)

func NewAccounts(rows store.Collection[models.IdentityAccount]) *Accounts {
	return &Accounts{rows: rows}
}

// CreateAccount stores an already-hashed secret. A concurrent create for the
// same email resolves to the winner's id.
func (a *Accounts) CreateAccount(ctx context.Context, email, secret string) (string, error) {
	email = normalize(email)
	if email == "" || secret == "" {
		return "", errors.New("identity: email and secret are required")
	}
	if _, err := bcrypt.Cost([]byte(secret)); err != nil {
		return "", fmt.Errorf("identity: secret is not a bcrypt hash: %w", err)
	}

	id, err := a.rows.Insert(ctx, &models.IdentityAccount{
		Email:        email,
		PasswordHash: secret,
	})
	if errors.Is(err, store.ErrConflict) {
		return a.FindAccountByEmail(ctx, email)
	}
	return id, err
}

func (a *Accounts) FindAccountByEmail(ctx context.Context, email string) (string, error) {
	acc, err := a.find(ctx, email)
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

func (a *Accounts) Authenticate(ctx context.Context, email, password string) (string, error) {
	acc, err := a.find(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return acc.ID, nil
}

func (a *Accounts) find(ctx context.Context, email string) (*models.IdentityAccount, error) {
	rows, err := a.rows.Query(ctx, store.Query{
		Filters: []store.Filter{store.Eq("email", normalize(email))},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: identity account %s", store.ErrNotFound, email)
	}
	return &rows[0], nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
