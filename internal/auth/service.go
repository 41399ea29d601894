package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
)

// dummyHash is compared against when the username does not exist, so a
// failed lookup costs the same as a failed password check.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Storage is the durable account and session directory the provider
// runs against.
type Storage interface {
	SaveAccount(ctx context.Context, account Account) (int64, error)
	GetAccountByUsername(ctx context.Context, username string) (Account, error)
	SaveSession(ctx context.Context, session Session) error
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, accountId int64, expireAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
}

type Provider struct {
	storage Storage
	hasher  Hasher
}

func NewProvider(s Storage, h Hasher) Provider {
	return Provider{
		storage: s,
		hasher:  h,
	}
}

// Register creates a new account with a hashed secret. The username must
// be free; the storage enforces uniqueness so concurrent registrations
// of the same name cannot both succeed.
func (p *Provider) Register(ctx context.Context, newAccount NewAccount) (int64, error) {
	if err := newAccount.ValidateFields(); err != nil {
		return 0, err
	}

	hashedPassword, err := p.hasher.Hash(newAccount.PasswordPlain)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	account := Account{
		UserName:       newAccount.UserName,
		PasswordHashed: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	accountId, err := p.storage.SaveAccount(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("failed to register account: %w", err)
	}
	return accountId, nil
}

// Verify checks a username/secret pair. Unknown usernames and wrong
// secrets are deliberately indistinguishable to the caller.
func (p *Provider) Verify(ctx context.Context, credentials Credentials) (int64, error) {
	account, err := p.storage.GetAccountByUsername(ctx, credentials.UserName)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			p.hasher.Compare(dummyHash, credentials.PasswordPlain)
			return 0, fmt.Errorf("%w: wrong username or password", appErrors.ErrAuth)
		}
		return 0, fmt.Errorf("failed to look up account: %w", err)
	}

	if !p.hasher.Compare(account.PasswordHashed, credentials.PasswordPlain) {
		return 0, fmt.Errorf("%w: wrong username or password", appErrors.ErrAuth)
	}
	return account.ID, nil
}

// GenerateSession verifies the credentials and issues a fresh token.
func (p *Provider) GenerateSession(ctx context.Context, credentials Credentials) (string, error) {
	accountId, err := p.Verify(ctx, credentials)
	if err != nil {
		return "", err
	}

	tokenByte := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, tokenByte); err != nil {
		return "", fmt.Errorf("failed to generate new session: %w", err)
	}
	token := hex.EncodeToString(tokenByte)

	now := time.Now().UTC()
	session := Session{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: now,
		ExpireAt:  now.AddDate(0, 3, 0),
		AccountID: accountId,
	}

	if err := p.storage.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// CheckSession resolves a token to its account id, sliding the expiry
// forward when the session is close to running out.
func (p *Provider) CheckSession(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: missing session token", appErrors.ErrUnauthorized)
	}

	session, err := p.storage.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return 0, fmt.Errorf("%w: session does not exist, login again", appErrors.ErrUnauthorized)
		}
		return 0, fmt.Errorf("failed to get session by token: %w", err)
	}

	now := time.Now().UTC()
	if !session.ExpireAt.After(now) {
		return 0, fmt.Errorf("%w: session expired, login again", appErrors.ErrUnauthorized)
	}

	daysUntilExpiry := int(session.ExpireAt.Sub(now).Hours() / 24)
	if daysUntilExpiry <= 5 {
		if err := p.storage.UpdateSession(ctx, session.AccountID, now.AddDate(0, 1, 0)); err != nil {
			return 0, fmt.Errorf("failed to update session: %w", err)
		}
	}

	return session.AccountID, nil
}

func (p *Provider) Logout(ctx context.Context, token string) error {
	if err := p.storage.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
