package auth

import (
	"fmt"
	"regexp"
	"time"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
)

const (
	MAX_LENGTH_USERNAME = 30
	MAX_PASSWORD_LENGTH = 72 // bcrypt input limit
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{1,30}$`)

// Account is a registered identity. The secret is stored hashed only,
// never in plain form.
type Account struct {
	ID             int64
	UserName       string
	PasswordHashed string
	CreatedAt      time.Time
}

type NewAccount struct {
	UserName      string
	PasswordPlain string
}

func (newAccount NewAccount) ValidateFields() error {
	if newAccount.UserName == "" {
		return fmt.Errorf("%w: username cannot be empty", appErrors.ErrValidation)
	}
	if !usernameRegex.MatchString(newAccount.UserName) {
		return fmt.Errorf("%w: username may only contain letters, digits and underscores, maximum length is %d", appErrors.ErrValidation, MAX_LENGTH_USERNAME)
	}
	if newAccount.PasswordPlain == "" {
		return fmt.Errorf("%w: password cannot be empty", appErrors.ErrValidation)
	}
	if len(newAccount.PasswordPlain) > MAX_PASSWORD_LENGTH {
		return fmt.Errorf("%w: password so long, maximum length is %d", appErrors.ErrValidation, MAX_PASSWORD_LENGTH)
	}
	return nil
}

type Credentials struct {
	UserName      string
	PasswordPlain string
}

type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	AccountID int64
}
