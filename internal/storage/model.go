package storage

import "time"

type dbAccount struct {
	ID             int64
	UserName       string
	PasswordHashed string
	CreatedAt      time.Time
}

type dbSession struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	AccountID int64
}

type dbTransaction struct {
	ID        int64
	AccountID int64
	Amount    float64
	Category  string
	Date      string
	Note      string
}
