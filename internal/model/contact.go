package model

import "time"

// Contact は連絡先レコードを表す。
// firstName、lastName、emailは必須。それ以外は任意項目。
type Contact struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	FavoriteColor string
	Birthday      *time.Time // 日付のみ（時刻は持たない）。未設定はnil。
	Phone         string
	Address       string
	City          string
	Country       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
