// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザー（プリンシパル）を表す。
// ローカル認証（username + email + パスワードハッシュ）とOAuth連携
// （identitiesテーブル経由）のどちらか、または両方を持ちうる。
type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	GivenName    string
	FamilyName   string
	AvatarURL    string
	PasswordHash string // ローカル認証を持たないユーザーは空文字。レスポンスには絶対に含めない。
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// (provider, provider_user_id)はDB側のUNIQUE制約で一意性を保証する。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// セッションにはユーザーIDのみを保持し、ユーザー情報は毎回DBから解決する。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
