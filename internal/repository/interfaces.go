// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/contactman/internal/model"
)

// ストア層の一意性制約違反を表すセンチネルエラー。
// サービス層はこれらを検出して競合時の再読込や409応答に変換する。
var (
	// ErrDuplicateEmail はusersテーブルのメールアドレス一意性違反を表す。
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateIdentity はidentitiesテーブルの(provider, provider_user_id)一意性違反を表す。
	ErrDuplicateIdentity = errors.New("identity already registered")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。大文字小文字は区別しない。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はローカル認証ユーザーを作成する。
	// メールアドレスが既に登録されている場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	// (provider, provider_user_id)が既に存在する場合はErrDuplicateIdentityを返す。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ContactRepository は連絡先データの永続化インターフェース。
type ContactRepository interface {
	// List は全連絡先を作成日時昇順で返す。
	List(ctx context.Context) ([]*model.Contact, error)

	// FindByID は指定IDの連絡先を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Contact, error)

	// Create は連絡先を作成する。
	Create(ctx context.Context, contact *model.Contact) error

	// Update は連絡先を更新する。対象が存在しない場合はfalseを返す。
	Update(ctx context.Context, contact *model.Contact) (bool, error)

	// Delete は指定IDの連絡先を削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)
}
