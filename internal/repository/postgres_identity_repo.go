package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/contactman/internal/model"
)

// PostgresIdentityRepo は外部IdPとの紐付け（identitiesテーブル）を扱う。
// OAuthコールバックでの既存ユーザー解決と、CreateWithIdentityの
// 一意性制約違反後の再読込の両方がこのリポジトリの検索を使用する。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

const identityColumns = `id, user_id, provider, provider_user_id, created_at`

// FindByProviderAndProviderUserID は(provider, provider_user_id)の組で
// identityを検索する。identities_provider_user_unique制約により該当は最大1件。
// 見つからない場合は(nil, nil)を返す。
func (r *PostgresIdentityRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE provider = $1 AND provider_user_id = $2`,
		provider, providerUserID,
	).Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderUserID, &identity.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity by provider: %w", err)
	}

	return identity, nil
}

// compile-time interface check
var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
