package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

// 各Postgresリポジトリが対応するインターフェースを満たすことを検証

func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

func TestPostgresIdentityRepo_ImplementsInterface(t *testing.T) {
	var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
}

func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

func TestPostgresContactRepo_ImplementsInterface(t *testing.T) {
	var _ ContactRepository = (*PostgresContactRepo)(nil)
}

func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("expected non-nil user repo")
	}
	if NewPostgresIdentityRepo(nil) == nil {
		t.Error("expected non-nil identity repo")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("expected non-nil session repo")
	}
	if NewPostgresContactRepo(nil) == nil {
		t.Error("expected non-nil contact repo")
	}
}

// mapUniqueViolationが違反した制約ごとに対応するドメインエラーを返すことを検証
func TestMapUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "メールアドレス一意性制約違反",
			err:  &pq.Error{Code: "23505", Constraint: "users_email_unique"},
			want: ErrDuplicateEmail,
		},
		{
			name: "identity一意性制約違反",
			err:  &pq.Error{Code: "23505", Constraint: "identities_provider_user_unique"},
			want: ErrDuplicateIdentity,
		},
		{
			name: "ラップされたメールアドレス一意性制約違反",
			err:  errors.Join(errors.New("insert failed"), &pq.Error{Code: "23505", Constraint: "users_email_unique"}),
			want: ErrDuplicateEmail,
		},
		{
			name: "想定外の制約の一意性制約違反",
			err:  &pq.Error{Code: "23505", Constraint: "users_pkey"},
			want: nil,
		},
		{
			name: "外部キー制約違反",
			err:  &pq.Error{Code: "23503", Constraint: "identities_user_id_fkey"},
			want: nil,
		},
		{
			name: "pq以外のエラー",
			err:  errors.New("connection refused"),
			want: nil,
		},
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapUniqueViolation(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
