package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptは72バイトを超える入力を無視して切り詰めるため、明示的に拒否する。
const maxPasswordBytes = 72

// ErrPasswordMismatch はパスワードがハッシュと一致しないことを表す。
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher はbcryptによるパスワードのハッシュ化と検証を提供する。
// コストを注入可能にし、テストでは低コスト（bcrypt.MinCost）で実行できるようにする。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher は指定コストのPasswordHasherを生成する。
// コストが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードをbcryptでハッシュ化する。
// 出力にはソルトとコストが含まれるため、そのままDBに保存できる。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify は平文パスワードが保存済みハッシュと一致するか検証する。
// 不一致の場合はErrPasswordMismatchを返す。
// bcryptの比較は内部で定数時間比較を行うため、タイミング攻撃の心配はない。
func (h *PasswordHasher) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to compare password hash: %w", err)
	}
	return nil
}
