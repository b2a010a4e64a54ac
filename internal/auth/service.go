// Package auth はローカル認証、OAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/contactman/internal/model"
	"github.com/hitoshi/contactman/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	GivenName      string
	FamilyName     string
	AvatarURL      string
	Provider       string // "google" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// Metrics は認証イベントのメトリクス収集インターフェース。
// metricsパッケージのCollectorが実装する。nilの場合は記録しない。
type Metrics interface {
	RecordLogin(method string)
	RecordRegistration()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	hasher      *PasswordHasher
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	metrics     Metrics
	config      ServiceConfig
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(
	oauth OAuthProvider,
	hasher *PasswordHasher,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	metrics Metrics,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		hasher:      hasher,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// dummyPasswordHash はメールアドレス未登録時のタイミング対策用ハッシュ。
// 未登録ユーザーへのログイン試行でもbcrypt比較を1回実行し、
// 応答時間からアカウントの存在有無を推測されないようにする。
// 比較結果は使用しない（未登録の時点で認証は必ず失敗する）。
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Register はローカル認証ユーザーを新規作成する。
// パスワードは平文では保存せず、bcryptハッシュのみを保存する。
// 登録成功時に自動ログインは行わない。
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, model.NewValidationError("ユーザー名、メールアドレス、パスワードは必須です。")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, model.NewValidationError("メールアドレスの形式が正しくありません。")
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, model.NewValidationError("パスワードが長すぎます。")
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		Name:         username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Login はメールアドレスとパスワードでログインし、セッションを発行する。
// メールアドレス未登録とパスワード不一致は区別せず、同一のエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("メールアドレスとパスワードは必須です。")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil || user.PasswordHash == "" {
		// タイミングを揃えるためダミーハッシュと比較してから失敗を返す
		_ = s.hasher.Verify(dummyPasswordHash, password)
		return nil, model.NewAuthenticationFailedError()
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, model.NewAuthenticationFailedError()
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin("password")
	}
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return session, nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 登録済みユーザーの場合はidentitiesテーブルで既存ユーザーを特定しログインする。
// 同一プロバイダーIDの並行コールバックはDB側のUNIQUE制約で競合し、
// 負けた側は既存レコードを再読込して処理を継続する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. identitiesテーブルで既存ユーザーを検索
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	var userID string

	if identity != nil {
		// 3a. 既存ユーザー: identityからユーザーIDを取得
		userID = identity.UserID
		slog.Info("existing user logged in",
			slog.String("user_id", userID),
			slog.String("provider", userInfo.Provider),
		)
	} else {
		// 3b. 新規ユーザー: usersレコードとidentitiesレコードを同時に作成
		userID, err = s.createFederatedUser(ctx, userInfo)
		if err != nil {
			return nil, err
		}
	}

	// 4. セッションを発行
	session, err := s.createSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin(userInfo.Provider)
	}

	return session, nil
}

// createFederatedUser はOAuthプロファイルからユーザーとidentityを作成する。
// UNIQUE制約違反（並行コールバックとの競合）の場合は既存identityを再読込し、
// そのユーザーIDを返す。
func (s *Service) createFederatedUser(ctx context.Context, userInfo *OAuthUserInfo) (string, error) {
	now := time.Now()

	newUser := &model.User{
		ID:         uuid.New().String(),
		Email:      userInfo.Email,
		Name:       userInfo.Name,
		GivenName:  userInfo.GivenName,
		FamilyName: userInfo.FamilyName,
		AvatarURL:  userInfo.AvatarURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUser.ID,
		Provider:       userInfo.Provider,
		ProviderUserID: userInfo.ProviderUserID,
		CreatedAt:      now,
	}

	err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity)
	if err == nil {
		slog.Info("new user created",
			slog.String("user_id", newUser.ID),
			slog.String("provider", userInfo.Provider),
		)
		return newUser.ID, nil
	}

	// 並行コールバックに負けた側はusers_email_uniqueかidentitiesの
	// UNIQUE制約のどちらに先に当たるか分からない（同一プロファイルなら
	// メールアドレスも同一のため、通常はメール側が先に違反する）。
	// どちらの違反でも先に作成されたidentityを再読込して勝者のユーザーを使う。
	if errors.Is(err, repository.ErrDuplicateIdentity) || errors.Is(err, repository.ErrDuplicateEmail) {
		existing, findErr := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
		if findErr != nil {
			return "", fmt.Errorf("failed to re-read identity after conflict: %w", findErr)
		}
		if existing != nil {
			slog.Info("concurrent callback detected, reusing existing user",
				slog.String("user_id", existing.UserID),
				slog.String("provider", userInfo.Provider),
			)
			return existing.UserID, nil
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// 競合ではなく、同じメールアドレスが別経路（ローカル登録など）で
			// 使用済み。未検証のメール一致だけで既存アカウントには紐付けない。
			slog.Warn("oauth email already registered",
				slog.String("provider", userInfo.Provider),
			)
			return "", model.NewDuplicateEmailError()
		}
		return "", fmt.Errorf("identity conflict but record not found: provider=%s", userInfo.Provider)
	}

	return "", fmt.Errorf("failed to create user and identity: %w", err)
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return model.NewSessionError("セッションIDが指定されていません")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return model.NewSessionError("セッションの削除に失敗しました")
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効な場合はSessionError、ユーザーが削除済みの場合は
// UserNotFoundを返す（リクエストパイプラインをクラッシュさせない）。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewSessionError("セッションIDが指定されていません")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionError("セッションが見つからないか期限切れです")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// ユーザーが削除されている場合はセッションも無効化する
		if delErr := s.sessionRepo.DeleteByID(ctx, sessionID); delErr != nil {
			slog.Warn("failed to invalidate stale session",
				slog.String("session_id", sessionID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
// セッションにはユーザーIDのみを保持する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
