// Package contact は連絡先のCRUDビジネスロジックを提供する。
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/contactman/internal/model"
	"github.com/hitoshi/contactman/internal/repository"
)

// birthdayLayout は誕生日の入力形式（日付のみ、ISO-8601）。
const birthdayLayout = "2006-01-02"

// Input は連絡先の作成・更新リクエストの入力値。
// Birthdayは "2006-01-02" 形式の文字列。空文字は未設定を意味する。
type Input struct {
	FirstName     string
	LastName      string
	Email         string
	FavoriteColor string
	Birthday      string
	Phone         string
	Address       string
	City          string
	Country       string
}

// Service は連絡先に関するビジネスロジックを提供する。
type Service struct {
	repo repository.ContactRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.ContactRepository) *Service {
	return &Service{repo: repo}
}

// List は全連絡先を返す。フィルタ・ページネーションは行わない。
func (s *Service) List(ctx context.Context) ([]*model.Contact, error) {
	contacts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	return contacts, nil
}

// Get は指定IDの連絡先を取得する。
// IDが不正な形式の場合は検索せずにバリデーションエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Contact, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	if contact == nil {
		return nil, model.NewContactNotFoundError(id)
	}
	return contact, nil
}

// Create は連絡先を新規作成する。
func (s *Service) Create(ctx context.Context, input *Input) (*model.Contact, error) {
	birthday, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contact := &model.Contact{
		ID:            uuid.New().String(),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		FavoriteColor: input.FavoriteColor,
		Birthday:      birthday,
		Phone:         input.Phone,
		Address:       input.Address,
		City:          input.City,
		Country:       input.Country,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	slog.Info("contact created", slog.String("contact_id", contact.ID))
	return contact, nil
}

// Update は指定IDの連絡先を更新する。バリデーション規則はCreateと同一。
// IDと作成日時は変更しない。
func (s *Service) Update(ctx context.Context, id string, input *Input) (*model.Contact, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	birthday, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	if existing == nil {
		return nil, model.NewContactNotFoundError(id)
	}

	contact := &model.Contact{
		ID:            existing.ID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		FavoriteColor: input.FavoriteColor,
		Birthday:      birthday,
		Phone:         input.Phone,
		Address:       input.Address,
		City:          input.City,
		Country:       input.Country,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     time.Now(),
	}

	updated, err := s.repo.Update(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if !updated {
		// FindByIDとUpdateの間に削除された場合
		return nil, model.NewContactNotFoundError(id)
	}

	slog.Info("contact updated", slog.String("contact_id", contact.ID))
	return contact, nil
}

// Delete は指定IDの連絡先を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if !deleted {
		return model.NewContactNotFoundError(id)
	}

	slog.Info("contact deleted", slog.String("contact_id", id))
	return nil
}

// validateID はIDがUUID形式であることを検証する。
// 不正な形式のIDはDBに問い合わせる前に弾く。
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewInvalidContactIDError(id)
	}
	return nil
}

// validateInput は必須項目と形式を検証し、誕生日をパースして返す。
func validateInput(input *Input) (*time.Time, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" {
		return nil, model.NewValidationError("名、姓、メールアドレスは必須です。")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, model.NewValidationError("メールアドレスの形式が正しくありません。")
	}

	if input.Birthday == "" {
		return nil, nil
	}
	t, err := time.Parse(birthdayLayout, input.Birthday)
	if err != nil {
		return nil, model.NewValidationError("誕生日はYYYY-MM-DD形式で指定してください。")
	}
	return &t, nil
}
