package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactman/internal/contact"
	"github.com/hitoshi/contactman/internal/middleware"
	"github.com/hitoshi/contactman/internal/model"
)

// ContactServiceInterface は連絡先ハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	List(ctx context.Context) ([]*model.Contact, error)
	Get(ctx context.Context, id string) (*model.Contact, error)
	Create(ctx context.Context, input *contact.Input) (*model.Contact, error)
	Update(ctx context.Context, id string, input *contact.Input) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ContactHandler は連絡先管理のHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// contactRequest は連絡先の作成・更新リクエストのボディ。
type contactRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor"`
	Birthday      string `json:"birthday"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

// contactResponse は連絡先のAPIレスポンス。
type contactResponse struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor,omitempty"`
	Birthday      string `json:"birthday,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	Country       string `json:"country,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// toContactResponse はモデルをAPIレスポンスに変換する。
func toContactResponse(c *model.Contact) contactResponse {
	resp := contactResponse{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		FavoriteColor: c.FavoriteColor,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		Country:       c.Country,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
	if c.Birthday != nil {
		resp.Birthday = c.Birthday.Format("2006-01-02")
	}
	return resp
}

// toContactInput はリクエストボディをサービス層の入力値に変換する。
func toContactInput(req *contactRequest) *contact.Input {
	return &contact.Input{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		FavoriteColor: req.FavoriteColor,
		Birthday:      req.Birthday,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
	}
}

// List は全連絡先の一覧を返す。
// GET /contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, toContactResponse(c))
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Get は指定IDの連絡先を返す。
// GET /contacts/{contactID}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toContactResponse(c))
}

// Create は連絡先を新規作成する。
// POST /contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("リクエストボディの形式が正しくありません。"))
		return
	}

	c, err := h.service.Create(r.Context(), toContactInput(&req))
	if err != nil {
		writeAPIError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, toContactResponse(c))
}

// Update は指定IDの連絡先を更新する。
// PUT /contacts/{contactID}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("リクエストボディの形式が正しくありません。"))
		return
	}

	c, err := h.service.Update(r.Context(), id, toContactInput(&req))
	if err != nil {
		writeAPIError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toContactResponse(c))
}

// Delete は指定IDの連絡先を削除する。
// DELETE /contacts/{contactID}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeAPIError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
