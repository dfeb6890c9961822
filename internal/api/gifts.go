package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/pebbling/spaarpot/internal/gifting"
	"github.com/pebbling/spaarpot/internal/imaging"
	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

// GiftsHandler handles catalog, inventory and credit endpoints.
type GiftsHandler struct {
	DB      *sql.DB
	Service *gifting.Service
}

type purchaseRequest struct {
	Items []gifting.PurchaseItem `json:"items"`
}

type spendRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type spendResponse struct {
	Category  string          `json:"category"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Categories handles GET /api/gifts/categories.
func (h *GiftsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Categories())
}

// Types handles GET /api/gifts/types. Active gift types are grouped by
// category.
func (h *GiftsHandler) Types(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Service.Catalog().ByCategory())
}

// UploadImage handles PUT /api/gifts/types/{id}/image.
func (h *GiftsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid gift type id")
		return
	}
	if _, ok := h.Service.Catalog().Lookup(id); !ok {
		jsonError(w, http.StatusNotFound, "gift type not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	art, err := imaging.Process(file, imaging.ArtworkDimension)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			jsonError(w, http.StatusBadRequest, "could not read image")
			return
		}
		writeError(w, err, "failed to process image")
		return
	}

	if err := store.SetGiftTypeImage(r.Context(), h.DB, id, art.Data, art.MIME); err != nil {
		writeError(w, err, "failed to save image")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("gift type image uploaded", "user", claims.Email, "gift_type", id, "bytes", len(art.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/gifts/types/{id}/image.
func (h *GiftsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid gift type id")
		return
	}

	data, mime, err := store.GetGiftTypeImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Purchase handles POST /api/gifts/purchase.
func (h *GiftsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Purchase(r.Context(), claims.UserID, req.Items)
	if err != nil {
		writeError(w, err, "failed to record purchase")
		return
	}

	slog.Info("purchase recorded", "user", claims.Email, "purchase", p.ID, "items", p.ItemsCount, "total", p.TotalAmount.StringFixed(2))
	jsonResponse(w, http.StatusCreated, p)
}

// Purchases handles GET /api/gifts/purchases.
func (h *GiftsHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.Service.Purchases(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, err, "failed to list purchases")
		return
	}
	jsonResponse(w, http.StatusOK, purchases)
}

// Inventory handles GET /api/gifts/inventory.
func (h *GiftsHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Inventory(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, err, "failed to list inventory")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Credits handles GET /api/gifts/credits.
func (h *GiftsHandler) Credits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.Service.Credits(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, err, "failed to list credits")
		return
	}
	jsonResponse(w, http.StatusOK, credits)
}

// SpendCredit handles POST /api/gifts/credits/spend.
func (h *GiftsHandler) SpendCredit(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req spendRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	remaining, err := h.Service.SpendCredit(r.Context(), claims.UserID, req.Category, req.Amount)
	if err != nil {
		writeError(w, err, "failed to spend credit")
		return
	}

	slog.Info("credit spent", "user", claims.Email, "category", req.Category, "amount", req.Amount.StringFixed(2))
	jsonResponse(w, http.StatusOK, spendResponse{Category: req.Category, Spent: req.Amount, Remaining: remaining})
}

// Sent handles GET /api/gifts/sent.
func (h *GiftsHandler) Sent(w http.ResponseWriter, r *http.Request) {
	sent, err := h.Service.Sent(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, err, "failed to list sent gifts")
		return
	}
	if sent == nil {
		sent = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, sent)
}

// Received handles GET /api/gifts/received.
func (h *GiftsHandler) Received(w http.ResponseWriter, r *http.Request) {
	received, err := h.Service.Received(r.Context(), GetClaims(r.Context()).Email)
	if err != nil {
		writeError(w, err, "failed to list received gifts")
		return
	}
	if received == nil {
		received = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, received)
}

// Stats handles GET /api/gifts/stats.
func (h *GiftsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, err, "failed to get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
