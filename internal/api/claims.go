package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pebbling/spaarpot/internal/gifting"
	"github.com/pebbling/spaarpot/internal/model"
)

// ClaimsHandler handles the claim lifecycle endpoints.
type ClaimsHandler struct {
	Service *gifting.Service
	Users   gifting.Directory
}

type createClaimRequest struct {
	TransactionID string `json:"transaction_id"`
	GiftTypeID    int64  `json:"gift_type_id"`
	Quantity      int    `json:"quantity"`
	ReceiverEmail string `json:"receiver_email"`
	Message       string `json:"message"`
}

type resolveRequest struct {
	Action        string `json:"action"`
	ReceiverEmail string `json:"receiver_email"`
}

type statusResponse struct {
	TransactionID string            `json:"transaction_id"`
	Status        model.ClaimStatus `json:"status"`
}

// Create handles POST /api/claims. The caller is the sender.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Create(r.Context(), gifting.CreateRequest{
		TransactionID: req.TransactionID,
		SenderID:      claims.UserID,
		GiftTypeID:    req.GiftTypeID,
		Quantity:      req.Quantity,
		ReceiverEmail: req.ReceiverEmail,
		Message:       req.Message,
	})
	if err != nil {
		writeError(w, err, "failed to create claim")
		return
	}

	slog.Info("claim created",
		"user", claims.Email,
		"transaction_id", c.TransactionID,
		"gift_type", c.GiftTypeID,
		"quantity", c.Quantity,
	)
	jsonResponse(w, http.StatusCreated, c)
}

// Get handles GET /api/claims/{id}. Anyone holding the link may preview
// the gift before resolving it.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Claim(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "failed to get claim")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Status handles GET /api/claims/{id}/status.
func (h *ClaimsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status, err := h.Service.Status(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to get claim status")
		return
	}
	jsonResponse(w, http.StatusOK, statusResponse{TransactionID: id, Status: status})
}

// Cancel handles DELETE /api/claims/{id}. Only the sender or an admin may
// withdraw a gift.
func (h *ClaimsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	existing, err := h.Service.Claim(r.Context(), id)
	if err != nil && errorStatus(err) == http.StatusInternalServerError {
		writeError(w, err, "failed to get claim")
		return
	}
	if existing != nil && existing.SenderID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "only the sender can cancel a gift")
		return
	}

	c, err := h.Service.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to cancel claim")
		return
	}

	slog.Info("claim cancelled", "user", claims.Email, "transaction_id", id, "quantity", c.Quantity)
	jsonResponse(w, http.StatusOK, c)
}

// Resolve handles POST /api/claims/{id}/resolve. Redeeming needs only the
// link. Saving to credit needs a receiver: the authenticated caller, or
// else the account registered for receiver_email.
func (h *ClaimsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, err := gifting.ParseAction(req.Action)
	if err != nil {
		writeError(w, err, "invalid action")
		return
	}

	d := gifting.Decision{Action: action, ClaimIP: clientIP(r)}
	caller := GetClaims(r.Context())
	switch {
	case caller != nil:
		d.ReceiverID = caller.UserID
	case strings.TrimSpace(req.ReceiverEmail) != "":
		email, err := model.NormalizeEmail(req.ReceiverEmail)
		if err != nil {
			writeError(w, err, "invalid receiver")
			return
		}
		u, err := h.Users.GetUserByEmail(r.Context(), email)
		if err != nil {
			writeError(w, err, "failed to look up receiver")
			return
		}
		if u == nil {
			jsonError(w, http.StatusNotFound, "no account for receiver email")
			return
		}
		d.ReceiverID = u.ID
	case action == gifting.SaveToCredit:
		jsonError(w, http.StatusUnauthorized, "log in or give receiver_email to save to credit")
		return
	}

	res, err := h.Service.Resolve(r.Context(), id, d)
	if err != nil {
		writeError(w, err, "failed to resolve claim")
		return
	}

	slog.Info("claim resolved",
		"transaction_id", id,
		"status", res.Claim.Status,
		"receiver", res.Claim.ReceiverEmail,
		"credit", res.CreditAdded.StringFixed(2),
		"category", res.Category,
	)
	jsonResponse(w, http.StatusOK, res)
}
