package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/services"
	"github.com/go-chi/chi/v5"
)

type QRHandler struct {
	redeem *services.RedeemService
}

func NewQRHandler(redeem *services.RedeemService) *QRHandler {
	return &QRHandler{redeem: redeem}
}

// GenerateCodeQR renders a redeem code as a QR image
// @Summary Get redeem code QR
// @Description Render a redeem code as a base64 PNG QR image for sharing (admin only)
// @Tags redeem
// @Produce json
// @Security BearerAuth
// @Param code path string true "Redeem code"
// @Success 200 {object} object{code=string,qrImage=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /redeem/codes/{code}/qr [get]
func (h *QRHandler) GenerateCodeQR(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if len(code) != models.CodeLength {
		services.SendErrorResponse(w, "Invalid code", http.StatusNotFound, nil)
		return
	}

	qrImage, err := h.redeem.GenerateCodeQR(r.Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCode) {
			services.SendErrorResponse(w, "Code not found", http.StatusNotFound, nil)
		} else {
			services.SendErrorResponse(w, "Failed to generate QR", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"qrImage": qrImage,
	})
}
