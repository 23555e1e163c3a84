package controllers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
)

// CheckinController exposes the QR/token entry points: token issuance with a
// scannable QR image, offline validation, and redemption (scan or browser).
type CheckinController struct {
	tokens       *services.TokenService
	reservations *services.ReservationService
	baseURL      string
}

func NewCheckinController(tokens *services.TokenService, reservations *services.ReservationService, baseURL string) *CheckinController {
	return &CheckinController{tokens: tokens, reservations: reservations, baseURL: baseURL}
}

const qrImageSize = 300

// GetReservationQRCode -> check-in URL, token and QR PNG for a reservation.
// guest_id selects an individual group member's token.
func (cc *CheckinController) GetReservationQRCode(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	if _, err := cc.reservations.GetByID(id); err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	guestID := uint(0)
	if raw := c.Query("guest_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, &utils.ValidationError{
				Field:  "guest_id",
				Reason: "must be a numeric id",
			})
			return
		}
		guestID = uint(parsed)
	}

	url := cc.tokens.CheckinURL(cc.baseURL, id, guestID)
	image, err := utils.GenerateQRCode(url, qrImageSize)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Check-in QR code", gin.H{
		"url":       url,
		"token":     cc.tokens.Issue(id, guestID),
		"image_png": base64.StdEncoding.EncodeToString(image),
	})
}

// ValidateToken -> offline token check, no state change
func (cc *CheckinController) ValidateToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := cc.tokens.Validate(req.Token)
	utils.RespondJSON(c, http.StatusOK, "Token validation result", result)
}

// CheckinWithToken -> redeem a scanned token and check the reservation in
func (cc *CheckinController) CheckinWithToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := cc.tokens.Validate(req.Token)
	if !result.Valid {
		utils.RespondDomainError(c, &utils.TokenInvalidError{Reason: result.Reason})
		return
	}

	reservation, err := cc.reservations.CheckInGuest(result.ReservationID, result.GuestID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	utils.InfoLogger.Printf("Token check-in for reservation %d (guest %d)",
		result.ReservationID, result.GuestID)
	utils.RespondJSON(c, http.StatusOK, "Check-in successful", reservation)
}

// CheckinPage -> browser-friendly redemption when the QR URL is opened
// directly; responds with a small HTML confirmation page.
func (cc *CheckinController) CheckinPage(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8",
			checkinHTML("Check-in failed", "No token provided."))
		return
	}

	result := cc.tokens.Validate(token)
	if !result.Valid {
		c.Data(http.StatusForbidden, "text/html; charset=utf-8",
			checkinHTML("Check-in failed", result.Reason))
		return
	}

	reservation, err := cc.reservations.CheckInGuest(result.ReservationID, result.GuestID)
	if err != nil {
		c.Data(utils.HTTPStatus(err), "text/html; charset=utf-8",
			checkinHTML("Check-in failed", err.Error()))
		return
	}

	detail := fmt.Sprintf("Reservation #%d is checked in. Enjoy your visit!", reservation.ID)
	if reservation.TableID != nil {
		detail = fmt.Sprintf("Reservation #%d is checked in at table %d. Enjoy your visit!",
			reservation.ID, *reservation.TableID)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", checkinHTML("Welcome!", detail))
}

func checkinHTML(title, detail string) []byte {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, title, detail)
	return []byte(page)
}
