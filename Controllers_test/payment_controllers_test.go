package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tischplan/reservation-app/controllers"
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
)

func setupTestDBForPayments(name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(&models.Table{}, &models.Reservation{}, &models.GroupMember{}, &models.Payment{})
	if err != nil {
		panic(err)
	}
	return db
}

func setupPaymentRouter(db *gorm.DB, gateway services.PaymentGateway) (*gin.Engine, *services.ReservationService) {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	tableSvc := services.NewTableService(db)
	tokenSvc := services.NewTokenService("test-secret")
	reservationSvc := services.NewReservationService(db, tableSvc, tokenSvc)
	paymentSvc := services.NewPaymentService(db, reservationSvc, gateway)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, reservationSvc)

	router.POST("/payments/cash", paymentCtrl.RecordCashPayment)
	router.POST("/payments/electronic", paymentCtrl.RecordElectronicPayment)
	router.POST("/payments/:payment_id/refund", paymentCtrl.RefundPayment)
	router.GET("/payments/stats", paymentCtrl.GetPaymentStats)
	router.GET("/payments/:payment_id", paymentCtrl.GetPaymentByID)
	router.GET("/reservations/:reservation_id/payment", paymentCtrl.GetPaymentForReservation)
	return router, reservationSvc
}

func seatedReservation(t *testing.T, db *gorm.DB, reservationSvc *services.ReservationService) *models.Reservation {
	t.Helper()
	table := models.Table{RestaurantID: 1, TableNumber: "A1", Capacity: 4, Status: models.TableAvailable}
	db.Create(&table)

	reservation, err := reservationSvc.Create(services.CreateReservationInput{
		CustomerID:          1,
		RestaurantID:        1,
		ReservationDateTime: time.Now().Add(-time.Minute),
		NumberOfGuests:      2,
	})
	assert.NoError(t, err)
	reservation, err = reservationSvc.CheckIn(reservation.ID)
	assert.NoError(t, err)
	return reservation
}

func TestCashPaymentCompletesReservation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments("ctrl_pay_cash")
	router, reservationSvc := setupPaymentRouter(db, services.NewMockGateway(0, 0))
	reservation := seatedReservation(t, db, reservationSvc)

	w := postJSON(router, "/payments/cash", map[string]interface{}{
		"reservation_id": reservation.ID,
		"amount":         48.90,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Cash payment recorded", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, "CASH", data["payment_method"])

	// The payment triggered the second step: reservation COMPLETED, table
	// moved on to CLEANING.
	completed, err := reservationSvc.GetByID(reservation.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationCompleted, completed.Status)

	var table models.Table
	assert.NoError(t, db.First(&table, *reservation.TableID).Error)
	assert.Equal(t, models.TableCleaning, table.Status)

	// Second payment for the same reservation: 422.
	w = postJSON(router, "/payments/cash", map[string]interface{}{
		"reservation_id": reservation.ID,
		"amount":         48.90,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestElectronicPaymentEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments("ctrl_pay_electronic")
	router, reservationSvc := setupPaymentRouter(db, services.NewMockGateway(0, 0))
	reservation := seatedReservation(t, db, reservationSvc)

	w := postJSON(router, "/payments/electronic", map[string]interface{}{
		"reservation_id": reservation.ID,
		"amount":         80,
		"method":         "CREDIT_CARD",
		"token":          "tok_test",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "COMPLETED", data["status"])
	txn := data["transaction_id"].(string)
	assert.Contains(t, txn, "CARD_")
}

func TestDeclinedElectronicPaymentEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments("ctrl_pay_declined")
	router, reservationSvc := setupPaymentRouter(db, services.NewMockGateway(0, 100))
	reservation := seatedReservation(t, db, reservationSvc)

	w := postJSON(router, "/payments/electronic", map[string]interface{}{
		"reservation_id": reservation.ID,
		"amount":         80,
		"method":         "CREDIT_CARD",
		"token":          "tok_test",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// The reservation stays seated; the guest will try again.
	seated, err := reservationSvc.GetByID(reservation.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationCheckedIn, seated.Status)

	// The FAILED attempt is on record.
	req, _ := http.NewRequest("GET", "/reservations/"+strconv.Itoa(int(reservation.ID))+"/payment", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "FAILED", data["status"])
}

func TestRefundEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments("ctrl_pay_refund")
	router, reservationSvc := setupPaymentRouter(db, services.NewMockGateway(0, 0))
	reservation := seatedReservation(t, db, reservationSvc)

	w := postJSON(router, "/payments/cash", map[string]interface{}{
		"reservation_id": reservation.ID,
		"amount":         100,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	paymentID := int(createResp["data"].(map[string]interface{})["id"].(float64))

	url := "/payments/" + strconv.Itoa(paymentID) + "/refund"

	// Over the original amount: 400.
	w = postJSON(router, url, map[string]interface{}{"amount": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, url, map[string]interface{}{"amount": 40})
	assert.Equal(t, http.StatusOK, w.Code)
	var refundResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &refundResp))
	data := refundResp["data"].(map[string]interface{})
	assert.Equal(t, "REFUNDED", data["status"])
	assert.Equal(t, 40.0, data["refund_amount"])
}

func TestPaymentStatsEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments("ctrl_pay_stats")
	router, reservationSvc := setupPaymentRouter(db, services.NewMockGateway(0, 0))
	reservation := seatedReservation(t, db, reservationSvc)

	w := postJSON(router, "/payments/cash", map[string]interface{}{
		"reservation_id": reservation.ID,
		"amount":         60,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	req, _ := http.NewRequest("GET", "/payments/stats", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 60.0, data["total_revenue"])
	assert.Equal(t, 60.0, data["cash_payments"])
	assert.Equal(t, float64(1), data["payment_count"])
}
