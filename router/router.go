package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tischplan/reservation-app/config"
	"github.com/tischplan/reservation-app/controllers"
	"github.com/tischplan/reservation-app/middlewares"
	"github.com/tischplan/reservation-app/services"
	"gorm.io/gorm"
)

// SetupRouter wires services and controllers onto a gin engine. The order
// client and payment gateway are injected so tests can substitute doubles.
func SetupRouter(db *gorm.DB, orders services.OrderClient, gateway services.PaymentGateway) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	tableSvc := services.NewTableService(db)
	tokenSvc := services.NewTokenService(config.CheckinSecret())
	reservationSvc := services.NewReservationService(db, tableSvc, tokenSvc)
	paymentSvc := services.NewPaymentService(db, reservationSvc, gateway)
	waiterSvc := services.NewWaiterService(tableSvc, reservationSvc, orders)

	tableCtrl := controllers.NewTableController(tableSvc)
	reservationCtrl := controllers.NewReservationController(reservationSvc)
	checkinCtrl := controllers.NewCheckinController(tokenSvc, reservationSvc, config.BaseURL())
	paymentCtrl := controllers.NewPaymentController(paymentSvc, reservationSvc)
	waiterCtrl := controllers.NewWaiterController(waiterSvc)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Tables
	r.POST("/tables", tableCtrl.CreateTable)
	r.GET("/tables", tableCtrl.GetAllTables)
	r.GET("/tables/:table_id", tableCtrl.GetTableByID)
	r.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	r.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	r.GET("/restaurants/:restaurant_id/tables", tableCtrl.GetTablesByRestaurant)
	r.GET("/restaurants/:restaurant_id/tables/available", tableCtrl.FindAvailableTables)

	// Reservations
	r.POST("/reservations", reservationCtrl.CreateReservation)
	r.GET("/reservations", reservationCtrl.GetAllReservations)
	r.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
	r.GET("/reservations/status/:status", reservationCtrl.GetReservationsByStatus)
	r.GET("/restaurants/:restaurant_id/reservations", reservationCtrl.GetReservationsByRestaurant)
	r.GET("/customers/:customer_id/reservations", reservationCtrl.GetReservationsByCustomer)
	r.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)
	r.POST("/reservations/:reservation_id/checkin", reservationCtrl.CheckInReservation)
	r.POST("/reservations/:reservation_id/complete", reservationCtrl.CompleteReservation)
	r.POST("/reservations/:reservation_id/no-show", reservationCtrl.MarkNoShow)
	r.PATCH("/reservations/:reservation_id/table", reservationCtrl.AssignTable)
	r.DELETE("/reservations/:reservation_id", reservationCtrl.DeleteReservation)
	r.POST("/walk-ins", reservationCtrl.CreateWalkIn)

	// Check-in tokens / QR codes
	r.GET("/qr/reservations/:reservation_id", checkinCtrl.GetReservationQRCode)
	r.POST("/checkin/validate", checkinCtrl.ValidateToken)
	r.POST("/checkin", checkinCtrl.CheckinWithToken)
	r.GET("/checkin", checkinCtrl.CheckinPage)

	// Payments
	r.POST("/payments/cash", paymentCtrl.RecordCashPayment)
	r.POST("/payments/electronic", paymentCtrl.RecordElectronicPayment)
	r.POST("/payments/:payment_id/refund", paymentCtrl.RefundPayment)
	r.GET("/payments/stats", paymentCtrl.GetPaymentStats)
	r.GET("/payments/status/:status", paymentCtrl.GetPaymentsByStatus)
	r.GET("/payments/:payment_id", paymentCtrl.GetPaymentByID)
	r.GET("/reservations/:reservation_id/payment", paymentCtrl.GetPaymentForReservation)

	// Waiter view
	r.GET("/waiter/state", waiterCtrl.GetState)
	r.POST("/waiter/orders", waiterCtrl.CreateOrder)
	r.POST("/waiter/orders/:order_id/served", waiterCtrl.MarkOrderServed)
	r.POST("/waiter/tables/:table_id/clear", waiterCtrl.ClearTable)
	r.POST("/waiter/tables/:table_id/finish", waiterCtrl.FinishTable)

	return r
}
