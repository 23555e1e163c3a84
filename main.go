package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tischplan/reservation-app/config"
	"github.com/tischplan/reservation-app/middlewares"
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/router"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Services the router needs but that talk to the outside world.
	orders := services.NewHTTPOrderClient(config.OrderServiceURL())
	gateway := services.NewMockGateway(2*time.Second, 5)

	// Background sweeps for no-shows and over-stays.
	tableSvc := services.NewTableService(db)
	tokenSvc := services.NewTokenService(config.CheckinSecret())
	reservationSvc := services.NewReservationService(db, tableSvc, tokenSvc)
	sweeper, err := services.NewReservationSweeper(reservationSvc)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to create reservation sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	r := router.SetupRouter(db, orders, gateway)

	rateLimiter := middlewares.NewRateLimiter(50, 100)
	r.Use(rateLimiter.RateLimit())

	port := config.Getenv("PORT", "8083")
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Table{},
		&models.Reservation{},
		&models.GroupMember{},
		&models.Payment{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
