package main

import (
	"log"
	"os"
	"strconv"

	_ "taskflow/api/swagger" // swagger docs
	"taskflow/internal/database"
	"taskflow/internal/handler"
	"taskflow/internal/mailer"
	"taskflow/internal/middleware"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Petition Management API
// @version         1.0
// @description     Multi-tenant petition and commission management backend.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Mail transport; notifications fall back to in-app only when unset
	var mail mailer.Mailer = mailer.Noop{}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if port == 0 {
			port = 587
		}
		mail = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     host,
			Port:     port,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		})
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	hrRepo := repository.NewHumanResourceRepository(db)
	petitionRepo := repository.NewPetitionRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	notifier := service.NewNotifier(db, notificationRepo, mail, wsHub, frontendURL)

	userService := service.NewUserService(db, userRepo, middleware.GetJWTSecret())
	companyService := service.NewCompanyService(db, companyRepo, petitionRepo)
	departmentService := service.NewDepartmentService(db, departmentRepo, petitionRepo)
	hrService := service.NewHumanResourceService(db, hrRepo, userRepo, departmentRepo, companyRepo)
	petitionService := service.NewPetitionService(db, petitionRepo, departmentRepo, companyRepo, auditRepo, txManager, notifier)
	commissionService := service.NewCommissionService(db, commissionRepo, petitionRepo, userRepo, auditRepo, txManager)
	notificationService := service.NewNotificationService(notificationRepo)
	auditService := service.NewAuditService(db, auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	companyHandler := handler.NewCompanyHandler(companyService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	hrHandler := handler.NewHumanResourceHandler(hrService)
	petitionHandler := handler.NewPetitionHandler(petitionService)
	commissionHandler := handler.NewCommissionHandler(commissionService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{frontendURL, "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	companyHandler.RegisterRoutes(api)
	departmentHandler.RegisterRoutes(api)
	hrHandler.RegisterRoutes(api)
	petitionHandler.RegisterRoutes(api)
	commissionHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
