package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/config"
	"github.com/learnclub/club-portal-backend/controllers"
	"github.com/learnclub/club-portal-backend/middleware"
	"github.com/learnclub/club-portal-backend/routes"
	"github.com/learnclub/club-portal-backend/services"
	"github.com/learnclub/club-portal-backend/store"
	"github.com/learnclub/club-portal-backend/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("cấu hình lỗi: ", err)
	}
	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		log.Fatal("không tạo được logger: ", err)
	}
	defer logger.Sync()

	var st store.Store
	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		st = store.NewMemory()
	default:
		db, err := config.OpenDB(cfg, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		st = store.NewGorm(db)
	}

	svc := services.New(st,
		utils.NewSupabaseStorage(cfg.SupabaseURL, cfg.ServiceKey),
		utils.NewSupabaseAuth(cfg.SupabaseURL, cfg.AnonKey),
		logger)
	h := controllers.New(svc, logger, controllers.Options{
		FrontendURL:   cfg.FrontendURL,
		MaxUploadSize: cfg.MaxUploadSize,
		SecureCookies: cfg.IsProduction(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.MaxMultipartMemory = cfg.MaxUploadSize

	identity := middleware.Identity(utils.NewTokenVerifier(cfg.JWTSecret), st, logger)
	r = routes.SetupRouter(r, h, identity)

	logger.Info("server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
