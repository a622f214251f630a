package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storyforge/storyforge-backend/internal/config"
	"github.com/storyforge/storyforge-backend/internal/handler"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/migration"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"github.com/storyforge/storyforge-backend/internal/routes"
	"github.com/storyforge/storyforge-backend/internal/service"
	pkgcache "github.com/storyforge/storyforge-backend/pkg/cache"
	"github.com/storyforge/storyforge-backend/pkg/jwt"
	pkglogger "github.com/storyforge/storyforge-backend/pkg/logger"
	pkgredis "github.com/storyforge/storyforge-backend/pkg/redis"
)

// @title StoryForge API
// @version 1.0
// @description Collaborative story platform: version trees, episode lineage, report escalation and moderation.
//
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Infof("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := migration.Seed(db); err != nil {
			pkglogger.Warnf("Seed warning: %v", err)
		}
	}

	// Redis is optional; without it the public feed just skips the cache.
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	var cacheService pkgcache.Service
	if err != nil {
		pkglogger.Warnf("Failed to connect to Redis: %v (continuing without cache)", err)
	} else {
		pkglogger.Info("Connected to Redis")
		cacheService = pkgcache.NewService(redisClient)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	episodeRepo := repository.NewEpisodeRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	policy := service.NewAccessPolicy(userRepo)
	thresholds := service.ReportThresholds{
		EpisodeQuarantine: cfg.Moderation.EpisodeQuarantineThreshold,
		StoryReported:     cfg.Moderation.StoryReportedThreshold,
	}
	storyService := service.NewStoryService(storyRepo, cacheService)
	versionService := service.NewVersionService(storyRepo, versionRepo, episodeRepo, policy)
	reportService := service.NewReportService(reportRepo, storyRepo, episodeRepo, policy, thresholds)
	moderationService := service.NewModerationService(db, storyRepo, episodeRepo, reportRepo, policy)
	memberService := service.NewMemberService(userRepo, orgRepo, policy)
	orgService := service.NewOrganizationService(orgRepo, policy)

	// Handlers
	storyHandler := handler.NewStoryHandler(storyService, reportService)
	versionHandler := handler.NewVersionHandler(versionService)
	episodeHandler := handler.NewEpisodeHandler(versionService, reportService, moderationService)
	reportHandler := handler.NewReportHandler(reportService)
	adminHandler := handler.NewAdminHandler(moderationService, memberService)
	orgHandler := handler.NewOrganizationHandler(orgService, memberService)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400 * time.Second,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "storyforge-backend",
			"time":    time.Now().Unix(),
		})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(
		router,
		storyHandler,
		versionHandler,
		episodeHandler,
		reportHandler,
		adminHandler,
		orgHandler,
		jwtManager,
		userRepo,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
