package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-elective-api/api/swagger"
	"github.com/noah-isme/sma-elective-api/internal/handler"
	"github.com/noah-isme/sma-elective-api/internal/middleware"
	"github.com/noah-isme/sma-elective-api/internal/repository"
	"github.com/noah-isme/sma-elective-api/internal/service"
	"github.com/noah-isme/sma-elective-api/pkg/cache"
	"github.com/noah-isme/sma-elective-api/pkg/config"
	"github.com/noah-isme/sma-elective-api/pkg/database"
	"github.com/noah-isme/sma-elective-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-elective-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-elective-api/pkg/middleware/requestid"
)

// @title SMA Elective API
// @version 0.1.0
// @description Elective enrollment and roster assignment service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, slot cache disabled", "error", err)
		redisClient = nil
	}

	students := repository.NewStudentRepository(db)
	teachers := repository.NewTeacherRepository(db)
	classes := repository.NewClassRepository(db)
	subjects := repository.NewSubjectRepository(db)
	electives := repository.NewElectiveSubjectRepository(db)
	assignments := repository.NewElectiveAssignmentRepository(db)
	slots := repository.NewSlotRepository(db)
	teacherAssignments := repository.NewTeacherAssignmentRepository(db)
	audits := repository.NewAuditRepository(db)

	var slotCache *repository.CacheRepository
	if redisClient != nil {
		slotCache = repository.NewCacheRepository(redisClient, logr)
		defer slotCache.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})

	var slotIndexSvc *service.SlotIndexService
	if slotCache != nil {
		slotIndexSvc = service.NewSlotIndexService(students, slots, slotCache, cfg.Electives.SlotCacheTTL, logr)
	} else {
		slotIndexSvc = service.NewSlotIndexService(students, slots, nil, cfg.Electives.SlotCacheTTL, logr)
	}
	conflictSvc := service.NewConflictService(slotIndexSvc, logr)
	electiveSvc := service.NewElectiveService(electives, assignments, students, conflictSvc, slotIndexSvc, metricsSvc, nil, logr)
	teacherAssignmentSvc := service.NewTeacherAssignmentService(teachers, classes, subjects, teacherAssignments, audits, nil, logr)

	electiveHandler := handler.NewElectiveHandler(electiveSvc)
	teacherAssignmentHandler := handler.NewTeacherAssignmentHandler(teacherAssignmentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.GET("/elective-subjects/:id/students", electiveHandler.List)
		api.POST("/elective-subjects/:id/students", electiveHandler.AddStudents)
		api.DELETE("/elective-subjects/:id/students/:studentId", electiveHandler.RemoveStudent)

		api.GET("/teachers/:id/assignments", teacherAssignmentHandler.List)
		api.POST("/teachers/:id/assignments", teacherAssignmentHandler.Create)
		api.DELETE("/teachers/:id/assignments/:assignmentId", teacherAssignmentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
