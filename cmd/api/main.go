package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LawrenceVelilla/UCourseHub/internal/handler"
	"github.com/LawrenceVelilla/UCourseHub/internal/middleware"
	"github.com/LawrenceVelilla/UCourseHub/internal/repository"
	"github.com/LawrenceVelilla/UCourseHub/internal/scraper"
	"github.com/LawrenceVelilla/UCourseHub/internal/service"
	"github.com/LawrenceVelilla/UCourseHub/pkg/cache"
	"github.com/LawrenceVelilla/UCourseHub/pkg/config"
	"github.com/LawrenceVelilla/UCourseHub/pkg/database"
	"github.com/LawrenceVelilla/UCourseHub/pkg/logger"
	corsmiddleware "github.com/LawrenceVelilla/UCourseHub/pkg/middleware/cors"
	reqidmiddleware "github.com/LawrenceVelilla/UCourseHub/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	limiter := scraper.NewRateLimiter()
	limiter.OnWait(metricsSvc.RecordLimiterWait)

	redditClient := scraper.NewRedditClient(scraper.RedditConfig{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		Subreddit:    cfg.Reddit.Subreddit,
	}, limiter, logr)
	redditClient.OnRetry(metricsSvc.RecordUpstreamRetry)

	rmpClient := scraper.NewRMPClient(scraper.RMPConfig{}, logr)
	directoryClient := scraper.NewDirectoryClient(cfg.Directory.BaseURL)

	professorRepo := repository.NewProfessorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	linkRepo := repository.NewProfessorCourseRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	cacheRepo := repository.NewCacheRepository(rdb)
	defer cacheRepo.Close() //nolint:errcheck

	matchSvc := service.NewProfessorMatchService(professorRepo, service.MatchScopeDepartment, logr)
	linkSvc := service.NewCourseLinkService(courseRepo, linkRepo, logr)
	syncSvc := service.NewProfessorSyncService(matchSvc, linkSvc, directoryClient, rmpClient, professorRepo, metricsSvc, logr)
	discussionSvc := service.NewDiscussionService(redditClient, discussionRepo, courseRepo, cacheRepo, metricsSvc,
		cfg.Discussions.CommentLimit, cfg.Discussions.CacheTTL, logr)
	catalogSvc := service.NewCatalogService(professorRepo, linkRepo, courseRepo, logr)

	syncHandler := handler.NewSyncHandler(syncSvc, cfg.RMP.SchoolID)
	discussionHandler := handler.NewDiscussionHandler(discussionSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/sync/professors", syncHandler.SyncProfessors)
		api.POST("/sync/full", syncHandler.FullSync)

		api.POST("/discussions/scrape/department/:department", discussionHandler.ScrapeDepartment)
		api.POST("/discussions/scrape/course/:code", discussionHandler.ScrapeCourse)
		api.POST("/discussions/scrape/courses", discussionHandler.ScrapeCourses)
		api.GET("/courses/:id/discussions", discussionHandler.ListByCourse)

		api.GET("/professors", catalogHandler.ListProfessors)
		api.GET("/professors/:id", catalogHandler.GetProfessor)
		api.GET("/courses", catalogHandler.ListCourses)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
