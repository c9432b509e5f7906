package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg         *config.Config
	logger      *zap.Logger
	tokens      middleware.TokenValidator
	metrics     *handler.MetricsHandler
	observer    middleware.RequestObserver
	timetable   *handler.TimetableHandler
	lectures    *handler.LectureHandler
	reschedules *handler.RescheduleHandler
}

func newRouter(d routerDeps) *gin.Engine {
	if d.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.observer))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.metrics.Health)
	r.GET("/ready", d.metrics.Ready)
	r.GET("/metrics", d.metrics.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix, middleware.JWT(d.tokens))
	api.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), d.metrics.Summary)

	tt := api.Group("/timetable")
	tt.GET("/day", d.timetable.Day)
	tt.GET("/week", d.timetable.Week)
	tt.GET("/layout", d.timetable.Layout)
	tt.GET("/conflicts", d.timetable.Conflicts)
	tt.GET("/export", d.timetable.Export)

	editor := middleware.RequireEditor()

	lectures := api.Group("/lectures")
	lectures.GET("", d.lectures.List)
	lectures.GET("/:id", d.lectures.Get)
	lectures.POST("/validate", editor, d.lectures.Validate)
	lectures.POST("", editor, middleware.Audit(d.logger, "create", "lecture"), d.lectures.Create)
	lectures.PUT("/:id", editor, middleware.Audit(d.logger, "update", "lecture"), d.lectures.Update)
	lectures.DELETE("/:id", editor, middleware.Audit(d.logger, "delete", "lecture"), d.lectures.Delete)

	reschedules := api.Group("/reschedules")
	reschedules.GET("", d.reschedules.List)
	reschedules.GET("/:id", d.reschedules.Get)
	reschedules.POST("", editor, middleware.Audit(d.logger, "create", "reschedule"), d.reschedules.Create)
	reschedules.DELETE("/:id", editor, middleware.Audit(d.logger, "delete", "reschedule"), d.reschedules.Delete)

	return r
}
