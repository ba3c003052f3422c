package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/handler"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/middleware"
	"campus-chat-service/internal/realtime"
	"campus-chat-service/internal/service"
)

type Services struct {
	Users    service.UserService
	Groups   service.GroupService
	Messages service.MessageService
	Statuses service.StatusService
	Files    service.FileService
	Schedule service.ScheduleService
	// Presence is nil without redis.
	Presence service.PresenceCache
}

type Config struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Verifier client.IdentityVerifier
	Hub      *realtime.Hub
	Services Services

	BasePath         string
	CORSOrigins      []string
	AllowAllOrigins  bool
	APIPerMinute     int
	UploadsPer15Min  int
	MaxMultipartBody int64
}

func Setup(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api"
	}

	r := gin.New()
	if cfg.MaxMultipartBody > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartBody
	}

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.AllowAllOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.NoRoute(handler.NotFound)

	svc := cfg.Services
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis, nil)
	userHandler := handler.NewUserHandler(svc.Users, cfg.Logger)
	groupHandler := handler.NewGroupHandler(svc.Groups, cfg.Logger)
	messageHandler := handler.NewMessageHandler(svc.Messages, cfg.Hub.Router(), cfg.Logger)
	statusHandler := handler.NewStatusHandler(svc.Statuses, svc.Users, cfg.Logger)
	fileHandler := handler.NewFileHandler(svc.Files, svc.Users, cfg.Logger)
	scheduleHandler := handler.NewScheduleHandler(svc.Schedule, svc.Users, cfg.Logger)
	presenceHandler := handler.NewPresenceHandler(svc.Presence, cfg.Hub, cfg.Logger)

	apiLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Name:   "api",
		Limit:  cfg.APIPerMinute,
		Window: time.Minute,
	}, cfg.Redis, nil, cfg.Metrics, cfg.Logger)
	uploadLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Name:    "upload",
		Limit:   cfg.UploadsPer15Min,
		Window:  15 * time.Minute,
		Message: "Too many uploads, please try again later.",
	}, cfg.Redis, nil, cfg.Metrics, cfg.Logger)

	// No auth
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/socket", cfg.Hub.ServeWS)

	api := r.Group(cfg.BasePath)
	api.Use(apiLimiter.Middleware())
	{
		api.POST("/users", userHandler.SyncUser)
		api.GET("/users/:uid", userHandler.GetUser)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.Verifier, cfg.Logger))
		{
			authenticated.GET("/groups", groupHandler.ListGroups)
			authenticated.GET("/groups/:id", groupHandler.GetGroup)
			authenticated.POST("/groups", groupHandler.CreateGroup)

			authenticated.GET("/messages/:groupId", messageHandler.GetMessages)
			authenticated.POST("/messages", messageHandler.SendMessage)

			authenticated.GET("/statuses/:groupId", statusHandler.ListStatuses)
			authenticated.POST("/statuses", statusHandler.CreateStatus)
			authenticated.DELETE("/statuses/:id", statusHandler.DeleteStatus)

			authenticated.GET("/files/:groupId", fileHandler.ListFiles)
			authenticated.POST("/files/:fileId/like", fileHandler.LikeFile)
			authenticated.DELETE("/files/:fileId", fileHandler.DeleteFile)
			authenticated.POST("/upload", uploadLimiter.Middleware(), fileHandler.Upload)

			authenticated.GET("/schedule", scheduleHandler.ListCourses)
			authenticated.POST("/schedule", scheduleHandler.AddCourse)
			authenticated.POST("/schedule/batch", scheduleHandler.AddCourses)
			authenticated.DELETE("/schedule/:id", scheduleHandler.DeleteCourse)

			authenticated.GET("/presence/online/:groupId", presenceHandler.GetOnlineUsers)
		}
	}

	return r
}
