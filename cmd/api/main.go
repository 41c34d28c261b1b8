package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	appcontext "github.com/raven-med/radtag/internal/app_context"
	"github.com/raven-med/radtag/internal/auth"
	"github.com/raven-med/radtag/internal/config"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/database"
	"github.com/raven-med/radtag/internal/env"
	"github.com/raven-med/radtag/internal/file_storage"
	"github.com/raven-med/radtag/internal/mailer"
	"github.com/raven-med/radtag/internal/middleware"
	"github.com/raven-med/radtag/internal/pacs"
	ratelimiter "github.com/raven-med/radtag/internal/rate_limiter"
	"github.com/raven-med/radtag/internal/repository"
	"github.com/raven-med/radtag/internal/route"
	"github.com/raven-med/radtag/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("strNotEmpty", util.StrNotEmpty); err != nil {
			return
		}
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	orthanc := pacs.NewOrthanc(cfg.Orthanc, logger)
	repo := repository.NewRepository(db, logger)
	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		JWTService: jwtService,
		PACS:       orthanc,
		S3:         s3,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Auth(rApi, _controller.Auth)
	route.V1_Users(rApi, _controller.User, _middleware)
	route.V1_Workspaces(rApi, _controller.Workspace, _middleware)
	route.V1_Projects(rApi, _controller.Project, _middleware)
	route.V1_Folders(rApi, _controller.Folder, _middleware)
	route.V1_Images(rApi, _controller.Image, _middleware)
	route.V1_Annotations(rApi, _controller.Annotation, _middleware)
	route.V1_Tags(rApi, _controller.Tag, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panic("Error running server: %v \n", err)
	}
}
