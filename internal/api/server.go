package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/docs"
	v1 "github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/middleware"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/config"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/job"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/mail"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/service"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/storage"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Sweeper *job.Sweeper
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	proofStorage, err := storage.NewS3Storage(context.Background(), conf.S3)
	if err != nil {
		return nil, fmt.Errorf("storage.NewS3Storage -> %w", err)
	}

	userDAO := dao.NewUserDAO(db)
	eventDAO := dao.NewEventDAO(db)
	couponDAO := dao.NewCouponDAO(db)
	pointDAO := dao.NewPointDAO(db)
	transactionDAO := dao.NewTransactionDAO(db)

	userRepo := repository.NewUserRepository(db, userDAO, pointDAO, couponDAO)
	eventRepo := repository.NewEventRepository(eventDAO)
	couponRepo := repository.NewCouponRepository(couponDAO)
	pointRepo := repository.NewPointRepository(pointDAO)
	transactionRepo := repository.NewTransactionRepository(db, transactionDAO, eventDAO, pointDAO, couponDAO)

	mailer := mail.NewSMTPMailer(conf.SMTP)

	uSvc := service.NewUserService(userRepo)
	authSvc := service.NewAuthService(userRepo, conf.Business)
	eventSvc := service.NewEventService(eventRepo)
	couponSvc := service.NewCouponService(couponRepo, eventRepo)
	pointSvc := service.NewPointService(pointRepo)
	transactionSvc := service.NewTransactionService(
		transactionRepo, eventRepo, userRepo, couponSvc, proofStorage, mailer, conf.Business)

	s.Sweeper = job.NewSweeper(transactionSvc, pointSvc,
		conf.Business.SweepInterval(), conf.Business.SweepBatchSize)

	authHandler := v1.NewAuthHandler(&conf.API, authSvc)
	userHandler := v1.NewUserHandler(uSvc)
	eventHandler := v1.NewEventHandler(eventSvc, uSvc)
	transactionHandler := v1.NewTransactionHandler(transactionSvc, uSvc)
	couponHandler := v1.NewCouponHandler(couponSvc, uSvc)
	pointHandler := v1.NewPointHandler(pointSvc, uSvc)
	adminHandler := v1.NewAdminHandler(conf.API.OpsAPIKey, s.Sweeper)

	s.MountHandlers(authHandler, userHandler, eventHandler, transactionHandler, couponHandler, pointHandler, adminHandler)

	return s, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.CollectMetrics())
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	transactionHandler *v1.TransactionHandler,
	couponHandler *v1.CouponHandler,
	pointHandler *v1.PointHandler,
	adminHandler *v1.AdminHandler,
) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	public := s.Router.Group(basePath)
	{
		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)
	}

	protected := s.Router.Group(basePath, verifyJWT)
	{
		protected.GET("/users/me", userHandler.HandleGetMe)

		protected.POST("/events", eventHandler.HandleCreateEvent)
		protected.GET("/events/:eventID/transactions", transactionHandler.HandleListEventTransactions)

		protected.POST("/transactions", transactionHandler.HandleCreateTransaction)
		protected.GET("/transactions", transactionHandler.HandleListMyTransactions)
		protected.GET("/transactions/:transactionID", transactionHandler.HandleGetTransaction)
		protected.POST("/transactions/:transactionID/proof", transactionHandler.HandleSubmitPaymentProof)
		protected.POST("/transactions/:transactionID/confirm", transactionHandler.HandleConfirmTransaction)
		protected.POST("/transactions/:transactionID/reject", transactionHandler.HandleRejectTransaction)

		protected.POST("/coupons", couponHandler.HandleCreateCoupon)
		protected.GET("/coupons/preview", couponHandler.HandlePreviewCoupon)

		protected.GET("/points/balance", pointHandler.HandleGetBalance)
		protected.GET("/points/history", pointHandler.HandleGetHistory)
	}

	admin := s.Router.Group(basePath)
	{
		admin.POST("/admin/reconcile", adminHandler.HandleReconcile)
	}

	s.Router.GET("/healthcheck", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
