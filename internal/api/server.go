package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/eventgate/backend/docs"
	v1 "github.com/eventgate/backend/internal/api/handler/v1"
	"github.com/eventgate/backend/internal/api/middleware"
	"github.com/eventgate/backend/internal/config"
	"github.com/eventgate/backend/internal/queue"
	"github.com/eventgate/backend/internal/repository"
	"github.com/eventgate/backend/internal/repository/dao"
	"github.com/eventgate/backend/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	rdb       *redis.Client
	publisher *queue.Publisher
}

func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client, publisher *queue.Publisher) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:    conf,
		Router:    engine,
		rdb:       rdb,
		publisher: publisher,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db)
	ticketHandler := s.initTicketHandler(db)
	scanHandler := s.initScanHandler(db)
	s.MountHandlers(authHandler, userHandler, eventHandler, ticketHandler, scanHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	cache := repository.NewAuthCache(s.rdb)
	svc := service.NewAuthService(repo, cache)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	repo := repository.NewEventRepository(dao.NewEventDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	svc := service.NewEventService(repo, ticketRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewEventHandler(svc, uSvc)

	return handler
}

func (s *Server) initTicketHandler(db *gorm.DB) *v1.TicketHandler {
	svc := s.buildTicketService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewTicketHandler(svc, uSvc)

	return handler
}

func (s *Server) initScanHandler(db *gorm.DB) *v1.ScanHandler {
	svc := s.buildTicketService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewScanHandler(svc, uSvc)

	return handler
}

func (s *Server) buildTicketService(db *gorm.DB) *service.TicketService {
	repo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))

	// A nil *queue.Publisher must stay a nil interface inside the service.
	var pub service.CheckInPublisher
	if s.publisher != nil {
		pub = s.publisher
	}

	return service.NewTicketService(repo, eventRepo, pub)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	ticketHandler *v1.TicketHandler,
	scanHandler *v1.ScanHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
		auth.POST("/auth/password/forgot", authHandler.HandleForgotPassword)
		auth.POST("/auth/password/reset", authHandler.HandleResetPassword)
	}

	users := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	events := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		events.GET("/events", eventHandler.HandleGetEvents)
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.GET("/events/:eventID/stats", eventHandler.HandleGetEventStats)
	}

	tickets := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		tickets.POST("/tickets", ticketHandler.HandleCreateTicket)
		tickets.GET("/tickets/:ticketID", ticketHandler.HandleGetTicket)
		tickets.POST("/tickets/:ticketID/checkin", ticketHandler.HandleCheckInTicket)
		// QR scanning
		tickets.GET("/scan", scanHandler.HandleScanSocket)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "EventGate API"
	docs.SwaggerInfo.Description = "Event check-in backend: organizer events, tickets and QR scanning."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
