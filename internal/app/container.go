package app

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/service-booking-backend/internal/api"
	"github.com/nekogravitycat/service-booking-backend/internal/auth"
	"github.com/nekogravitycat/service-booking-backend/internal/booking"
	"github.com/nekogravitycat/service-booking-backend/internal/catalog"
	"github.com/nekogravitycat/service-booking-backend/internal/config"
	"github.com/nekogravitycat/service-booking-backend/internal/membership"
	"github.com/nekogravitycat/service-booking-backend/internal/notify"
	"github.com/nekogravitycat/service-booking-backend/internal/pricing"
	"github.com/nekogravitycat/service-booking-backend/internal/user"
)

// Deps holds the process-level resources the container builds on.
// Redis is only required when the redis notify driver is selected.
type Deps struct {
	Config *config.Config
	DBPool *pgxpool.Pool
	Redis  *redis.Client
	Logger *zap.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Dispatcher *notify.Dispatcher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(deps Deps) *Container {
	cfg := deps.Config
	log := deps.Logger

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	// User Module
	userRepo := user.NewPgxRepository(deps.DBPool)
	userService := user.NewService(userRepo, passwordHasher, log.Named("user"))

	// Catalog and Membership
	catalogReader := catalog.NewPgxRepository(deps.DBPool)
	memberRepo := membership.NewPgxRepository(deps.DBPool)
	memberService := membership.NewService(memberRepo)

	// Notifications
	dispatcher := notify.NewDispatcher(newSink(deps), cfg.Notify.Timeout, log.Named("notify"))

	// Booking Module
	bookingRepo := booking.NewPgxRepository(deps.DBPool)
	bookingService := booking.NewService(
		bookingRepo,
		userService,
		catalogReader,
		memberService,
		pricing.NewCalculator(cfg.TaxRate, cfg.Currency),
		dispatcher,
		log.Named("booking"),
	)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		MaxPageSize:        cfg.MaxPageSize,
		Logger:             log.Named("http"),
		UserService:        userService,
		BookingService:     bookingService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Dispatcher: dispatcher,
	}
}

func newSink(deps Deps) notify.Sink {
	n := deps.Config.Notify
	switch n.Driver {
	case config.NotifyDriverEmail:
		from := n.SMTPFrom
		if from == "" {
			from = n.SMTPUser
		}
		mailer := notify.NewSMTPMailer(n.SMTPHost, n.SMTPPort, n.SMTPUser, n.SMTPPass)
		return notify.NewEmailSink(mailer, from, n.AdminEmail)
	case config.NotifyDriverRedis:
		if deps.Redis != nil {
			return notify.NewRedisSink(deps.Redis, n.RedisChannel)
		}
		deps.Logger.Warn("redis notify driver selected without a client, falling back to log sink")
	}
	return notify.NewLogSink(deps.Logger.Named("notify"))
}
