package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/offgrid-pay/offgridpay/internal/auth"
	"github.com/offgrid-pay/offgridpay/internal/config"
	"github.com/offgrid-pay/offgridpay/internal/gateway"
	"github.com/offgrid-pay/offgridpay/internal/ledger"
	"github.com/offgrid-pay/offgridpay/internal/middleware"
	"github.com/offgrid-pay/offgridpay/internal/notification"
	"github.com/offgrid-pay/offgridpay/internal/sms"
	"github.com/offgrid-pay/offgridpay/internal/transfer"
	"github.com/offgrid-pay/offgridpay/internal/user"
)

const gatewayBaseURL = "https://api.razorpay.com"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Outside dev the durable store and the rate-limit backend are mandatory.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{AllowOrigins: d.Cfg.CORSOrigin}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	// Stores: Postgres in production, memory in dev without a database.
	var (
		userRepo      user.Repository
		ledgerStore   ledger.Store
		transferStore transfer.Store
		logRepo       sms.LogRepository
		orderRepo     gateway.Repository
	)
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
		ledgerStore = ledger.NewPostgresStore(d.DB)
		transferStore = transfer.NewPostgresStore(d.DB)
		logRepo = sms.NewPostgresLogRepository(d.DB)
		orderRepo = gateway.NewPostgresRepository(d.DB)
	} else {
		memUsers := user.NewMemoryRepository()
		memLedger := ledger.NewMemoryStore(memUsers)
		userRepo = memUsers
		ledgerStore = memLedger
		transferStore = transfer.NewMemoryStore(memLedger)
		logRepo = sms.NewMemoryLogRepository()
		orderRepo = gateway.NewMemoryRepository(memLedger)
	}

	// Outbound messages: every send is audited, delivery is the gateway's
	// job when credentials exist and the logger's otherwise.
	var base notification.Notifier
	if d.Cfg.SMSAccountSID != "" && d.Cfg.SMSAuthToken != "" {
		base = notification.NewSMSSender(d.Cfg.SMSAccountSID, d.Cfg.SMSAuthToken, d.Cfg.SMSFromNumber, d.Logger)
	} else {
		base = notification.NewLoggerNotifier(d.Logger)
	}
	notifier := sms.NewRecordingNotifier(base, logRepo)

	var envelope *sms.Cipher
	if len(d.Cfg.SMSCipherKey) > 0 {
		var err error
		if envelope, err = sms.NewCipher(d.Cfg.SMSCipherKey); err != nil {
			return err
		}
	}

	var limiter sms.RateLimiter = sms.NopLimiter{}
	if d.Cache != nil {
		limiter = sms.NewRedisRateLimiter(d.Cache, d.Cfg.RateLimitMax, d.Cfg.RateWindow)
	}

	var provider gateway.Provider = gateway.StaticProvider{}
	if d.Cfg.GatewayKeyID != "" && d.Cfg.GatewayKeySecret != "" {
		provider = gateway.NewHTTPProvider(gatewayBaseURL, d.Cfg.GatewayKeyID, d.Cfg.GatewayKeySecret)
	}

	// Services and handlers.
	ledgerSvc := ledger.NewService(ledgerStore)
	userSvc := user.NewService(userRepo)
	authSvc := auth.NewService(userRepo, notifier, d.Cfg.JWTSecret, d.Cfg.TokenTTL, d.Cfg.OTPTTL)
	transferSvc := transfer.NewService(userRepo, transferStore, notifier)
	gatewaySvc := gateway.NewService(provider, orderRepo, userRepo, d.Cfg.GatewayKeySecret, d.Logger)

	userHandler := user.NewHandler(userSvc)
	authHandler := auth.NewHandler(authSvc)
	transferHandler := transfer.NewHandler(transferSvc)
	gatewayHandler := gateway.NewHandler(gatewaySvc)
	smsHandler := sms.NewHandler(userRepo, authSvc, transferSvc, logRepo, limiter, envelope, notifier, d.Logger)

	api := app.Group("/api/v1")

	// Public surface.
	RegisterUserRoutes(api, userHandler, authHandler)
	RegisterSMSRoutes(api, smsHandler)

	// Privileged surface, gated by the session token.
	protected := api.Group("", middleware.BearerAuth(authSvc))
	RegisterWalletRoutes(protected, userRepo, ledgerSvc)
	RegisterTransferRoutes(protected, transferHandler)
	RegisterGatewayRoutes(api, protected, gatewayHandler)

	return nil
}
