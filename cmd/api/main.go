package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phonecase/internal/audit"
	"phonecase/internal/auth"
	"phonecase/internal/calls"
	"phonecase/internal/cases"
	"phonecase/internal/config"
	"phonecase/internal/crm"
	"phonecase/internal/ivr"
	"phonecase/internal/reporting"
	"phonecase/internal/telephony"
	"phonecase/pkg/logger"
	"phonecase/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type auditStore interface {
	audit.Repository
	reporting.Repository
}

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Reconcile outcomes go to Postgres when configured, otherwise a bounded in-memory log.
	var (
		db        *sql.DB
		auditRepo auditStore = audit.NewMemoryRepo(1000)
	)
	if cfg.AuditStoreEnabled() {
		if err := audit.Migrate(cfg.PostgresURL(), "up"); err != nil {
			log.Error("audit migrate failed", "err", err)
			os.Exit(1)
		}
		db, err = utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPool{}, 5*time.Second)
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		auditRepo = audit.NewPostgresRepo(db)
	}

	sessionOpts := []crm.SessionOption{crm.WithLogger(log)}
	if cfg.SessionCacheEnabled() {
		var rdb *redis.Client
		rdb, err = utils.OpenRedis(rootCtx, utils.SessionCacheOptions(cfg.RedisAddr()), 2*time.Second)
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		sessionOpts = append(sessionOpts, crm.WithSessionCache(crm.NewRedisSessionCache(rdb, ""), cfg.CRM.SessionTTL))
	}

	// Login is lazy; a bad credential degrades CRM writes but never blocks startup.
	session := crm.NewSession(crm.LoginConfig{
		LoginURL:      cfg.CRM.LoginURL,
		Username:      cfg.CRM.Username,
		Password:      cfg.CRM.Password,
		SecurityToken: cfg.CRM.SecurityToken,
		APIVersion:    cfg.CRM.APIVersion,
	}, sessionOpts...)
	crmClient := crm.NewClient(session, cfg.CRM.APIVersion, crm.Matcher{
		Mode:   crm.MatchMode(cfg.CRM.PhoneMatch),
		Fields: cfg.CRM.PhoneFields,
	})

	reconciler := cases.NewReconciler(crmClient, audit.NewService(auditRepo), log)
	twilioClient := telephony.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber)
	initiator := calls.NewInitiator(twilioClient, reconciler, calls.InitiatorConfig{
		From:      cfg.Twilio.PhoneNumber,
		DefaultTo: cfg.Routing.DefaultNumber,
		VoiceURL:  cfg.CallbackURL(ivr.MenuPath),
		StatusURL: cfg.CallbackURL("/status"),
	}, log)

	deps := routeDeps{
		Webhooks: telephony.WebhookHandler{
			Cases: reconciler,
			Directory: ivr.Directory{
				Sales:   cfg.Routing.SalesNumber,
				Support: cfg.Routing.SupportNumber,
				Default: cfg.Routing.DefaultNumber,
			},
		},
		Calls:   initiator,
		SMS:     twilioClient,
		Reports: reporting.NewService(auditRepo),
		DB:      db,
	}
	if cfg.Twilio.ValidateSignature {
		deps.Signature = telephony.RequireTwilioSignature(telephony.NewSignatureValidator(cfg.Twilio.AuthToken), cfg.App.BaseURL)
	}
	if cfg.AuthEnabled() {
		authManager, err := auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
		deps.Auth = auth.RequireAccessToken(authManager)
	} else {
		log.Warn("JWT_SECRET not set; /call and /sms are unauthenticated")
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "base_url", cfg.App.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
