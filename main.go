package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/gurpsmanager/server/api/rest"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/cache"
	"github.com/gurpsmanager/server/config"
	dbadapter "github.com/gurpsmanager/server/db"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/model"
	"github.com/gurpsmanager/server/scheduler"
	"github.com/gurpsmanager/server/sheet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "gurps-server",
		Short:         "GURPS character manager API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "config file (empty for defaults and GURPS_* env only)")
	root.AddCommand(serveCmd(), migrateCmd(), makeUserCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads config and opens a migrated database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}

	db, err := dbadapter.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))
	return cfg, logger, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			// Warn loudly if admin endpoints will be disabled.
			if cfg.Server.AdminKey == "" {
				logger.Warn("server.admin_key is not set; admin endpoints are disabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// ---- Cache ----
			c, err := cache.NewCache(cfg.Cache)
			if err != nil {
				return fmt.Errorf("cache: %w", err)
			}
			switch cl := c.(type) {
			case interface{ Close() error }:
				defer cl.Close()
			case interface{ Close() }:
				defer cl.Close()
			}
			if err := apirest.SyncBans(ctx, db, c); err != nil {
				return fmt.Errorf("sync bans: %w", err)
			}
			logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

			// ---- Audit ----
			auditSvc := audit.New(db, logger)
			defer auditSvc.Stop(context.Background())

			sheets := sheet.New(db, c, cfg.Sheet, logger)

			// ---- Maintenance ----
			sched := scheduler.New(ctx, logger)
			defer sched.Stop()
			sched.Every("ranking_refresh", cfg.Maintenance.RankingRefresh, sheets.RefreshRankings)
			sched.Every("audit_purge", cfg.Maintenance.AuditPurge, func(ctx context.Context) error {
				n, err := audit.Purge(ctx, db, time.Now().Add(-cfg.Maintenance.AuditRetention))
				if n > 0 {
					logger.Info("audit rows purged", zap.Int64("rows", n))
				}
				return err
			})

			if !cfg.Server.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			r := apirest.NewRouter(ctx, cfg, db, c, sheets, auditSvc, sched, logger)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           mw.MethodOverride(r),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, logger, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			logger.Info("schema up to date")
			return nil
		},
	}
}

func makeUserCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "make-user",
		Short: "Create a login account",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			acc, err := apirest.CreateAccount(db, username, password, cfg.Security.BcryptCost)
			if err != nil {
				return fmt.Errorf("create account %q: %w", username, err)
			}
			logger.Info("account created", zap.Int64("account_id", acc.ID), zap.String("username", acc.Username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
