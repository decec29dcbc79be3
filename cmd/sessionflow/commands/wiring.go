package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/petrijr/sessionflow"
	"github.com/petrijr/sessionflow/internal/config"
	"github.com/petrijr/sessionflow/internal/sdkclient"
	"github.com/petrijr/sessionflow/pkg/api"
	"github.com/petrijr/sessionflow/pkg/workflows"
)

// app is everything a session command needs.
type app struct {
	sess    *sessionflow.Session
	sdk     *sdkclient.Client
	closers []func() error
}

func (a *app) Close() error {
	a.sess.Close()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// openSession connects the configured backend and builds a session over it.
func openSession(ctx context.Context, extra ...sessionflow.Option) (*app, error) {
	opts := []sessionflow.Option{
		sessionflow.WithLogger(logger),
		sessionflow.WithObserver(api.NewLoggingObserver(logger)),
		sessionflow.WithAlertDelay(cfg.UI.AlertDelay),
		sessionflow.WithStateKey(cfg.Storage.Key),
	}
	if cfg.Storage.Passphrase != "" {
		opts = append(opts, sessionflow.WithPassphrase(cfg.Storage.Passphrase))
	}
	opts = append(opts, extra...)

	a := &app{}
	var err error
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		a.sess, err = sessionflow.NewInMemorySession(ctx, opts...)
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		var db *sql.DB
		if db, err = sql.Open("sqlite", cfg.Storage.DSN); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.sess, err = sessionflow.NewSQLiteSession(ctx, db, opts...)
	case config.BackendPostgres:
		var db *sql.DB
		if db, err = sql.Open("pgx", cfg.Storage.DSN); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.sess, err = sessionflow.NewPostgresSession(ctx, db, opts...)
	case config.BackendRedis:
		var ropts *redis.Options
		if ropts, err = redis.ParseURL(cfg.Storage.DSN); err != nil {
			return nil, fmt.Errorf("parse redis dsn: %w", err)
		}
		client := redis.NewClient(ropts)
		a.closers = append(a.closers, client.Close)
		a.sess, err = sessionflow.NewRedisSession(ctx, client, cfg.Storage.Prefix, opts...)
	case config.BackendMongo:
		var client *mongo.Client
		if client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.Storage.DSN)); err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		a.sess, err = sessionflow.NewMongoSession(ctx, client, cfg.Storage.Database, opts...)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		for _, c := range a.closers {
			_ = c()
		}
		return nil, err
	}
	return a, nil
}

// register binds the workflow library to the session.
func (a *app) register(scanner api.QRScanner) error {
	a.sdk = sdkclient.New(sdkclient.WithLogger(logger))
	lib := &workflows.Library{SDK: a.sdk, Scanner: scanner, BaseURL: cfg.SDK.BaseURL}
	if err := lib.Register(a.sess.Registry); err != nil {
		return err
	}
	return sessionflow.DefaultCatalog().Validate(a.sess.Registry)
}

// configureSDK seeds the stored credentials from config when the record has
// none, and configures the SDK with whatever credentials are stored. The
// SDK holds no state across processes, so every command does this.
func (a *app) configureSDK(ctx context.Context) {
	if cfg.SDK.ClientID != "" && a.sess.Store.Snapshot().Domain.ClientID == "" {
		a.sess.Store.MutateDomain(func(d *api.DomainState) {
			d.ClientID = cfg.SDK.ClientID
			d.Secret = cfg.SDK.ClientSecret
		})
	}

	d := a.sess.Store.Snapshot().Domain
	if d.ClientID == "" {
		return
	}
	if err := a.sdk.Configure(ctx, cfg.SDK.BaseURL, d.ClientID, d.Secret); err != nil {
		logger.Warn("sdk_configure_failed", slog.String("base_url", cfg.SDK.BaseURL), slog.Any("error", err))
	}
}
