package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	motors "github.com/jimiolaniyan/gomotors"
	"github.com/jimiolaniyan/gomotors/auth"
	"github.com/jimiolaniyan/gomotors/config"
	"github.com/jimiolaniyan/gomotors/migrations"
	"github.com/jimiolaniyan/gomotors/session"
)

type stores struct {
	inventory motors.Repository
	accounts  auth.Repository
	flashes   session.Store
	closers   []func() error
}

func (s *stores) Close(log logrus.FieldLogger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.WithError(err).Warn("closing store")
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*stores, error) {
	s := &stores{}

	switch cfg.Store {
	case config.StoreMemory:
		s.inventory = motors.NewInventoryRepository()
		s.accounts = auth.NewAccountRepository()
		if err := motors.SeedDemo(ctx, s.inventory); err != nil {
			return nil, fmt.Errorf("seed demo inventory: %w", err)
		}
		log.Info("using in-memory store seeded with demo inventory")

	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err := migrations.Up(ctx, db); err != nil {
			s.Close(log)
			return nil, fmt.Errorf("migration error: %w", err)
		}
		s.inventory = motors.NewPostgresInventoryRepository(db)
		s.accounts = auth.NewPostgresAccountRepository(db)
		log.Info("using postgres store")

	case config.StoreMongo:
		client, err := openMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { return client.Disconnect(context.Background()) })

		db := client.Database(cfg.MongoDatabase)
		if s.inventory, err = motors.NewMongoInventoryRepository(ctx, db); err != nil {
			s.Close(log)
			return nil, err
		}
		if s.accounts, err = auth.NewMongoAccountRepository(ctx, db); err != nil {
			s.Close(log)
			return nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("using mongo store")

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.RedisURL == "" {
		s.flashes = session.NewMemoryStore(cfg.SessionTTL)
		return s, nil
	}

	redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		s.Close(log)
		return nil, err
	}
	s.flashes = redisStore
	s.closers = append(s.closers, redisStore.Close)
	return s, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func openMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

func migrate(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrations apply to the postgres store only, STORE is %q", cfg.Store)
	}

	db, err := openPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	log.Info("migrations applied")
	return nil
}
