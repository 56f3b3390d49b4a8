package main

import (
	"context"
	"log"
	"log/slog"

	"familytree/internal/config"
	"familytree/internal/repository/jsonfile"
	mongostore "familytree/internal/repository/mongo"
	"familytree/internal/repository/postgres"
)

func preparePostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger, drop, clear bool) (*seedTarget, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if drop {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}
	log.Println("✅ Schema ready")

	if clear {
		log.Println("🧹 Clearing members and settings...")
		if err := postgres.ClearData(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &seedTarget{
		members:     postgres.NewMemberRepository(repoConfig),
		users:       postgres.NewUserRepository(repoConfig),
		resetTokens: postgres.NewResetTokenRepository(repoConfig),
		close:       pool.Close,
	}, nil
}

func prepareMongo(ctx context.Context, cfg *config.Config, drop, clear bool) (*seedTarget, error) {
	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	closeClient := func() { _ = client.Disconnect(context.Background()) }
	stores := mongostore.New(client.Database(cfg.MongoDatabase), cfg.TablePrefix)

	if drop {
		log.Println("🗑️  Dropping all collections...")
		if err := stores.Drop(ctx); err != nil {
			closeClient()
			return nil, err
		}
	}

	log.Println("📋 Ensuring indexes...")
	if err := stores.EnsureIndexes(ctx); err != nil {
		closeClient()
		return nil, err
	}

	if clear {
		log.Println("🧹 Clearing members and settings...")
		if err := stores.Clear(ctx); err != nil {
			closeClient()
			return nil, err
		}
	}

	return &seedTarget{
		members:     stores.Members,
		users:       stores.Users,
		resetTokens: stores.ResetTokens,
		close:       closeClient,
	}, nil
}

// prepareJSON opens the data file; clear empties members and settings
func prepareJSON(cfg *config.Config, logger *slog.Logger, clear bool) (*seedTarget, error) {
	store, err := jsonfile.Open(cfg.DataFile, logger)
	if err != nil {
		return nil, err
	}
	log.Printf("📋 Using %s", store.Path())

	if clear {
		log.Println("🧹 Clearing members and settings...")
		if err := store.Clear(); err != nil {
			return nil, err
		}
	}

	return &seedTarget{
		members:     jsonfile.NewMemberRepository(store),
		users:       jsonfile.NewUserRepository(store),
		resetTokens: jsonfile.NewResetTokenRepository(store),
		close:       func() {},
	}, nil
}
