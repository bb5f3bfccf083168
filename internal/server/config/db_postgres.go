package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-signup-service/migrations"
)

// OpenPostgres открывает подключение к PostgreSQL по DSN (драйвер pgx),
// проверяет его доступность и применяет встроенные миграции.
//
// Если миграции уже применены, migrate.ErrNoChange не считается ошибкой.
// Закрыть *sql.DB должен вызывающий.
func OpenPostgres(ctx context.Context, cfg StoreConfig, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		log.Error("error to connect db", zap.Error(err))
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		log.Error("error check db connection", zap.Error(err))
		db.Close()
		return nil, err
	}

	if err := migratePostgres(db); err != nil {
		log.Error("error applying migrations", zap.Error(err))
		db.Close()
		return nil, err
	}

	log.Info("postgres connected, migrations applied")
	return db, nil
}

// migratePostgres прогоняет миграции из embed.FS.
func migratePostgres(db *sql.DB) error {
	src, err := iofs.New(migrations.Postgres, migrations.PostgresDir)
	if err != nil {
		return fmt.Errorf("open migrations source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	// создаём миграции с выбранным драйвером
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrations: %w", err)
	}

	// запускаем создание миграций
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
