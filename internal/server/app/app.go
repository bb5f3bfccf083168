// Package app собирает сервер целиком: хранилище, сервисы, HTTP
// и корректное завершение по отмене контекста.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/api"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	h "github.com/IvanChernomyrdin/go-signup-service/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/repository"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/validation"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/tracing"
)

var (
	_ service.UsersRepo = (*repository.MongoUsersRepository)(nil)
	_ service.UsersRepo = (*repository.PostgresUsersRepository)(nil)
)

// Run поднимает сервер и блокируется, пока не отменят ctx
// (обычно по SIGINT/SIGTERM) или сервер не упадёт.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	shutdownTracing, err := tracing.InitTracerProvider(ctx, tracing.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// создаём репозиторий выбранного хранилища
	users, closeStore, err := OpenUsersRepo(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// создаём сервис
	svc := service.NewServices(service.Repositories{Users: users}, cfg, log)
	// создаём хандлер
	handler := api.NewHandler(log, validation.New(), cfg.HTTP.MaxBodyBytes)
	// создаём роутер
	router := h.NewRouter(handler, svc, cfg.HTTP, log)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}

	return Serve(ctx, server, ln, cfg.Server.ShutdownTimeout, log)
}

// Serve обслуживает ln до отмены ctx, затем перестаёт принимать
// соединения и ждёт текущие запросы не дольше shutdownTimeout.
func Serve(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		log.Info("server started", zap.String("addr", ln.Addr().String()))

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-gctx.Done()

		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единая обработка ошибок
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

// OpenUsersRepo подключается к хранилищу из конфига и возвращает
// репозиторий пользователей и функцию закрытия подключения.
func OpenUsersRepo(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (service.UsersRepo, func(), error) {
	switch cfg.Driver {
	case config.StoreMongo:
		client, coll, err := config.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return repository.NewMongoUsersRepository(coll), closeFn, nil

	case config.StorePostgres:
		db, err := config.OpenPostgres(ctx, cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Warn("postgres close failed", zap.Error(err))
			}
		}
		return repository.NewPostgresUsersRepository(db), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
