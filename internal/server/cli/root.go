// Package cli содержит cobra-команды серверного бинаря.
//
// Порядок сборки конфига: .env -> server.yaml -> переменные окружения ->
// флаги командной строки (только явно заданные) -> дефолты -> валидация.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/app"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
)

// RunServer запускает сервер с готовым конфигом. Подменяется в тестах.
var RunServer = app.Run

// flags — значения флагов командной строки.
type flags struct {
	envFile     string
	configPath  string
	env         string
	host        string
	port        int
	store       string
	mongoURI    string
	mongoDB     string
	postgresDSN string
}

// NewRootCmd создаёт корневую команду сервера.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "signup-server",
		Short: "Signup server — регистрация и список пользователей",
		Long: `HTTP-сервер регистрации пользователей.

Принимает POST /signup и отдаёт список пользователей по GET /.
Хранит пользователей в MongoDB (по умолчанию) или PostgreSQL.

Настройки берутся из server.yaml, переменных окружения и флагов.
Флаги имеют наивысший приоритет.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadDotEnv(f.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, f)
			if err != nil {
				return err
			}

			log, err := logger.New(logger.Options{
				Env:   cfg.Env,
				Dir:   cfg.Log.Dir,
				Level: cfg.Log.Level,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Close()

			ctx, stop := signal.NotifyContext(
				cmd.Context(),
				os.Interrupt,
				syscall.SIGTERM,
				syscall.SIGQUIT,
			)
			defer stop()

			return RunServer(ctx, cfg, log)
		},
	}

	cmd.SetOut(os.Stdout)

	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "файл с переменными окружения")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "путь к server.yaml")
	cmd.Flags().StringVar(&f.env, "env", "", "окружение: development|production")
	cmd.Flags().StringVar(&f.host, "host", "", "адрес для прослушивания")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "порт")
	cmd.Flags().StringVar(&f.store, "store", "", "хранилище: mongo|postgres")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "строка подключения к MongoDB")
	cmd.Flags().StringVar(&f.mongoDB, "mongo-db", "", "имя базы MongoDB")
	cmd.Flags().StringVar(&f.postgresDSN, "postgres-dsn", "", "DSN PostgreSQL")

	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает корневую команду.
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDotEnv подгружает .env. Отсутствие файла ошибкой не считается.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// buildConfig читает конфиг и накладывает явно заданные флаги.
func buildConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("env") {
		cfg.Env = f.env
	}
	if fl.Changed("host") {
		cfg.Server.Host = f.host
	}
	if fl.Changed("port") {
		cfg.Server.Port = f.port
	}
	if fl.Changed("store") {
		cfg.Store.Driver = f.store
	}
	if fl.Changed("mongo-uri") {
		cfg.Store.Mongo.URI = f.mongoURI
	}
	if fl.Changed("mongo-db") {
		cfg.Store.Mongo.Database = f.mongoDB
	}
	if fl.Changed("postgres-dsn") {
		cfg.Store.PostgresDSN = f.postgresDSN
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
