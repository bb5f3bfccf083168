package tests

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/cli"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
)

// clearEnv убирает переменные, которые переопределяют конфиг.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "APP_HOST", "APP_PORT", "STORE_DRIVER",
		"MONGO_URI", "MONGO_DB", "POSTGRES_DSN", "LOG_DIR", "LOG_LEVEL",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

// captureRun подменяет запуск сервера и возвращает указатель на полученный конфиг.
func captureRun(t *testing.T, runErr error) **config.Config {
	t.Helper()
	var got *config.Config

	orig := cli.RunServer
	cli.RunServer = func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		got = cfg
		return runErr
	}
	t.Cleanup(func() { cli.RunServer = orig })

	return &got
}

func TestNewRootCmd_HasVersion(t *testing.T) {
	cmd := cli.NewRootCmd("1.0.0", "2026-01-16")

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	if !names["version"] {
		t.Fatalf("expected subcommand %q to exist", "version")
	}
}

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	clearEnv(t)
	got := captureRun(t, nil)

	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{
		"--env-file", "",
		"--host", "0.0.0.0",
		"--port", "8081",
		"--mongo-uri", "mongodb://db:27017",
		"--mongo-db", "signup",
	})
	cmd.SetOut(&bytes.Buffer{})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.NotNil(t, *got)

	cfg := *got
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8081, cfg.Server.Port)
	require.Equal(t, config.StoreMongo, cfg.Store.Driver)
	require.Equal(t, "mongodb://db:27017", cfg.Store.Mongo.URI)
	require.Equal(t, "signup", cfg.Store.Mongo.Database)
	require.Equal(t, "User", cfg.Store.Mongo.Collection)
}

// флаг сильнее переменной окружения
func TestRootCmd_FlagBeatsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_DB", "from_env")
	got := captureRun(t, nil)

	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{"--env-file", "", "--mongo-db", "from_flag"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Equal(t, "from_flag", (*got).Store.Mongo.Database)
}

func TestRootCmd_PostgresFromFlags(t *testing.T) {
	clearEnv(t)
	got := captureRun(t, nil)

	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{
		"--env-file", "",
		"--store", "postgres",
		"--postgres-dsn", "postgres://u:p@localhost:5432/db?sslmode=disable",
	})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Equal(t, config.StorePostgres, (*got).Store.Driver)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	clearEnv(t)
	got := captureRun(t, nil)

	// без имени базы сервер не стартует
	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{"--env-file", ""})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid config")
	require.Nil(t, *got)
}

func TestRootCmd_RunErrorReturned(t *testing.T) {
	clearEnv(t)
	boom := errors.New("boom")
	captureRun(t, boom)

	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{"--env-file", "", "--mongo-db", "signup"})
	cmd.SetErr(&bytes.Buffer{})

	require.ErrorIs(t, cmd.ExecuteContext(context.Background()), boom)
}

func TestRootCmd_LoadsDotEnvAndConfigFile(t *testing.T) {
	clearEnv(t)
	got := captureRun(t, nil)

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TEST_SIGNUP_DB=from_dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TEST_SIGNUP_DB") })

	cfgPath := filepath.Join(dir, "server.yaml")
	yml := `
server:
  port: 7000
store:
  mongo:
    database: "${TEST_SIGNUP_DB}"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yml), 0o600))

	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{"--env-file", envPath, "--config", cfgPath})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Equal(t, 7000, (*got).Server.Port)
	require.Equal(t, "from_dotenv", (*got).Store.Mongo.Database)
}

// отсутствующий .env не мешает запуску
func TestRootCmd_MissingDotEnvIgnored(t *testing.T) {
	clearEnv(t)
	got := captureRun(t, nil)

	cmd := cli.NewRootCmd("dev", "now")
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "nope.env"), "--mongo-db", "x"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.NotNil(t, *got)
}
