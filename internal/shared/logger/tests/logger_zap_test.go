package tests

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
)

func TestNew_Production_CreatesLogFileAndWrites(t *testing.T) {
	dir := t.TempDir()

	l, err := logger.New(logger.Options{Env: logger.EnvProduction, Dir: dir})
	require.NoError(t, err)

	// пишем лог
	l.Info("test message")
	require.NoError(t, l.Close())

	logPath := filepath.Join(dir, logger.FileName)
	b, err := os.ReadFile(logPath)
	require.NoError(t, err)

	s := string(b)
	require.NotEmpty(t, s)
	require.Regexp(t, `\btest message\b`, s)

	// проверяем формат времени: "HH:MM:SS DD.MM.YYYY"
	timeRe := regexp.MustCompile(`\b\d{2}:\d{2}:\d{2} \d{2}\.\d{2}\.\d{4}\b`)
	require.Truef(t, timeRe.MatchString(s), "expected custom time format, got: %q", s)
}

func TestNew_Production_SkipsDebug(t *testing.T) {
	dir := t.TempDir()

	l, err := logger.New(logger.Options{Env: logger.EnvProduction, Dir: dir})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Warn("visible")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(filepath.Join(dir, logger.FileName))
	require.NoError(t, err)
	require.NotContains(t, string(b), "hidden")
	require.Contains(t, string(b), "visible")
}

func TestNew_Development_WritesToStdout(t *testing.T) {
	var out bytes.Buffer

	l, err := logger.New(logger.Options{Env: logger.EnvDevelopment, Stdout: &out})
	require.NoError(t, err)

	l.Debug("debug is on in development")
	_ = l.Sync()

	require.Contains(t, out.String(), "debug is on in development")
}

func TestNew_UnknownEnvOrLevel(t *testing.T) {
	_, err := logger.New(logger.Options{Env: "staging"})
	require.Error(t, err)

	_, err = logger.New(logger.Options{Env: logger.EnvDevelopment, Level: "loud"})
	require.Error(t, err)
}

func TestLogger_LogRequest_WritesStructuredFields(t *testing.T) {
	var out bytes.Buffer

	l, err := logger.New(logger.Options{Env: logger.EnvDevelopment, Stdout: &out})
	require.NoError(t, err)

	l.LogRequest("POST", "/api/v1/signup", 409, 20, 158.5463)
	_ = l.Sync()

	s := out.String()
	// проверяем наличие ключевых полей
	for _, sub := range []string{
		"HTTP request",
		"method", "POST",
		"uri", "/api/v1/signup",
		"status", "409",
		"response_size", "20",
		"duration_ms",
	} {
		require.Contains(t, s, sub)
	}
}

func TestNewNop_CloseIsSafe(t *testing.T) {
	l := logger.NewNop()
	l.Info("nothing")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}

// принудительная ротация открывает новый файл, старый остаётся рядом
func TestNew_Production_Rotates(t *testing.T) {
	dir := t.TempDir()

	l, err := logger.New(logger.Options{Env: logger.EnvProduction, Dir: dir, RotateEvery: 20 * time.Millisecond})
	require.NoError(t, err)
	defer l.Close()

	l.Info("before rotation")

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) > 1
	}, 2*time.Second, 10*time.Millisecond)
}

// ошибка ротации пишется в сам логгер, ротатор и New при этом не гоняются за поле Logger
func TestNew_Production_RotateFailureIsLogged(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := logger.New(logger.Options{Env: logger.EnvProduction, Dir: dir, RotateEvery: 10 * time.Millisecond})
	require.NoError(t, err)

	// каталог заменяем файлом: открыть новый файл логов уже нельзя
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o600))

	time.Sleep(50 * time.Millisecond)
	l.Info("still alive")
	_ = l.Close()
}
