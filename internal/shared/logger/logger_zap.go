// Package logger содержит общий логгер для сервера и клиента.
//
// Пакет предоставляет Zap-логгер с двумя режимами:
//   - development: текстовый вывод в stdout, уровень debug;
//   - production: запись в файл с ротацией (lumberjack), файл
//     переключается каждые сутки в полночь.
//
// Также есть удобный метод для логирования HTTP-запросов.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Окружения, влияющие на место записи логов.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// FileName — имя активного файла логов в production.
const FileName = "app.log"

// Options — параметры логгера.
type Options struct {
	Env   string // development|production
	Dir   string // каталог для файлов логов (только production)
	Level string // debug|info|warn|error, пусто = по окружению
	// RotateEvery — период принудительной ротации файла, 0 = каждую полночь
	RotateEvery time.Duration
	// Stdout можно подменить в тестах
	Stdout io.Writer
}

// Logger представляет обёртку над zap.Logger.
//
// Встраивание *zap.Logger позволяет использовать все методы zap напрямую.
type Logger struct {
	*zap.Logger

	file        *lumberjack.Logger
	rotateEvery time.Duration
	stop        chan struct{}
	stopOnce sync.Once
}

// New создаёт логгер по окружению.
//
// В production логи пишутся в <Dir>/app.log, для файлов включена ротация
// (MaxSize/MaxBackups/MaxAge) и сжатие архивов, а фоновая горутина
// раз в сутки принудительно открывает новый файл.
// Формат времени: "HH:MM:SS DD.MM.YYYY".
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = customTimeEncoder

	l := &Logger{stop: make(chan struct{}), rotateEvery: opts.RotateEvery}

	var writer zapcore.WriteSyncer
	switch opts.Env {
	case EnvProduction:
		dir := opts.Dir
		if dir == "" {
			dir = "logs"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		// lumberjack отвечает за ротацию файлов
		l.file = &lumberjack.Logger{
			Filename:   filepath.Join(dir, FileName),
			MaxSize:    100, // MB
			MaxBackups: 30,  // сколько старых файлов хранить
			MaxAge:     30,  // дней
			Compress:   true,
		}
		writer = zapcore.AddSync(l.file)
	case EnvDevelopment, "":
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		writer = zapcore.AddSync(out)
	default:
		return nil, fmt.Errorf("unknown log env %q", opts.Env)
	}

	// выводим обычный текст, как и раньше
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		writer,
		level,
	)

	l.Logger = zap.New(core, zap.AddCaller())

	// ротатор стартует только с готовым l.Logger: он пишет в него ошибки ротации
	if l.file != nil {
		go l.rotateDaily()
	}
	return l, nil
}

// NewNop возвращает логгер, который ничего не пишет. Нужен в тестах.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), stop: make(chan struct{})}
}

// LogRequest записывает структурированный лог об HTTP-запросе.
//
// method и uri — параметры запроса,
// status — HTTP-статус ответа,
// responseSize — размер ответа в байтах,
// duration — длительность обработки запроса в миллисекундах.
func (logger *Logger) LogRequest(method, uri string, status, responseSize int, duration float64, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("method", method),
		zap.String("uri", uri),
		zap.Int("status", status),
		zap.Int("response_size", responseSize),
		zap.Float64("duration_ms", duration),
	}, fields...)
	logger.Info("HTTP request", fields...)
}

// Close останавливает суточную ротацию, сбрасывает буферы и закрывает файл.
func (logger *Logger) Close() error {
	logger.stopOnce.Do(func() { close(logger.stop) })
	_ = logger.Sync()
	if logger.file != nil {
		return logger.file.Close()
	}
	return nil
}

// rotateDaily переключает файл логов в каждую локальную полночь
// (или раз в rotateEvery, если он задан).
func (logger *Logger) rotateDaily() {
	for {
		next := logger.rotateEvery
		if next <= 0 {
			next = untilMidnight(time.Now())
		}
		timer := time.NewTimer(next)
		select {
		case <-logger.stop:
			timer.Stop()
			return
		case <-timer.C:
			if err := logger.file.Rotate(); err != nil {
				logger.Error("log rotation failed", zap.Error(err))
			}
		}
	}
}

// untilMidnight — сколько осталось до начала следующих суток.
func untilMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

func parseLevel(opts Options) (zapcore.Level, error) {
	if opts.Level == "" {
		if opts.Env == EnvProduction {
			return zap.InfoLevel, nil
		}
		return zap.DebugLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
		return lvl, fmt.Errorf("unknown log level %q", opts.Level)
	}
	return lvl, nil
}

// customTimeEncoder форматирует время для логов в виде "HH:MM:SS DD.MM.YYYY".
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05 02.01.2006"))
}
