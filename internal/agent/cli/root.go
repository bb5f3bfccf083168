// Package cli реализует консольный клиент сервера регистрации (usersctl).
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - разбор аргументов и флагов командной строки;
//   - выполнение запросов к серверу и вывод результата пользователю.
//
// Точка входа пакета — функция Execute.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// DefaultServerURL — адрес сервера вместе с префиксом API.
const DefaultServerURL = "http://127.0.0.1:5000/api/v1"

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ServerURL — базовый URL сервера вместе с префиксом API.
	ServerURL string
	// Timeout — ограничение на один запрос к серверу.
	Timeout time.Duration
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// Адрес сервера по умолчанию можно задать переменной USERSCTL_SERVER.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	defaultURL := DefaultServerURL
	if v := os.Getenv("USERSCTL_SERVER"); v != "" {
		defaultURL = v
	}

	cmd := &cobra.Command{
		Use:   "usersctl",
		Short: "usersctl — клиент сервера регистрации пользователей",
		Long: `usersctl.

Команды:
  signup   Регистрация нового пользователя
  list     Список пользователей
  version  Версия и дата сборки

Примеры:

Регистрация:
  usersctl signup --name Ann --email ann@example.com --password secret1

Пароль из stdin:
  echo secret1 | usersctl signup --name Ann --email ann@example.com --password-stdin

Список:
  usersctl list
  usersctl list --json
`,
		SilenceUsage: true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", defaultURL, "server base URL (with API prefix)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(NewSignupCmd(app))
	cmd.AddCommand(NewListCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке выполнения команды сообщение выводится в stderr, после чего процесс
// завершается с кодом 1 (os.Exit(1)).
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
