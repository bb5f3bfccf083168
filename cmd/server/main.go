// @title           Signup service API
// @version         1.0
// @description     User signup and listing over a document store.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /api/v1
// @schemes http
//
// Package main содержит точку входа серверного приложения.
//
// Разбор флагов, загрузка конфига и жизненный цикл сервера вынесены
// в internal/server/cli и internal/server/app.
package main

import "github.com/IvanChernomyrdin/go-signup-service/internal/server/cli"

var (
	// buildVersion задаётся через -ldflags при сборке.
	buildVersion = "dev"
	// buildDate задаётся через -ldflags при сборке.
	buildDate = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
