// Package migrations хранит SQL-миграции, встроенные в бинарник.
package migrations

import "embed"

// Postgres — миграции для драйвера postgres (golang-migrate, формат NNNNNN_name.up.sql).
//
//go:embed postgres/*.sql
var Postgres embed.FS

// PostgresDir — каталог внутри Postgres.
const PostgresDir = "postgres"
