package migrations

import "embed"

// FS содержит sql-файлы миграций, порядок задаётся числовым префиксом
//
//go:embed *.sql
var FS embed.FS

var Up = []string{"001_init.up.sql", "002_indexes.up.sql"}
var Down = []string{"002_indexes.down.sql", "001_init.down.sql"}
