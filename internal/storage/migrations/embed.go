package migrations

import "embed"

// PostgresFS embeds the executions and reports schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the day-range schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
