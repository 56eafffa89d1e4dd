// Package dialect names the database dialects generated mappers can target
// and holds the fixed tables that depend on them: the type-hint translation
// table used by the SQL template compiler and the positional bind marker
// format used when a command is built.
//
// # Supported Dialects
//
//	dialect.Postgres  = "postgres"
//	dialect.MySQL     = "mysql"
//	dialect.SQLite    = "sqlite"
//	dialect.SQLServer = "sqlserver"
//
// # Type hints
//
// A placeholder may carry a type hint, `#{id,type=Integer}`. The hint is looked
// up case-insensitively in the dialect's table and yields a Type; hints that are
// not in the table yield TypeUnknown. For Postgres the resolved type is emitted
// as a cast on the positional marker (`$1::integer`), other dialects ignore it.
package dialect
