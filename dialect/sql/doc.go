// Package sql holds the database runtime of generated mappers and entity
// scanners.
//
// # Driver
//
// Driver pairs a *sql.DB with its dialect and acts as the connection provider
// registered on csr.Registry. Generated mapper methods that do not receive an
// ExecQuerier acquire a dedicated connection with Driver.Conn and release it
// on return:
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	reg := csr.NewRegistry(csr.WithConnector(drv))
//
// # Command
//
// Command concatenates the fragments of a compiled SQL template and binds
// values to its `@_<seq>` markers. Query rewrites the markers into `$n`, `?`
// or `@pn` depending on the dialect and returns the arguments in order of
// appearance. Markers inside quoted literals are left verbatim.
//
// # Scanning
//
// Columns reads the result column names once into a name→ordinal map.
// Record holds the raw values of one row and exposes one accessor per basic
// kind; each reports false when the ordinal is negative or the value is NULL.
//
// # Statistics
//
// StatsDriver and DebugDriver wrap any Connector. StatsDriver counts the
// connections handed to mappers and how long they are held; DebugDriver logs
// their acquisition and release.
package sql
