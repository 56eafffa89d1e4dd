package dialect

import (
	"strconv"
	"strings"

	"ariga.io/atlas/sql/postgres"
)

// Dialect names.
const (
	Postgres  = "postgres"
	MySQL     = "mysql"
	SQLite    = "sqlite"
	SQLServer = "sqlserver"
)

// Type is a dialect specific parameter type resolved from a placeholder hint.
type Type string

// TypeUnknown is the type of parameters without a hint or with a hint that
// is not in the dialect table.
const TypeUnknown Type = ""

// Valid reports whether name is a known dialect.
func Valid(name string) bool {
	switch name {
	case Postgres, MySQL, SQLite, SQLServer:
		return true
	}
	return false
}

// Normalize maps driver names and aliases onto a dialect name.
// Unknown names are returned unchanged.
func Normalize(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "postgresql", "pgx", "pq", "npgsql":
		return Postgres
	case "sqlite3":
		return SQLite
	case "mssql":
		return SQLServer
	case "mariadb":
		return MySQL
	default:
		return n
	}
}

// postgresTypes translates hint names onto Postgres types. Keys are lower case;
// the names follow the NpgsqlDbType enumeration, so existing templates keep
// working.
var postgresTypes = map[string]Type{
	"bigint":                   postgres.TypeBigInt,
	"bit":                      postgres.TypeBit,
	"boolean":                  postgres.TypeBoolean,
	"box":                      postgres.TypeBox,
	"bytea":                    postgres.TypeBytea,
	"char":                     postgres.TypeChar,
	"cidr":                     postgres.TypeCIDR,
	"circle":                   postgres.TypeCircle,
	"date":                     postgres.TypeDate,
	"double":                   postgres.TypeDouble,
	"inet":                     postgres.TypeInet,
	"integer":                  postgres.TypeInteger,
	"interval":                 postgres.TypeInterval,
	"json":                     postgres.TypeJSON,
	"jsonb":                    postgres.TypeJSONB,
	"line":                     postgres.TypeLine,
	"lseg":                     postgres.TypeLseg,
	"macaddr":                  postgres.TypeMACAddr,
	"macaddr8":                 postgres.TypeMACAddr8,
	"money":                    postgres.TypeMoney,
	"numeric":                  postgres.TypeNumeric,
	"path":                     postgres.TypePath,
	"point":                    postgres.TypePoint,
	"polygon":                  postgres.TypePolygon,
	"real":                     postgres.TypeReal,
	"smallint":                 postgres.TypeSmallInt,
	"text":                     postgres.TypeText,
	"time":                     postgres.TypeTime,
	"timetz":                   postgres.TypeTimeTZ,
	"timestamp":                postgres.TypeTimestamp,
	"timestamptz":              postgres.TypeTimestampTZ,
	"tsquery":                  postgres.TypeTSQuery,
	"tsvector":                 postgres.TypeTSVector,
	"uuid":                     postgres.TypeUUID,
	"varbit":                   postgres.TypeBitVar,
	"varchar":                  postgres.TypeVarChar,
	"xml":                      postgres.TypeXML,
	"citext":                   "citext",
	"hstore":                   "hstore",
	"name":                     "name",
	"oid":                      "oid",
	"refcursor":                "refcursor",
	"regtype":                  "regtype",
	"xid":                      "xid",
	"cid":                      "cid",
	"int2vector":               "int2vector",
	"oidvector":                "oidvector",
	"int4range":                "int4range",
	"int8range":                "int8range",
	"numrange":                 "numrange",
	"tsrange":                  "tsrange",
	"tstzrange":                "tstzrange",
	"daterange":                "daterange",
	"jsonpath":                 "jsonpath",
	"ltree":                    "ltree",
	"lquery":                   "lquery",
	"ltxtquery":                "ltxtquery",
	"geometry":                 "geometry",
	"geography":                "geography",
	"internalchar":             `"char"`,
	"timestampwithtimezone":    postgres.TypeTimestampTZ,
	"timewithtimezone":         postgres.TypeTimeTZ,
	"charactervarying":         postgres.TypeVarChar,
	"doubleprecision":          postgres.TypeDouble,
	"timestampwithouttimezone": postgres.TypeTimestamp,
}

// mysqlTypes and sqliteTypes only need to recognize hints; positional
// markers are never cast on these dialects.
var (
	mysqlTypes = map[string]Type{
		"bigint": "bigint", "integer": "int", "smallint": "smallint", "boolean": "bool",
		"double": "double", "real": "float", "numeric": "decimal", "text": "text",
		"varchar": "varchar", "char": "char", "date": "date", "time": "time",
		"timestamp": "datetime", "timestamptz": "timestamp", "json": "json",
		"bytea": "blob", "uuid": "char(36)",
	}
	sqliteTypes = map[string]Type{
		"bigint": "integer", "integer": "integer", "smallint": "integer", "boolean": "integer",
		"double": "real", "real": "real", "numeric": "numeric", "text": "text",
		"varchar": "text", "char": "text", "date": "text", "time": "text",
		"timestamp": "datetime", "timestamptz": "datetime", "json": "text",
		"bytea": "blob", "uuid": "text",
	}
	sqlserverTypes = map[string]Type{
		"bigint": "bigint", "integer": "int", "smallint": "smallint", "boolean": "bit",
		"double": "float", "real": "real", "numeric": "decimal", "text": "nvarchar(max)",
		"varchar": "nvarchar", "char": "nchar", "date": "date", "time": "time",
		"timestamp": "datetime2", "timestamptz": "datetimeoffset", "bytea": "varbinary(max)",
		"uuid": "uniqueidentifier",
	}
)

// ResolveType translates a placeholder hint for the given dialect. An empty
// or unknown hint resolves to TypeUnknown.
func ResolveType(name, hint string) Type {
	if hint == "" {
		return TypeUnknown
	}
	var table map[string]Type
	switch Normalize(name) {
	case Postgres:
		table = postgresTypes
	case MySQL:
		table = mysqlTypes
	case SQLite:
		table = sqliteTypes
	case SQLServer:
		table = sqlserverTypes
	default:
		return TypeUnknown
	}
	return table[strings.ToLower(hint)]
}

// Placeholder returns the positional bind marker of the k-th (1-based) bound
// argument in the given dialect, including a cast for typed Postgres arguments.
func Placeholder(name string, k int, t Type) string {
	switch Normalize(name) {
	case Postgres:
		if t != TypeUnknown {
			return "$" + strconv.Itoa(k) + "::" + string(t)
		}
		return "$" + strconv.Itoa(k)
	case SQLServer:
		return "@p" + strconv.Itoa(k)
	default:
		return "?"
	}
}
