// Package gen generates the companion files of annotated declarations.
//
// The generator works on the declarations read by the compiler/load
// package and writes, beside each declaration, one <name>_csr.go file and,
// per package, one csr_register.go file. Every file is built with jennifer
// and formatted with goimports.
//
// # Pipeline
//
//	load.Package (declarations of one package)
//	        ↓
//	   classification by role set
//	        ↓
//	   emitters: service, controller, codec, entity, mapper
//	        ↓
//	   registration file (RegisterAll)
//	        ↓
//	   writer (format, compare, write, remove stale output)
//
// # Roles
//
// A declaration carries one or more roles, selected by //csr: markers in
// its doc comment:
//
//   - service: companion <Name>API interface and a registry factory
//   - controller: gin route glue (Mount<Name>) and a registry factory
//   - json, tojson, fromjson: Decode<Name> and (*Name).EncodeJSON
//   - entity: Scan<Name> and Scan<Plural> over sql.ColumnScanner
//   - mapper: an implementation of the interface executing its SQL
//
// Codec and entity roles combine into one file with the service and
// controller roles. A mapper never combines with another role.
//
// # Error Handling
//
// Malformed declarations do not fail a run. They are reported as
// DeclarationError values in the Report and the declaration is skipped:
//
//	report, err := gen.Generate(ctx, pkgs, gen.WithDialect("postgres"))
//	if err != nil {
//		// configuration, format or write failure
//	}
//	for _, skipped := range report.Skipped {
//		log.Println(skipped)
//	}
package gen
