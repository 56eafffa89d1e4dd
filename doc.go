// Package csr is the runtime of code generated by csrgen.
//
// Generated files register their factories and controllers on a Registry,
// which replaces process-wide service and controller lists:
//
//	reg := csr.NewRegistry(csr.WithConnector(drv))
//	services.RegisterAll(reg)
//	controllers.RegisterAll(reg)
//
//	router := gin.Default()
//	reg.Mount(router)
//
// Keys are full type names, "<import path>.<Name>", prefixed with "*" for
// pointer types. A factory resolves its constructor dependencies with
// Resolve using the same keys.
package csr
