// Package integration is an annotated package compiled together with its
// generated companions. Its tests run the generated codecs, scanners,
// mappers, services and controllers against an in-memory SQLite database.
package integration

//go:generate go run github.com/syssam/csr/cmd/csrgen generate .
