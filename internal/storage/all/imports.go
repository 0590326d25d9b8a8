// Package all wires all built-in warehouse backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories with the storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "postgres" (lakeetl/internal/storage/postgres)
//   - "sqlite"   (lakeetl/internal/storage/sqlite)
//
// Typical usage (in cmd/lakeetl/main.go or a similar wiring layer):
//
//	import (
//	    _ "lakeetl/internal/storage/all" // enable all built-in backends
//
//	    "lakeetl/internal/storage"
//	)
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind: cfg.Storage.Kind,
//	    DSN:  cfg.Storage.DB.DSN,
//	})
//
// This pattern keeps backend-specific wiring in a single, small package and
// lets the pipeline depend only on the storage abstraction rather than on
// individual drivers.
package all

import (
	_ "lakeetl/internal/storage/postgres"
	_ "lakeetl/internal/storage/sqlite"
)
