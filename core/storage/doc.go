// Package storage provides a backend-agnostic object storage engine.
//
// An Engine binds one registered Driver (local files, memory, MinIO, S3 or a
// SQL table) and exposes a uniform set of operations over flat string keys.
// Directory keys end with "/".
//
// # Drivers
//
// Drivers live in sub-packages and register themselves by name in init.
// Importing objectfs/core/storage/drivers links all of them:
//
//	import _ "objectfs/core/storage/drivers"
//
//	engine, err := storage.Create(ctx, "file", "/srv/data", "", "", "")
//
// # Operations
//
//   - CreateRoot: creates the storage root (directory or bucket).
//   - Head: metadata of one key.
//   - List / ListAll / Walk: lexically ordered listing with marker pagination.
//   - Read: ranged streaming reader.
//   - Write / WriteReader: streaming writes, atomic where the backend allows.
//   - Remove: deletes a key; missing keys follow Config.StrictRemove.
//   - Copy: streams an object between two engines.
//
// # Errors
//
// Every failure is an *Error carrying an operation, a key and one of the
// sentinel kinds (ErrNotFound, ErrInvalidArgument...). Match them with
// errors.Is.
//
// # Pipes
//
// NewPipe returns a bounded in-memory pipe. Writers block while the buffer
// is full and readers block while it is empty; closing either end wakes the
// other. CreateReaderWriter wraps a pipe in engine handles.
package storage
