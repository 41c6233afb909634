package roadmap

import "errors"

// Error taxonomy shared by the model, store and command handlers. Handlers
// translate these into user-facing replies; nothing here is fatal.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAmbiguous       = errors.New("ambiguous roadmap, name required")
	ErrNoAccessible    = errors.New("no accessible roadmap")
	ErrConflict        = errors.New("concurrent modification")
)
