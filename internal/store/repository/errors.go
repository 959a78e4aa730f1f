package repository

import "errors"

// ErrNotFound is returned when a lookup by identifier matches no row
var ErrNotFound = errors.New("not found")
