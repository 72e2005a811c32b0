package ports

import "errors"

// Location source outcomes that are not plain failures.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnsupported      = errors.New("location not supported")
)

// ErrNotFound is returned by repositories when an entity does not exist.
var ErrNotFound = errors.New("not found")
