package mail

import "errors"

// ErrNotFound is returned when a folder, template, campaign or other record does not exist.
var ErrNotFound = errors.New("not found")
