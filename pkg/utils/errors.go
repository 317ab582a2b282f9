// Package utils provides small shared helpers (env lookups, error wrapping)
// used by pkg/config. It intentionally carries no
// storage-engine logic — that belongs to dialogerr and the library packages.
package utils

import "fmt"

// Wrap adds context to an error message. It returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
