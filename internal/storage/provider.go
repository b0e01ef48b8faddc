// Package storage defines the profile directory abstraction.
package storage

// Provider is the interface for whole-file operations inside one profile
// directory. Every Write replaces the full file content.
type Provider interface {
	// Root returns the absolute profile directory.
	Root() string
	// Read returns the raw bytes of the file at name (relative to the profile root).
	Read(name string) ([]byte, error)
	// Write atomically replaces the file at name with content.
	Write(name string, content []byte) error
	// Exists reports whether name exists.
	Exists(name string) (bool, error)
	// Move renames oldName to newName (both relative to the profile root).
	Move(oldName, newName string) error
}

// Opener returns a Provider for a profile directory.
type Opener func(dir string) (Provider, error)
