// Package storage defines the file-system abstraction for the export archive
// and the workbook inbox.
package storage

import "github.com/starford/warrantdesk/internal/models"

// Provider is the interface for managed directory file operations.
// All paths are relative to the provider root.
type Provider interface {
	// List returns metadata for every file under dir whose extension is one
	// of exts (case-insensitive). With no exts every file is listed.
	List(dir string, exts ...string) ([]models.StoredFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
