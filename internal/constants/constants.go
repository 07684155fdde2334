// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Pagination constants
const (
	// DefaultHandlerPageSize is the page size for paginated handler endpoints
	DefaultHandlerPageSize = 100
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// File upload constants
const (
	// MaxUploadSize is the maximum size of one multipart upload request in bytes (200MB)
	MaxUploadSize = 200 << 20

	// MaxFilesPerUpload caps the number of files accepted in one batch
	MaxFilesPerUpload = 50
)
