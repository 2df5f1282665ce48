package constants

// File upload constants
const (
	// MaxUploadSize is the maximum enrollment upload size in bytes (32MB)
	MaxUploadSize = 32 << 20

	// MaxMemoryUpload is the part of a multipart upload kept in memory;
	// larger uploads spill to a temporary file
	MaxMemoryUpload = 8 << 20

	// MaxJSONBodySize limits JSON request bodies
	MaxJSONBodySize = 1 << 20
)

// Batch enrollment constants
const (
	// DefaultConcurrency is the default number of parallel enrollment workers
	DefaultConcurrency = 4
)
