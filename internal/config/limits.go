package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFilenameLength is the maximum length for stored filenames.
	// Matches common filesystem limits so downloads round-trip cleanly.
	MaxFilenameLength = 255

	// MaxMemoLength is the maximum length for a version memo.
	MaxMemoLength = 2000

	// DefaultMaxUploadBytes caps a single upload at 100 MiB unless
	// MAX_UPLOAD_BYTES overrides it.
	DefaultMaxUploadBytes = 100 << 20
)
