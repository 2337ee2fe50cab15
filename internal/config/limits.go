package config

const (
	// MaxSearchQueryLength is the maximum length for tree and document search
	// queries. Longer queries cannot match a document name, which is itself
	// limited to 255 characters.
	MaxSearchQueryLength = 255

	// MaxUploadFilesPerRequest is the maximum number of files in one upload
	// request. Each file is buffered in memory until its transfer starts.
	MaxUploadFilesPerRequest = 20

	// DefaultLogMaxFiles is how many server log files are kept when LOG_DIR
	// is set and LOG_MAX_FILES is not.
	DefaultLogMaxFiles = 10
)
