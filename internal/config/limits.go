package config

const (
	// MaxNameLength is the maximum length for category and folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxNameLength = 255

	// MaxTitleLength is the maximum length for post and note titles.
	// Same bound as names for consistency.
	MaxTitleLength = 255

	// MaxTagNameLength keeps tags short enough to render inline.
	MaxTagNameLength = 50

	// MaxCommentLength bounds a single comment body.
	MaxCommentLength = 2000

	// MaxExcerptLength is how much of a post body is taken for the
	// auto-generated excerpt when none is supplied.
	MaxExcerptLength = 200

	// MaxUploadBytes is the upload size cap for media files (10 MiB).
	MaxUploadBytes = 10 << 20
)
