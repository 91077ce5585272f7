package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./damlink.db"

	// DefaultStorageSubdir is where imported binaries land below the
	// storage root unless configured otherwise
	DefaultStorageSubdir = "dam"
)
