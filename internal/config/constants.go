package config

const (
	// DefaultDatabasePath is the default path for the session database
	DefaultDatabasePath = "./libshelf-session.db"
)
