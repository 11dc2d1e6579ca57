package config

// DefaultConfig returns a Config populated with all default values. The API
// key is deliberately empty: it must come from the file, YOUTUBE_API_KEY or
// `viewtally key --set`.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Key:               "",
			BaseURL:           "https://www.googleapis.com/youtube/v3",
			TimeoutSec:        15,
			RequestsPerSecond: 0,
		},
		Search: SearchConfig{
			Query:       "HARIBOW",
			MaxResults:  250,
			MaxPages:    20,
			PageSize:    50,
			PageDelayMS: 200,
		},
		Statistics: StatisticsConfig{
			BatchSize:    50,
			BatchDelayMS: 150,
		},
		History: HistoryConfig{
			Backend:         BackendSQLite,
			Limit:           30,
			Path:            "~/.config/viewtally",
			SQLiteFile:      "history.db",
			JournalMode:     "wal",
			RedisURL:        "redis://localhost:6379/0",
			RedisKey:        "viewtally:history",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "viewtally",
			MongoCollection: "history",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
