package settings

type Config struct {
	Logger Logger `mapstructure:"logger"`
	Queue  Queue  `mapstructure:"queue"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// Queue is the configuration for a ring queue
type Queue struct {
	InitialCapacity int `mapstructure:"initial_capacity"`
	MaxCapacity     int `mapstructure:"max_capacity"` // 0 means unlimited
}
