package config

import "os"

// Environment variables read by ApplyEnv.
const (
	EnvConfigPath  = "JOCKEY_CONFIG"
	EnvHTTPAddr    = "JOCKEY_HTTP_ADDR"
	EnvSerialPort  = "JOCKEY_SERIAL_PORT"
	EnvJournalPath = "JOCKEY_JOURNAL"
	EnvLogLevel    = "LOG_LEVEL"
)

// ConfigPath returns the config path from JOCKEY_CONFIG.
// Falls back to the provided default if not set.
func ConfigPath(defaultPath string) string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	return defaultPath
}

// ApplyEnv overlays environment overrides onto s.
func (s *Service) ApplyEnv() {
	if addr := os.Getenv(EnvHTTPAddr); addr != "" {
		s.HTTPAddr = addr
	}
	if port := os.Getenv(EnvSerialPort); port != "" {
		s.Serial.Port = port
	}
	if path := os.Getenv(EnvJournalPath); path != "" {
		s.JournalPath = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		s.LogLevel = level
	}
}
