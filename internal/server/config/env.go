package config

// parseEnv overlays JWT_SECRET, DATABASE_DSN, PORT and LOG_LEVEL.
func parseEnv(config *Config, lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv("JWT_SECRET"); ok {
		setString(&config.SecretKey, v)
	}
	if v, ok := lookupEnv("DATABASE_DSN"); ok {
		setString(&config.DatabaseDSN, v)
	}
	if v, ok := lookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		setString(&config.LogLevel, v)
	}
}
