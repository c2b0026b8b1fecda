package backend

import (
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	loc, err := appConfig.Location()
	if err != nil {
		return Config{}, fmt.Errorf("load timezone: %w", err)
	}

	sink := MemorySink
	if appConfig.GoogleSpreadsheetID != "" {
		sink = SheetsSink
	}

	return Config{
		SQLiteDBPath: appConfig.SQLiteDBPath,
		JWTSecret:    appConfig.JWTSecret,
		Location:     loc,

		DashboardCacheTTL:  appConfig.DashboardCacheTTL,
		DashboardCacheSize: appConfig.DashboardCacheSize,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Sink:                     sink,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Sink != "" && !c.Sink.IsValid() {
		return fmt.Errorf("invalid sink type: %s", c.Sink)
	}
	if c.Sink == SheetsSink && c.GoogleSpreadsheetID == "" {
		return fmt.Errorf("Google Spreadsheet ID is required for sheets sink")
	}
	return nil
}
