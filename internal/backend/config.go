package backend

import (
	"fmt"

	"jizhang/internal/config"
	gsheet "jizhang/internal/sheets/google"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:            backendType,
		SpreadsheetID:   appConfig.GoogleSpreadsheetID,
		SpreadsheetName: appConfig.GoogleSpreadsheetName,
		StockEnabled:    appConfig.StockEnabled,

		Credentials: gsheet.CredentialSource{
			File:        appConfig.GoogleCredentialsFile,
			SecretsFile: appConfig.SecretsFile,
			JSON:        appConfig.GoogleServiceAccount,
		},

		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}

	case SheetsBackend:
		if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
			return fmt.Errorf("a spreadsheet ID or name is required for sheets backend")
		}
		src := c.Credentials
		if src.File == "" && src.SecretsFile == "" && src.JSON == "" {
			return fmt.Errorf("a credentials file, secrets file or inline service account is required for sheets backend")
		}

	case MemoryBackend:
		// nothing to check
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP is enabled")
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
