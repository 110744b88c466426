package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Progress storage
	SQLiteDBPath string

	// Editor
	HistoryCapacity int

	// Receipts
	ReceiptTemplateFile string
	ReceiptOutputDir    string
	ReceiptMergedName   string
	ReceiptWorkers      int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Local workbook
	SpreadsheetFile  string
	SpreadsheetSheet string

	// Export
	ExportBackend string
	ExportTimeout time.Duration
}

func Load() *Config {
	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   getEnv("FEELEDGER_LOG_FILE", "feeledger.log"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/feeledger.db"),

		HistoryCapacity: getEnvInt("HISTORY_CAPACITY", 60),

		ReceiptTemplateFile: getEnv("RECEIPT_TEMPLATE_FILE", ""),
		ReceiptOutputDir:    getEnv("RECEIPT_OUTPUT_DIR", "./output/receipts"),
		ReceiptMergedName:   getEnv("RECEIPT_MERGED_NAME", "receipts.html"),
		ReceiptWorkers:      getEnvInt("RECEIPT_WORKERS", 4),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "feeledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_requests"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Fees"),

		SpreadsheetFile:  getEnv("SPREADSHEET_FILE", "./data/fees.xlsx"),
		SpreadsheetSheet: getEnv("SPREADSHEET_SHEET", "Fees"),

		ExportBackend: getEnv("EXPORT_BACKEND", "file"),
		ExportTimeout: getEnvDuration("EXPORT_TIMEOUT", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.HistoryCapacity < 1 {
		errors = append(errors, fmt.Sprintf("invalid history capacity %d: must be at least 1", c.HistoryCapacity))
	} else if c.HistoryCapacity > 10000 {
		errors = append(errors, fmt.Sprintf("invalid history capacity %d: must be at most 10000", c.HistoryCapacity))
	}

	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.ReceiptTemplateFile != "" {
		if _, err := os.Stat(c.ReceiptTemplateFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("receipt template file does not exist: %s", c.ReceiptTemplateFile))
		}
	}
	if c.ReceiptOutputDir == "" {
		errors = append(errors, "receipt output directory cannot be empty")
	}
	if c.ReceiptMergedName == "" || strings.ContainsAny(c.ReceiptMergedName, `/\`) {
		errors = append(errors, fmt.Sprintf("invalid merged receipt name '%s': must be a plain file name", c.ReceiptMergedName))
	}
	if c.ReceiptWorkers < 1 || c.ReceiptWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid receipt workers %d: must be between 1 and 64", c.ReceiptWorkers))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validBackends := []string{"file", "sheets", "memory"}
	if !slices.Contains(validBackends, c.ExportBackend) {
		errors = append(errors, fmt.Sprintf("invalid export backend '%s': must be one of %v", c.ExportBackend, validBackends))
	}
	if c.ExportBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	}
	if c.ExportBackend == "file" {
		if c.SpreadsheetFile == "" {
			errors = append(errors, "spreadsheet file is required when using file backend")
		}
		if c.SpreadsheetSheet == "" {
			errors = append(errors, "spreadsheet sheet name is required when using file backend")
		}
	}

	if c.ExportTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at least 1 second", c.ExportTimeout))
	} else if c.ExportTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at most 10 minutes", c.ExportTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
