package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Page extractor backends selectable with EXTRACTOR.
const (
	ExtractorNative  = "native"
	ExtractorDocconv = "docconv"
	ExtractorOCR     = "ocr"
)

type Config struct {
	Port      string
	JWTSecret string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	AwsEndpoint  string
	BucketName   string

	KafkaBrokers       []string
	KafkaTopic         string
	KafkaRetryAttempts int

	GrammarFile      string
	ReplicateHeaders bool
	Extractor        string
	OCRLanguage      string
	Workers          int
	DateTimezone     string

	LogLevel  string
	LogFormat string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AwsAccessKey:       getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:       getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:          getEnv("AWS_REGION", "us-east-2"),
		AwsEndpoint:        getEnv("AWS_ENDPOINT", ""),
		BucketName:         getEnv("BUCKET_NAME", ""),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS"),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "emailpdf.pages"),
		KafkaRetryAttempts: getEnvInt("KAFKA_RETRY_ATTEMPTS", 3),
		GrammarFile:        getEnv("GRAMMAR_FILE", ""),
		ReplicateHeaders:   getEnvBool("REPLICATE_HEADERS", false),
		Extractor:          getEnv("EXTRACTOR", ExtractorNative),
		OCRLanguage:        getEnv("OCR_LANGUAGE", "eng"),
		Workers:            getEnvInt("WORKERS", 4),
		DateTimezone:       getEnv("DATE_TIMEZONE", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Extractor {
	case ExtractorNative, ExtractorDocconv, ExtractorOCR:
	default:
		errs = append(errs, fmt.Errorf("EXTRACTOR=%q: want %s, %s or %s", c.Extractor, ExtractorNative, ExtractorDocconv, ExtractorOCR))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS=%d: must be at least 1", c.Workers))
	}
	if (c.AwsAccessKey == "") != (c.AwsSecretKey == "") {
		errs = append(errs, errors.New("AWS_ACCESS_KEY and AWS_SECRET_KEY must be set together"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC not set"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves DATE_TIMEZONE. Empty means the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.DateTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DateTimezone)
	if err != nil {
		return nil, fmt.Errorf("DATE_TIMEZONE=%q: %w", c.DateTimezone, err)
	}
	return loc, nil
}

// HasS3 reports whether object storage credentials were supplied.
func (c *Config) HasS3() bool { return c.AwsAccessKey != "" && c.AwsSecretKey != "" }

// HasKafka reports whether a broker list was supplied.
func (c *Config) HasKafka() bool { return len(c.KafkaBrokers) > 0 }

// NewLogger configures logrus from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Invalid log level, using info")
	}
	logger.SetLevel(level)

	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	return logger
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.Warnf("%s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
