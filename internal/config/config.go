package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	S3         S3Config
	LLM        LLMConfig
	Processing ProcessingConfig
	Qdrant     QdrantConfig
	Worker     WorkerConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	Version     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type StorageConfig struct {
	Driver            string
	UploadPath        string
	MaxFileSize       int64
	AllowedExtensions []string
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type LLMConfig struct {
	Provider         string
	FallbackProvider string
	Temperature      float32
	MaxTokens        int
	Timeout          time.Duration
	MaxRetries       int
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type OpenAIConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
	BaseURL    string
}

type ProcessingConfig struct {
	EnableOCR           bool
	EnableAIEnhancement bool
	OCRProvider         string
	OCRLanguage         string
	OCRConcurrency      int
	OCRDPI              int
	TesseractCmd        string
	PdftoppmCmd         string
	ExtractTimeout      time.Duration
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8000"),
			Env:     getEnv("ENV", "development"),
			Version: getEnv("API_VERSION", "1.0.0"),
			CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			}),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "memory")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "resume_user"),
			Password:   getEnv("DB_PASSWORD", "password123"),
			DBName:     getEnv("DB_NAME", "resume_parser"),
			SQLitePath: getEnv("SQLITE_PATH", "resume_parser.db"),
		},
		Storage: StorageConfig{
			Driver:            strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			UploadPath:        getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
			AllowedExtensions: getEnvAsSlice("ALLOWED_EXTENSIONS", []string{"pdf", "docx", "doc", "txt", "jpg", "jpeg", "png"}),
		},
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", "resume-uploads"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		LLM: LLMConfig{
			Provider:         strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			FallbackProvider: strings.ToLower(getEnv("LLM_FALLBACK_PROVIDER", "")),
			Temperature:      float32(getEnvAsFloat("LLM_TEMPERATURE", 0.3)),
			MaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 2000),
			Timeout:          getEnvAsDuration("LLM_TIMEOUT", "30s"),
			MaxRetries:       getEnvAsInt("LLM_MAX_RETRIES", 2),
			Gemini: GeminiConfig{
				APIKey:     getEnv("GEMINI_API_KEY", ""),
				Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
				EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			},
			OpenAI: OpenAIConfig{
				APIKey:     getEnv("OPENAI_API_KEY", ""),
				Model:      getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
				EmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
				BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			},
		},
		Processing: ProcessingConfig{
			EnableOCR:           getEnvAsBool("ENABLE_OCR", true),
			EnableAIEnhancement: getEnvAsBool("ENABLE_AI_ENHANCEMENT", true),
			OCRProvider:         strings.ToLower(getEnv("OCR_PROVIDER", "tesseract")),
			OCRLanguage:         getEnv("OCR_LANGUAGE", "eng"),
			OCRConcurrency:      getEnvAsInt("OCR_CONCURRENCY", 4),
			OCRDPI:              getEnvAsInt("OCR_DPI", 300),
			TesseractCmd:        getEnv("TESSERACT_CMD", "tesseract"),
			PdftoppmCmd:         getEnv("PDFTOPPM_CMD", "pdftoppm"),
			ExtractTimeout:      getEnvAsDuration("EXTRACT_TIMEOUT", "2m"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_chunks"),
			VectorSize: uint64(getEnvAsInt64("VECTOR_SIZE", 768)),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// IsDevelopment reports whether verbose framework logging should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getEnvAsSlice accepts either a JSON array (`["pdf","txt"]`) or a
// comma-separated list (`pdf,txt`). Entries are trimmed and lowercased.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}

	var parsed []string
	if strings.HasPrefix(valueStr, "[") {
		if err := json.Unmarshal([]byte(valueStr), &parsed); err != nil {
			return defaultValue
		}
	} else {
		parsed = strings.Split(valueStr, ",")
	}

	result := make([]string, 0, len(parsed))
	for _, item := range parsed {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
