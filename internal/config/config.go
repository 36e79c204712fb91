package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Search   SearchConfig
	Routing  RoutingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RoutingLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	HuggingFace string
	WebSearch   string
}

type AIConfig struct {
	OllamaBaseURL  string
	EmbeddingModel string
	LLMProvider    string // "ollama" or "huggingface"
	LLMModel       string // e.g. "llama3", "qwen2.5"
	LLMTimeout     time.Duration
}

type SearchConfig struct {
	WebSearchURL     string
	WebCacheTTL      time.Duration
	WebMaxResults    int
	CorporateDomains []string
	CrawlRatePerSec  float64
	CrawlMaxPages    int
	SpreadsheetDir   string
}

// RoutingConfig holds every tunable threshold of the routing pipeline
type RoutingConfig struct {
	GroundingThreshold       float64
	GroundingMode            string // "lexical" or "llm"
	KBLowScoreThreshold      float64
	KBTopK                   int
	KBTrustedSourceTypes     []string
	CuratedCitationMin       int
	CuratedCitationMax       int
	CuratedCitationThreshold float64
	GeneralCitationMax       int
	GeneralCitationThreshold float64
	AttachmentCitationMax    int
	HistoryWindow            int
	LoopWindow               int
	LoopMaxPrompts           int
	ProbeTimeout             time.Duration
	CuratedModeDefault       bool
	IntentCacheTTL           time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RoutingLogFilePath: getEnv("ROUTING_LOG_FILE_PATH", "logs/routing.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			WebSearch:   getEnv("WEB_SEARCH_API_KEY", ""),
		},
		Ai: AIConfig{
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Search: SearchConfig{
			WebSearchURL:     getEnv("WEB_SEARCH_URL", "http://localhost:8888"),
			WebCacheTTL:      getEnvAsDuration("WEB_CACHE_TTL", 30*time.Minute),
			WebMaxResults:    getEnvAsInt("WEB_MAX_RESULTS", 8),
			CorporateDomains: getEnvAsList("CORPORATE_DOMAINS", nil),
			CrawlRatePerSec:  getEnvAsFloat("CRAWL_RATE_PER_SEC", 2),
			CrawlMaxPages:    getEnvAsInt("CRAWL_MAX_PAGES", 6),
			SpreadsheetDir:   getEnv("SPREADSHEET_DIR", "uploads"),
		},
		Routing: LoadRouting(),
	}
}

// LoadRouting reads only the routing thresholds. cmd/simulate uses it directly.
func LoadRouting() RoutingConfig {
	historyWindow := getEnvAsInt("HISTORY_WINDOW", 6)
	if historyWindow < 3 {
		historyWindow = 3
	}
	if historyWindow > 10 {
		historyWindow = 10
	}

	return RoutingConfig{
		GroundingThreshold:       getEnvAsFloat("GROUNDING_THRESHOLD", 0.10),
		GroundingMode:            getEnv("GROUNDING_MODE", "lexical"),
		KBLowScoreThreshold:      getEnvAsFloat("KB_LOW_SCORE_THRESHOLD", 0.35),
		KBTopK:                   getEnvAsInt("KB_TOP_K", 20),
		KBTrustedSourceTypes:     getEnvAsList("KB_TRUSTED_SOURCE_TYPES", []string{"portal", "admin", "website"}),
		CuratedCitationMin:       getEnvAsInt("CURATED_CITATION_MIN", 7),
		CuratedCitationMax:       getEnvAsInt("CURATED_CITATION_MAX", 10),
		CuratedCitationThreshold: getEnvAsFloat("CURATED_CITATION_THRESHOLD", 0.30),
		GeneralCitationMax:       getEnvAsInt("GENERAL_CITATION_MAX", 3),
		GeneralCitationThreshold: getEnvAsFloat("GENERAL_CITATION_THRESHOLD", 0.0),
		AttachmentCitationMax:    getEnvAsInt("ATTACHMENT_CITATION_MAX", 5),
		HistoryWindow:            historyWindow,
		LoopWindow:               getEnvAsInt("LOOP_WINDOW", 4),
		LoopMaxPrompts:           getEnvAsInt("LOOP_MAX_PROMPTS", 2),
		ProbeTimeout:             getEnvAsDuration("PROBE_TIMEOUT", 45*time.Second),
		CuratedModeDefault:       getEnvAsBool("CURATED_MODE_DEFAULT", false),
		IntentCacheTTL:           getEnvAsDuration("INTENT_CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
