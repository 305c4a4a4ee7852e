package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string

	// Provider selected for all chat turns.
	Provider string

	OpenAIAPIKey string
	OpenAIModel  string

	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string

	HFAPIKey string
	HFModel  string

	// Uploaded file text longer than this is summarized (or truncated)
	// before it enters the context.
	UploadRawThreshold int

	CORSOrigins []string
}

func Load() Config {
	// best effort; real env vars win over .env entries
	_ = godotenv.Load()

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8000"
	}

	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "chat_history.db"
	}

	provider := strings.ToLower(os.Getenv("PROVIDER"))
	if provider == "" {
		provider = "mock"
	}

	openAIModel := os.Getenv("OPENAI_MODEL")
	if openAIModel == "" {
		openAIModel = "gpt-4o-mini"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openrouter/auto"
	}
	openRouterSiteURL := os.Getenv("OPENROUTER_SITE_URL")
	if openRouterSiteURL == "" {
		openRouterSiteURL = "http://localhost:5173"
	}
	openRouterAppName := os.Getenv("OPENROUTER_APP_NAME")
	if openRouterAppName == "" {
		openRouterAppName = "Brainfish Chat"
	}

	hfModel := os.Getenv("HF_MODEL")
	if hfModel == "" {
		hfModel = "google/flan-t5-base"
	}

	threshold := 2000
	if v := os.Getenv("UPLOAD_RAW_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threshold = n
		}
	}

	origins := []string{"http://localhost:5173"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Addr:     addr,
		DBDriver: driver,
		DBDSN:    dsn,

		Provider: provider,

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  openAIModel,

		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: openRouterSiteURL,
		OpenRouterAppName: openRouterAppName,

		HFAPIKey: os.Getenv("HF_API_KEY"),
		HFModel:  hfModel,

		UploadRawThreshold: threshold,

		CORSOrigins: origins,
	}
}
