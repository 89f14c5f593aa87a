package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TTS providers selectable with TTS_PROVIDER.
const (
	ProviderAzure      = "azure"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderElevenLabs = "elevenlabs"
	ProviderCartesia   = "cartesia"
)

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for /v1 routes (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Speech
	TTSProvider      string
	SynthesisTimeout time.Duration
	AudioPlayer      string // Player command for the default speaker ("none" = discard)

	// Azure Speech (default provider)
	SpeechKey         string
	SpeechRegion      string
	SpeechEndpoint    string // Overrides the region endpoint when set
	AzureOutputFormat string

	// OpenAI TTS
	OpenAIKey      string
	OpenAITTSModel string
	OpenAITTSVoice string

	// Gemini TTS
	GeminiKey      string
	GeminiTTSModel string
	GeminiTTSVoice string

	// ElevenLabs TTS
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// Cartesia TTS
	CartesiaKey     string
	CartesiaURL     string
	CartesiaVoiceID string

	// Database (optional, enables synthesis history)
	DatabaseURL string

	// Redis (optional, enables async synthesis jobs)
	RedisURL string

	// Worker
	WorkerEnabled     bool
	MaxConcurrentJobs int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "5000"),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		TTSProvider:        strings.ToLower(getEnv("TTS_PROVIDER", ProviderAzure)),
		SynthesisTimeout:   getEnvDuration("SYNTHESIS_TIMEOUT", 60*time.Second),
		AudioPlayer:        getEnv("AUDIO_PLAYER", "ffplay"),
		SpeechKey:          getEnv("SPEECH_KEY", ""),
		SpeechRegion:       getEnv("SPEECH_REGION", ""),
		SpeechEndpoint:     getEnv("SPEECH_ENDPOINT", ""),
		AzureOutputFormat:  getEnv("AZURE_OUTPUT_FORMAT", "audio-24khz-48kbitrate-mono-mp3"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAITTSModel:     getEnv("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:     getEnv("OPENAI_TTS_VOICE", "alloy"),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiTTSModel:     getEnv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiTTSVoice:     getEnv("GEMINI_TTS_VOICE", "Kore"),
		ElevenLabsKey:      getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:  getEnv("ELEVENLABS_VOICE_ID", ""),
		CartesiaKey:        getEnv("CARTESIA_API_KEY", ""),
		CartesiaURL:        getEnv("CARTESIA_URL", ""),
		CartesiaVoiceID:    getEnv("CARTESIA_VOICE_ID", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		MaxConcurrentJobs:  getEnvInt("MAX_CONCURRENT_JOBS", 2),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected provider has its credentials.
func (c *Config) Validate() error {
	switch c.TTSProvider {
	case ProviderAzure:
		if c.SpeechKey == "" {
			return fmt.Errorf("SPEECH_KEY is required")
		}
		if c.SpeechRegion == "" && c.SpeechEndpoint == "" {
			return fmt.Errorf("SPEECH_REGION (or SPEECH_ENDPOINT) is required")
		}
		// Headerless formats are only playable when they are 16-bit mono PCM.
		if strings.HasPrefix(c.AzureOutputFormat, "raw-") && !strings.HasSuffix(c.AzureOutputFormat, "-16bit-mono-pcm") {
			return fmt.Errorf("AZURE_OUTPUT_FORMAT %q is not playable (use mp3 or raw-*-16bit-mono-pcm)", c.AzureOutputFormat)
		}
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TTS_PROVIDER=openai")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when TTS_PROVIDER=gemini")
		}
	case ProviderElevenLabs:
		if c.ElevenLabsKey == "" {
			return fmt.Errorf("ELEVENLABS_API_KEY is required when TTS_PROVIDER=elevenlabs")
		}
	case ProviderCartesia:
		if c.CartesiaKey == "" {
			return fmt.Errorf("CARTESIA_API_KEY is required when TTS_PROVIDER=cartesia")
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q (allowed: azure, openai, gemini, elevenlabs, cartesia)", c.TTSProvider)
	}

	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be at least 1")
	}

	return nil
}

// AsyncEnabled reports whether both the queue and the history store are configured.
func (c *Config) AsyncEnabled() bool {
	return c.RedisURL != "" && c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
