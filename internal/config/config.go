package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Face     FaceConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Capture  CaptureConfig
	Web      WebConfig
	Locale   string // default message locale (ja)
	Prices   PricesConfig
}

type DatabaseConfig struct {
	Driver       string // postgres, mariadb or sqlite
	URL          string // connection URL, MariaDB DSN or SQLite file path
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type StorageConfig struct {
	Backend   string // local, s3 or gcs
	Dir       string // local backend root directory
	PublicURL string // base URL prepended to object keys (e.g., https://cdn.example.com)
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint override (MinIO, R2, Supabase)
	Prefix    string // object key prefix (defaults to runner-photos/photos)
}

type FaceConfig struct {
	Provider string // none, http, openai or gemini
	URL      string // face analysis server for the http provider
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type CaptureConfig struct {
	CountdownTicks  int
	TickInterval    time.Duration
	ProcessingDelay time.Duration
	Cameras         []CameraSource // HTTP snapshot cameras
	CameraDir       string         // directory camera root (rehearsal mode)
}

// CameraSource is one configured HTTP snapshot camera.
type CameraSource struct {
	Name string
	URL  string
}

type WebConfig struct {
	Host           string // bind host override (WEB_HOST)
	Port           int    // bind port override (WEB_PORT), 0 keeps the flag value
	StaffPassword  string // enables staff login when set
	SessionSecret  string // HMAC key for staff session cookies (random per process when empty)
	RegisterRate   int    // registration requests per minute per client IP
	RegisterBurst  int
	AllowedOrigins []string
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
	Batch    RequestPricing `yaml:"batch"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration (e.g. "1s", "250ms").
// Zero is allowed so tests and rehearsals can disable delays.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// ParseCameras parses "name=url,name=url". An entry without a name uses its
// position ("camera-1", ...). Blank entries are skipped.
func ParseCameras(s string) []CameraSource {
	var cameras []CameraSource
	for entry := range strings.SplitSeq(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url, found := strings.Cut(entry, "=")
		if !found {
			url = name
			name = ""
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = "camera-" + strconv.Itoa(len(cameras)+1)
		}
		cameras = append(cameras, CameraSource{Name: name, URL: strings.TrimSpace(url)})
	}
	return cameras
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Storage: StorageConfig{
			Backend:   envString("STORAGE_BACKEND", "local"),
			Dir:       envString("STORAGE_DIR", "./data/photos"),
			PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			Region:    envString("STORAGE_REGION", "us-east-1"),
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			Prefix:    envString("STORAGE_PREFIX", "runner-photos/photos"),
		},
		Face: FaceConfig{
			Provider: envString("FACE_PROVIDER", "none"),
			URL:      os.Getenv("FACE_ANALYSIS_URL"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Capture: CaptureConfig{
			CountdownTicks:  envInt("CAPTURE_COUNTDOWN_TICKS", 5),
			TickInterval:    envDuration("CAPTURE_TICK_INTERVAL", time.Second),
			ProcessingDelay: envDuration("CAPTURE_PROCESSING_DELAY", 3*time.Second),
			Cameras:         ParseCameras(os.Getenv("CAMERAS")),
			CameraDir:       os.Getenv("CAMERA_DIR"),
		},
		Web: WebConfig{
			Host:           os.Getenv("WEB_HOST"),
			Port:           envInt("WEB_PORT", 0),
			StaffPassword:  os.Getenv("STAFF_PASSWORD"),
			SessionSecret:  os.Getenv("SESSION_SECRET"),
			RegisterRate:   envInt("REGISTER_RATE_PER_MINUTE", 30),
			RegisterBurst:  envInt("REGISTER_BURST", 10),
			AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		},
		Locale: envString("DEFAULT_LOCALE", "ja"),
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
