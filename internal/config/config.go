package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	CORSAllowOrigins       string
	DatabaseURL            string
	RedisURL               string
	NATSAddress            string
	EventChannel           string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	MinDeadlineGap         time.Duration
	DeadlineWindow         time.Duration
	RequiredEvaluators     int
	SequentialGating       bool
	GroupSizeMin           int
	GroupSizeMax           int
	ResultCacheTTL         time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FYP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "FYPIFY API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("event.channel", "fypify")
	v.SetDefault("cloudinary.folder", "fypify/documents")
	v.SetDefault("deadline.min_gap_days", 15)
	v.SetDefault("deadline.window_hours", 48)
	v.SetDefault("evaluation.required_evaluators", 3)
	v.SetDefault("submission.sequential_gating", false)
	v.SetDefault("group.size_min", 1)
	v.SetDefault("group.size_max", 4)
	v.SetDefault("result.cache_ttl", "5m")

	ttlString := v.GetString("result.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid result cache ttl: %w", err)
	}

	gapDays := v.GetInt("deadline.min_gap_days")
	if gapDays <= 0 {
		gapDays = 15
	}

	windowHours := v.GetInt("deadline.window_hours")
	if windowHours <= 0 {
		windowHours = 48
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSAddress:            v.GetString("nats.url"),
		EventChannel:           v.GetString("event.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		MinDeadlineGap:         time.Duration(gapDays) * 24 * time.Hour,
		DeadlineWindow:         time.Duration(windowHours) * time.Hour,
		RequiredEvaluators:     v.GetInt("evaluation.required_evaluators"),
		SequentialGating:       v.GetBool("submission.sequential_gating"),
		GroupSizeMin:           v.GetInt("group.size_min"),
		GroupSizeMax:           v.GetInt("group.size_max"),
		ResultCacheTTL:         ttl,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RequiredEvaluators <= 0 {
		cfg.RequiredEvaluators = 3
	}

	if cfg.GroupSizeMin <= 0 {
		cfg.GroupSizeMin = 1
	}
	if cfg.GroupSizeMax < cfg.GroupSizeMin {
		cfg.GroupSizeMax = cfg.GroupSizeMin
	}

	return cfg, nil
}
