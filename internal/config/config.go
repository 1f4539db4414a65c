package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL"  envDefault:"http://localhost:8085" validate:"url"`

	MaxRoomSize    int `env:"MAX_ROOM_SIZE"    envDefault:"25" validate:"min=1"`
	RoomTTLMinutes int `env:"ROOM_TTL_MINUTES" envDefault:"15" validate:"min=1"`

	InviteRadiusMeters float64 `env:"INVITE_RADIUS_METERS" envDefault:"120" validate:"gt=0"`
	InviteTTLDays      float64 `env:"INVITE_TTL_DAYS"      envDefault:"2"   validate:"min=0"`

	SweepIntervalSeconds int `env:"SWEEP_INTERVAL_SECONDS" envDefault:"60" validate:"min=1"`

	// Redis only backs the per-IP invite rate limiter; an empty host
	// disables the limiter and the relay runs fully self-contained.
	RedisHost       string `env:"REDIS_HOST" envDefault:""`
	RedisPort       uint16 `env:"REDIS_PORT" envDefault:"6379" validate:"min=1,max=65535"`
	InviteRateLimit int    `env:"INVITE_RATE_LIMIT" envDefault:"5" validate:"min=1"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
