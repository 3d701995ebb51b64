package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage      string        `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis        Redis         `yaml:"redis"`
	JWTSecretKey string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY"`
	JWTTTL       time.Duration `yaml:"jwt-ttl" env:"JWT_TTL" env-default:"24h"`
	RPCTimeout   time.Duration `yaml:"rpc-timeout" env:"RPC_TIMEOUT" env-default:"5s"`
	Retry        Retry         `yaml:"retry"`
	Matchmaking  Matchmaking   `yaml:"matchmaking"`
	Leaderboard  Leaderboard   `yaml:"leaderboard"`
}

type Redis struct {
	Host         string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DialTimeout  time.Duration `yaml:"dial-timeout" env-default:"2s"`
	ReadTimeout  time.Duration `yaml:"read-timeout" env-default:"1s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env-default:"1s"`
}

// Retry bounds how often conflicting writes and unavailable storage are retried.
type Retry struct {
	MaxRetries    uint64        `yaml:"max-retries" env-default:"5"`
	RetryInterval time.Duration `yaml:"retry-interval" env-default:"10ms"`
}

type Matchmaking struct {
	ListLimit  int           `yaml:"list-limit" env-default:"50"`
	WaitingTTL time.Duration `yaml:"waiting-ttl" env-default:"2m"`
}

type Leaderboard struct {
	DefaultLimit int `yaml:"default-limit" env-default:"10"`
	MaxLimit     int `yaml:"max-limit" env-default:"100"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
