package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"knucklebones.db"`
	SetupKey          string `yaml:"setup-key" env:"SETUP_KEY"`
	Board             Board  `yaml:"board"`
	Rules             Rules  `yaml:"rules"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Board struct {
	Width  int `yaml:"width" env-default:"3"`
	Height int `yaml:"height" env-default:"3"`
}

type Rules struct {
	// Displacement is "all" or "one": how many matching dice a placement knocks out.
	Displacement string `yaml:"displacement" env-default:"all"`
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
