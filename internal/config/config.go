package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Bank struct {
		ID  string `yaml:"id"`
		TTL string `yaml:"ttl"`
	} `yaml:"bank"`
	Exam struct {
		// PerQuestionSeconds overrides the 90 second default per question.
		PerQuestionSeconds int    `yaml:"per_question_seconds"`
		EmitTimeout        string `yaml:"emit_timeout"`
		RetainSubmitted    string `yaml:"retain_submitted"`
	} `yaml:"exam"`
	Auth struct {
		AdminHash    string `yaml:"admin_hash"`
		PracticeHash string `yaml:"practice_hash"`
	} `yaml:"auth"`
}

// Load reads YAML config from path and applies defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Secrets never live in the YAML file checked into a repo; env wins when set.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Bank.ID == "" {
		c.Bank.ID = "default"
	}
	if c.Exam.PerQuestionSeconds <= 0 {
		c.Exam.PerQuestionSeconds = 90
	}
	if v := os.Getenv("EXAM_ADMIN_HASH"); v != "" {
		c.Auth.AdminHash = v
	}
	if v := os.Getenv("EXAM_PRACTICE_HASH"); v != "" {
		c.Auth.PracticeHash = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
