package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Authority struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"authority"`
	Nats struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Session struct {
		SelfID     string `yaml:"self_id"`
		OpponentID string `yaml:"opponent_id"`
		RoomID     string `yaml:"room_id"`
	} `yaml:"session"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Environment variables win over the file.
	config.Authority.BaseURL = getEnv("AUTHORITY_URL", config.Authority.BaseURL)
	config.Authority.APIKey = getEnv("AUTHORITY_API_KEY", config.Authority.APIKey)
	config.Nats.URL = getEnv("NATS_URL", config.Nats.URL)
	config.Session.SelfID = getEnv("MATCH_SELF_ID", config.Session.SelfID)
	config.Session.OpponentID = getEnv("MATCH_OPPONENT_ID", config.Session.OpponentID)
	config.Session.RoomID = getEnv("MATCH_ROOM_ID", config.Session.RoomID)

	return &config, nil
}
