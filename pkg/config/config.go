package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config describes one rank's process wiring: which mesh dimension it
// couples in, its intra-participant position, and how to reach its M2N
// peer over TCP.
type Config struct {
	MachineID    string  `yaml:"machine_id"`
	Port         int     `yaml:"port"`
	Rank         int     `yaml:"rank"`
	IsMaster     bool    `yaml:"is_master"`
	PeerAddress  string  `yaml:"peer_address,omitempty"`
	Dimensions   int     `yaml:"dimensions"`
	SafetyFactor float64 `yaml:"safety_factor"`
	Network      Network `yaml:"network"`
}

// Network carries the intra-participant rank roster; only the master
// entry needs a PeerAddress, since only the master dials out to the
// remote participant's master.
type Network struct {
	Peers []Peer `yaml:"peers"`
}

// Peer is one rank of this participant's rank group.
type Peer struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if cfg.MachineID == "" {
		return nil, fmt.Errorf("machine_id is required")
	}
	if cfg.Dimensions != 2 && cfg.Dimensions != 3 {
		return nil, fmt.Errorf("dimensions must be 2 or 3, got %d", cfg.Dimensions)
	}
	if cfg.SafetyFactor < 0 {
		return nil, fmt.Errorf("safety_factor must be >= 0, got %g", cfg.SafetyFactor)
	}
	if cfg.IsMaster && cfg.PeerAddress == "" {
		return nil, fmt.Errorf("peer_address is required for the master rank")
	}
	if cfg.IsMaster && cfg.Rank != 0 {
		return nil, fmt.Errorf("the master rank must have rank 0, got %d", cfg.Rank)
	}

	return &cfg, nil
}

func LoadConfigFromEnv() *Config {
	return &Config{
		MachineID:    getEnv("MACHINE_ID", ""),
		Port:         getEnvInt("PORT", 8080),
		Rank:         getEnvInt("RANK", 0),
		IsMaster:     getEnvBool("IS_MASTER", true),
		PeerAddress:  getEnv("PEER_ADDRESS", ""),
		Dimensions:   getEnvInt("DIMENSIONS", 3),
		SafetyFactor: getEnvFloat("SAFETY_FACTOR", 0.1),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
