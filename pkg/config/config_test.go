package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigValid(t *testing.T) {
	path := writeConfig(t, `
machine_id: rank-0
port: 9001
rank: 0
is_master: true
peer_address: "10.0.0.2:9001"
dimensions: 3
safety_factor: 0.1
network:
  peers:
    - id: rank-1
      address: "10.0.0.1:9002"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MachineID != "rank-0" || cfg.Dimensions != 3 || !cfg.IsMaster {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Network.Peers) != 1 || cfg.Network.Peers[0].ID != "rank-1" {
		t.Errorf("unexpected peers: %+v", cfg.Network.Peers)
	}
}

func TestLoadConfigRejectsMissingMachineID(t *testing.T) {
	path := writeConfig(t, "dimensions: 3\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a missing machine_id")
	}
}

func TestLoadConfigRejectsBadDimensions(t *testing.T) {
	cases := []string{"1", "4"}
	for _, dims := range cases {
		path := writeConfig(t, "machine_id: x\ndimensions: "+dims+"\n")
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("dimensions=%s: expected an error", dims)
		}
	}
}

func TestLoadConfigRejectsNegativeSafetyFactor(t *testing.T) {
	path := writeConfig(t, "machine_id: x\ndimensions: 2\nsafety_factor: -0.5\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a negative safety_factor")
	}
}

func TestLoadConfigRejectsMasterWithoutPeerAddress(t *testing.T) {
	path := writeConfig(t, "machine_id: x\ndimensions: 2\nis_master: true\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a master rank with no peer_address")
	}
}

func TestLoadConfigRejectsNonZeroMasterRank(t *testing.T) {
	path := writeConfig(t, "machine_id: x\ndimensions: 2\nis_master: true\npeer_address: \"x:1\"\nrank: 1\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a master rank whose rank is not 0")
	}
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg := LoadConfigFromEnv()
	if cfg.Dimensions != 3 {
		t.Errorf("Dimensions = %d, want default 3", cfg.Dimensions)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Port)
	}
}
