package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/greenshop/core/factory"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `search:
  heuristic:
    type: "first-improvement"
    conf:
      seed: 7
  runs: 3
  time_budget_seconds: 2.5
  max_iterations: 100
  workers: 4
metrics:
  prometheus_port: 9100
  sinks:
    - type: "nop"
runlog:
  backend: "sqlite"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  qos: 1
log:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"heuristic", cfg.Search.Heuristic.Type, "first-improvement"},
		{"runs", cfg.Search.Runs, 3},
		{"time_budget_seconds", cfg.Search.TimeBudgetSeconds, 2.5},
		{"max_iterations", cfg.Search.MaxIterations, 100},
		{"workers", cfg.Search.Workers, 4},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, 9100},
		{"runlog.backend", cfg.RunLog.Backend, "sqlite"},
		{"runlog.path", cfg.RunLog.Path, "runs/runs.db"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"topic", cfg.MQTT.Topic, "greenshop/search"},
		{"control_topic", cfg.MQTT.ControlTopic, "greenshop/search/cancel"},
		{"log.level", cfg.Log.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"search": {"heuristic": {"type": "greedy"}}, "log": {"level": "warn"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Search.Heuristic.Type != "greedy" || cfg.Search.Runs != 1 || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MQTT.Enabled() {
		t.Fatalf("mqtt should stay disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", "search:\n  runs: 2\n")
	t.Setenv("GS_SEARCH__RUNS", "5")
	t.Setenv("GS_SEARCH__HEURISTIC__TYPE", "greedy")
	t.Setenv("GS_MQTT__CLIENT_ID", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Search.Runs != 5 {
		t.Fatalf("expected runs 5 from env, got %d", cfg.Search.Runs)
	}
	if cfg.Search.Heuristic.Type != "greedy" {
		t.Fatalf("expected greedy from env, got %s", cfg.Search.Heuristic.Type)
	}
	if cfg.MQTT.ClientID != "from-env" {
		t.Fatalf("expected client id from env, got %s", cfg.MQTT.ClientID)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("GS_LOG__LEVEL", "error")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Log.Level != "error" || cfg.Search.Heuristic.Type != "best-of" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"format":    writeConfig(t, "config.toml", "a = 1"),
		"missing":   filepath.Join(t.TempDir(), "none.yaml"),
		"runs":      writeConfig(t, "runs.yaml", "search:\n  runs: -1\n"),
		"backend":   writeConfig(t, "backend.yaml", "runlog:\n  backend: csv\n"),
		"log level": writeConfig(t, "level.yaml", "log:\n  level: loud\n"),
		"qos":       writeConfig(t, "qos.yaml", "mqtt:\n  broker: tcp://b:1883\n  qos: 3\n"),
		"port":      writeConfig(t, "port.yaml", "metrics:\n  prometheus_port: 70000\n"),
	}
	for name, path := range cases {
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Search.Workers != 1 || cfg.Log.Level != "info" || cfg.RunLog.Backend != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestModuleConf(t *testing.T) {
	c := SearchConfig{
		Heuristic:     factory.ModuleConfig{Type: "best-of", Conf: map[string]any{"workers": 8}},
		MaxIterations: 10,
		Workers:       2,
		Seed:          3,
	}
	mc := c.ModuleConf()
	if mc.Type != "best-of" {
		t.Fatalf("type: %s", mc.Type)
	}
	if mc.Conf["workers"] != 8 || mc.Conf["max_iterations"] != 10 || mc.Conf["seed"] != int64(3) {
		t.Fatalf("unexpected conf: %v", mc.Conf)
	}
	if _, ok := c.Heuristic.Conf["seed"]; ok {
		t.Fatalf("ModuleConf must not mutate the source conf")
	}
}
