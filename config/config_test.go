package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {

	if err := Default().Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {

	file := filepath.Join(t.TempDir(), "draftgt.yaml")

	yml := `model:
  path: /models/yaml.rknn
  platform: rk3588
detect:
  confidence: 0.3
  classes: GSE
tracker:
  track_buffer: 60
output:
  dir: /data/result
  suffix: .txt
`

	if err := os.WriteFile(file, []byte(yml), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("DRAFTGT_CONFIDENCE", "0.25")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")

	cfg, err := Load(file)

	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Model.Path != "/models/yaml.rknn" {
		t.Errorf("Expected model path from YAML, got %s", cfg.Model.Path)
	}

	// environment overrides the file
	if cfg.Detect.Confidence != 0.25 {
		t.Errorf("Expected confidence 0.25 from env, got %v", cfg.Detect.Confidence)
	}

	// unset values keep their defaults
	if cfg.Detect.NMSThreshold != 0.45 || cfg.Tracker.MatchThresh != 0.8 {
		t.Errorf("Expected defaults to be kept, got nms=%v match=%v",
			cfg.Detect.NMSThreshold, cfg.Tracker.MatchThresh)
	}

	if cfg.Tracker.TrackBuffer != 60 || cfg.Output.Suffix != ".txt" || cfg.Output.Dir != "/data/result" {
		t.Errorf("Unexpected tracker/output config %+v %+v", cfg.Tracker, cfg.Output)
	}

	if cfg.Notify.Brokers != "localhost:9092" || cfg.Notify.Topic != "draftgt-annotations" {
		t.Errorf("Unexpected notify config %+v", cfg.Notify)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected loaded config to validate, got %v", err)
	}
}

func TestLoadInvalidEnv(t *testing.T) {

	t.Setenv("DRAFTGT_CONFIDENCE", "high")

	_, err := Load("")

	var vErr *ValidationError

	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	if vErr.Field != "DRAFTGT_CONFIDENCE" {
		t.Errorf("Expected DRAFTGT_CONFIDENCE field, got %s", vErr.Field)
	}
}

func TestLoadMissingFile(t *testing.T) {

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {

	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"confidence above range", func(c *Config) { c.Detect.Confidence = 1.5 }, "detect.confidence"},
		{"confidence below range", func(c *Config) { c.Detect.Confidence = -0.1 }, "detect.confidence"},
		{"confidence not a number", func(c *Config) { c.Detect.Confidence = math.NaN() }, "detect.confidence"},
		{"match threshold not a number", func(c *Config) { c.Tracker.MatchThresh = math.NaN() }, "tracker.match_thresh"},
		{"empty model", func(c *Config) { c.Model.Path = "" }, "model.path"},
		{"zero max objects", func(c *Config) { c.Detect.MaxObjects = 0 }, "detect.max_objects"},
		{"suffix with separator", func(c *Config) { c.Output.Suffix = "x/_gt.txt" }, "output.suffix"},
		{"brokers without topic", func(c *Config) {
			c.Notify.Brokers = "localhost:9092"
			c.Notify.Topic = ""
		}, "notify.topic"},
	}

	for _, tc := range tests {

		cfg := Default()
		tc.modify(cfg)

		err := cfg.Validate()

		var vErr *ValidationError

		if !errors.As(err, &vErr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}

		if vErr.Field != tc.field {
			t.Errorf("%s: expected field %s, got %s", tc.name, tc.field, vErr.Field)
		}
	}

	// boundaries are inclusive
	cfg := Default()
	cfg.Detect.Confidence = 1.0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected confidence 1.0 to be valid, got %v", err)
	}
}
