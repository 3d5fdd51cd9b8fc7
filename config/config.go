package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration passed into every entry point
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Detect  DetectConfig  `yaml:"detect"`
	Tracker TrackerConfig `yaml:"tracker"`
	Output  OutputConfig  `yaml:"output"`
	Notify  NotifyConfig  `yaml:"notify"`
	// MetricsFile is a Prometheus textfile collector path written at the end
	// of a run, empty disables it
	MetricsFile string `yaml:"metrics_file"`
}

// ModelConfig contains the detection model settings
type ModelConfig struct {
	// Path is the RKNN compiled YOLO model file
	Path string `yaml:"path"`
	// Labels is a text file with one class name per line.  When empty the
	// ground support equipment classes are used
	Labels string `yaml:"labels"`
	// Platform is the Rockchip platform used to pin the process to its fast
	// CPU cores, eg: rk3588.  Empty skips setting CPU affinity
	Platform string `yaml:"platform"`
}

// DetectConfig contains detection post processing settings
type DetectConfig struct {
	// Confidence is the minimum detection score kept
	Confidence float64 `yaml:"confidence"`
	// NMSThreshold is the maximum IoU allowed between two kept boxes
	NMSThreshold float64 `yaml:"nms_threshold"`
	// MaxObjects is the maximum number of detections per frame
	MaxObjects int `yaml:"max_objects"`
	// Classes is a comma delimited list of class names to keep, empty keeps
	// all classes
	Classes string `yaml:"classes"`
}

// TrackerConfig contains the ByteTrack settings
type TrackerConfig struct {
	TrackThresh float64 `yaml:"track_thresh"`
	HighThresh  float64 `yaml:"high_thresh"`
	MatchThresh float64 `yaml:"match_thresh"`
	// TrackBuffer is the number of frames (at 30 FPS) a lost track is kept
	TrackBuffer int `yaml:"track_buffer"`
}

// OutputConfig controls where annotation files are written
type OutputConfig struct {
	// Dir places every annotation file in one directory.  When empty the
	// annotation file is written next to its video
	Dir string `yaml:"dir"`
	// Suffix is appended to the video stem to name the annotation file
	Suffix string `yaml:"suffix"`
	// Force reprocesses videos that already have an annotation file
	Force bool `yaml:"force"`
}

// NotifyConfig contains the Kafka completion event settings.  Events are
// disabled when Brokers is empty
type NotifyConfig struct {
	Brokers          string `yaml:"brokers"`
	Topic            string `yaml:"topic"`
	SecurityProtocol string `yaml:"security_protocol"`
	SASLMechanism    string `yaml:"sasl_mechanism"`
	SASLUsername     string `yaml:"sasl_username"`
	SASLPassword     string `yaml:"sasl_password"`
	// TimeoutMS bounds the wait for a delivery report
	TimeoutMS int `yaml:"timeout_ms"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Path: "weights/gse_detection_v11.rknn",
		},
		Detect: DetectConfig{
			Confidence:   0.1,
			NMSThreshold: 0.45,
			MaxObjects:   64,
		},
		Tracker: TrackerConfig{
			TrackThresh: 0.45,
			HighThresh:  0.6,
			MatchThresh: 0.8,
			TrackBuffer: 30,
		},
		Output: OutputConfig{
			Suffix: "_gt.txt",
		},
		Notify: NotifyConfig{
			Topic:            "draftgt-annotations",
			SecurityProtocol: "PLAINTEXT",
			TimeoutMS:        10000,
		},
	}
}

// Load builds the configuration from the defaults, the optional YAML file at
// path, an optional .env file and the environment, in that order of
// precedence.  The result is not validated, call Validate once command line
// overrides have been applied.
func Load(path string) (*Config, error) {

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)

		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// a missing .env file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides settings from environment variables
func (c *Config) applyEnv() error {

	strs := []struct {
		key string
		dst *string
	}{
		{"DRAFTGT_MODEL_PATH", &c.Model.Path},
		{"DRAFTGT_LABELS", &c.Model.Labels},
		{"DRAFTGT_PLATFORM", &c.Model.Platform},
		{"DRAFTGT_CLASSES", &c.Detect.Classes},
		{"DRAFTGT_OUTPUT_DIR", &c.Output.Dir},
		{"DRAFTGT_OUTPUT_SUFFIX", &c.Output.Suffix},
		{"DRAFTGT_METRICS_FILE", &c.MetricsFile},
		{"KAFKA_BOOTSTRAP_SERVERS", &c.Notify.Brokers},
		{"KAFKA_TOPIC", &c.Notify.Topic},
		{"KAFKA_SECURITY_PROTOCOL", &c.Notify.SecurityProtocol},
		{"KAFKA_SASL_MECHANISM", &c.Notify.SASLMechanism},
		{"KAFKA_SASL_USERNAME", &c.Notify.SASLUsername},
		{"KAFKA_SASL_PASSWORD", &c.Notify.SASLPassword},
	}

	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"DRAFTGT_CONFIDENCE", &c.Detect.Confidence},
		{"DRAFTGT_NMS_THRESHOLD", &c.Detect.NMSThreshold},
	}

	for _, f := range floats {
		v := os.Getenv(f.key)

		if v == "" {
			continue
		}

		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		if err != nil {
			return &ValidationError{Field: f.key, Reason: fmt.Sprintf("not a number: %q", v)}
		}

		*f.dst = parsed
	}

	if v := os.Getenv("DRAFTGT_FORCE"); v != "" {
		force, err := strconv.ParseBool(v)

		if err != nil {
			return &ValidationError{Field: "DRAFTGT_FORCE", Reason: fmt.Sprintf("not a boolean: %q", v)}
		}

		c.Output.Force = force
	}

	return nil
}
