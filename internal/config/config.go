package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"roicli/internal/crossval"
	apperrors "roicli/internal/errors"
	"roicli/internal/validation"
)

// EnvPrefix namespaces every environment variable, e.g. ROI_LOGGING_LEVEL.
const EnvPrefix = "ROI"

// Config represents the complete application configuration
type Config struct {
	Logging         LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths           PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Transform       TransformConfig `yaml:"transform" envconfig:"TRANSFORM"`
	Selection       SelectionConfig `yaml:"selection" envconfig:"SELECTION"`
	CrossValidation crossval.Config `yaml:"cross_validation" envconfig:"CV"`
	Telemetry       TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console stdout stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file,required_if=Output both"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	// Extension selects the TAF files picked up from InputDir.
	Extension string `yaml:"extension" envconfig:"EXTENSION" validate:"oneof=.csv .xlsx"`
	// Sheet is read from XLSX inputs; empty means the first sheet.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// TransformConfig drives the TAF to TRF pipeline.
type TransformConfig struct {
	IDLevel string `yaml:"id_level" envconfig:"ID_LEVEL" validate:"required"`
	// Shifts is a comma separated label=steps list, e.g. "m2=-1,m1=0,p1=1".
	Shifts         string `yaml:"shifts" envconfig:"SHIFTS" validate:"required"`
	NoonCorrection bool   `yaml:"noon_correction" envconfig:"NOON_CORRECTION"`
	RelativeTime   bool   `yaml:"relative_time" envconfig:"RELATIVE_TIME"`
	DayOfYear      bool   `yaml:"day_of_year" envconfig:"DAY_OF_YEAR"`
	// DayOfYearOneBased starts the cycle at day one instead of day zero.
	DayOfYearOneBased   bool     `yaml:"day_of_year_one_based" envconfig:"DAY_OF_YEAR_ONE_BASED"`
	PassthroughFeatures []string `yaml:"passthrough_features" envconfig:"PASSTHROUGH_FEATURES"`
	PassthroughObjects  []string `yaml:"passthrough_objects" envconfig:"PASSTHROUGH_OBJECTS"`
}

// SelectionConfig controls correlation pruning.
type SelectionConfig struct {
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" validate:"gte=-1,lte=1"`
	Absolute  bool    `yaml:"absolute" envconfig:"ABSOLUTE"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	Tracing       bool    `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	// MetricsFile receives the prometheus text exposition after a run.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/roicli.log",
		},
		Paths: PathsConfig{
			InputDir:  ".",
			OutputDir: "output",
			Extension: ".csv",
		},
		Transform: TransformConfig{
			IDLevel:        "original_id",
			Shifts:         "m2=-1,m1=0,p1=1",
			NoonCorrection: true,
		},
		Selection: SelectionConfig{
			Threshold: 0.95,
			Absolute:  true,
		},
		CrossValidation: crossval.DefaultConfig(),
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then ROI_* environment variables, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Unset variables leave file values untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", filePath), err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to parse config file %s", filePath), err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.Struct(c)
}
