package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/cascade"
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/rectify"
	"github.com/docshot/docshot/internal/scene"
)

// Config represents the complete configuration for the docshot application.
// It covers all commands (detect, ratio, scan, pdf, serve) and loads from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Detection pipeline configuration
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`

	// Aspect-ratio estimation configuration
	Aspect AspectConfig `mapstructure:"aspect" yaml:"aspect" json:"aspect"`

	// Rectification output configuration
	Rectify RectifyConfig `mapstructure:"rectify" yaml:"rectify" json:"rectify"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// DetectionConfig contains document detection settings.
type DetectionConfig struct {
	WorkingWidth int     `mapstructure:"working_width" yaml:"working_width" json:"working_width"`
	BudgetMs     int     `mapstructure:"budget_ms" yaml:"budget_ms" json:"budget_ms"`
	ShortCircuit float64 `mapstructure:"short_circuit" yaml:"short_circuit" json:"short_circuit"`
	MinAccept    float64 `mapstructure:"min_accept" yaml:"min_accept" json:"min_accept"`
	SceneTTL     int     `mapstructure:"scene_ttl" yaml:"scene_ttl" json:"scene_ttl"`
	Kernel       string  `mapstructure:"kernel" yaml:"kernel" json:"kernel"`
}

// AspectConfig contains aspect-ratio estimation settings.
type AspectConfig struct {
	SnapTolerance float64          `mapstructure:"snap_tolerance" yaml:"snap_tolerance" json:"snap_tolerance"`
	MinFrames     int              `mapstructure:"min_frames" yaml:"min_frames" json:"min_frames"`
	Intrinsics    IntrinsicsConfig `mapstructure:"intrinsics" yaml:"intrinsics" json:"intrinsics"`
}

// IntrinsicsConfig carries optional camera intrinsics in pixel units.
// Zero focal lengths mean an uncalibrated camera.
type IntrinsicsConfig struct {
	Fx float64 `mapstructure:"fx" yaml:"fx" json:"fx"`
	Fy float64 `mapstructure:"fy" yaml:"fy" json:"fy"`
	Cx float64 `mapstructure:"cx" yaml:"cx" json:"cx"`
	Cy float64 `mapstructure:"cy" yaml:"cy" json:"cy"`
}

// RectifyConfig contains rectification output settings.
type RectifyConfig struct {
	OutputLong int     `mapstructure:"output_long" yaml:"output_long" json:"output_long"`
	MaxScale   float64 `mapstructure:"max_scale" yaml:"max_scale" json:"max_scale"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool   `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	ed := edges.DefaultConfig()
	ca := cascade.DefaultConfig()
	as := aspect.DefaultConfig()
	re := rectify.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Detection: DetectionConfig{
			WorkingWidth: ed.WorkingWidth,
			BudgetMs:     int(ca.Budget / time.Millisecond),
			ShortCircuit: ca.ShortCircuit,
			MinAccept:    ca.MinAccept,
			SceneTTL:     scene.DefaultCacheTTL,
			Kernel:       "auto",
		},
		Aspect: AspectConfig{
			SnapTolerance: as.SnapTol,
			MinFrames:     as.MinFrames,
		},
		Rectify: RectifyConfig{
			OutputLong: re.OutputLong,
			MaxScale:   re.MaxScale,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			OverlayEnabled:  true,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	validKernels := []string{"", "auto", "reference", "accelerated"}
	if !slices.Contains(validKernels, c.Detection.Kernel) {
		return fmt.Errorf("invalid kernel: %s (must be auto, reference or accelerated)",
			c.Detection.Kernel)
	}

	if c.Detection.WorkingWidth <= 0 {
		return fmt.Errorf("invalid working width: %d (must be positive)", c.Detection.WorkingWidth)
	}
	if c.Detection.BudgetMs < 0 {
		return fmt.Errorf("invalid detection budget: %d ms (must not be negative)", c.Detection.BudgetMs)
	}
	if err := validateThreshold(c.Detection.ShortCircuit, "detection.short_circuit"); err != nil {
		return err
	}
	if err := validateThreshold(c.Detection.MinAccept, "detection.min_accept"); err != nil {
		return err
	}
	if err := validateThreshold(c.Aspect.SnapTolerance, "aspect.snap_tolerance"); err != nil {
		return err
	}

	in := c.Aspect.Intrinsics
	if in.Fx < 0 || in.Fy < 0 {
		return fmt.Errorf("invalid intrinsics: fx=%g fy=%g (focal lengths must not be negative)", in.Fx, in.Fy)
	}
	if (in.Fx > 0) != (in.Fy > 0) {
		return fmt.Errorf("invalid intrinsics: fx=%g fy=%g (set both focal lengths or neither)", in.Fx, in.Fy)
	}

	if c.Rectify.OutputLong < 32 {
		return fmt.Errorf("invalid rectify output size: %d (must be at least 32)", c.Rectify.OutputLong)
	}
	if c.Rectify.MaxScale < 0 {
		return fmt.Errorf("invalid rectify max scale: %g (must not be negative)", c.Rectify.MaxScale)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToAnalyzerConfig converts the config to the analyzer configuration,
// starting from component defaults and overriding the exposed knobs.
func (c *Config) ToAnalyzerConfig() pipeline.Config {
	p := pipeline.DefaultConfig()

	p.Edges.WorkingWidth = c.Detection.WorkingWidth
	p.Edges.Kernel = kernelMode(c.Detection.Kernel)
	p.Cascade.Budget = time.Duration(c.Detection.BudgetMs) * time.Millisecond
	p.Cascade.ShortCircuit = c.Detection.ShortCircuit
	p.Cascade.MinAccept = c.Detection.MinAccept
	p.SceneTTL = c.Detection.SceneTTL

	p.Aspect.SnapTol = c.Aspect.SnapTolerance
	if c.Aspect.MinFrames > 0 {
		p.Aspect.MinFrames = c.Aspect.MinFrames
	}
	if in := c.Aspect.Intrinsics; in.Fx > 0 && in.Fy > 0 {
		p.Intrinsics = &aspect.Intrinsics{Fx: in.Fx, Fy: in.Fy, Cx: in.Cx, Cy: in.Cy}
	}

	p.Rectify.OutputLong = c.Rectify.OutputLong
	p.Rectify.MaxScale = c.Rectify.MaxScale
	p.Workers = c.Batch.Workers

	return p
}

// kernelMode maps the config string to the edge kernel selector.
func kernelMode(name string) edges.KernelMode {
	switch name {
	case "reference":
		return edges.KernelReference
	case "accelerated":
		return edges.KernelAccelerated
	default:
		return edges.KernelAuto
	}
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
