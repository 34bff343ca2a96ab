// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"github.com/go-playground/validator/v10"
)

// configValidate is the validator instance for config files.
// Initialized in init() with custom validators.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("ascending", validateAscending)
}

// validateAscending validates that an int slice is strictly ascending.
// A duplicate or out-of-order entry in the verify list usually means a
// typo in the config file; reject it before it costs a run.
func validateAscending(fl validator.FieldLevel) bool {
	values, ok := fl.Field().Interface().([]int)
	if !ok {
		return false
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}

// QuadcountConfig is the root of the user configuration file at
// ~/.quadcount/quadcount.yaml.
type QuadcountConfig struct {
	// Verify holds defaults for the verify command
	Verify VerifyConfig `yaml:"verify"`

	// Logging controls log level and destinations
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry selects trace and metric exporters
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// VerifyConfig holds verification run defaults.
type VerifyConfig struct {
	// Values is the upper-bound list verified when --values is not
	// given. Must be strictly ascending; 65536 mirrors the engine cap.
	// An absent list falls back to the built-in defaults.
	Values []int `yaml:"values" validate:"omitempty,min=1,ascending,dive,gt=0,lte=65536"`

	// Parallelism is the number of values verified concurrently.
	// 0 and 1 both mean sequential.
	Parallelism int `yaml:"parallelism" validate:"gte=0,lte=256"`
}

// LoggingConfig holds log destinations and level.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables JSON file logging when set. Supports a leading ~.
	Dir string `yaml:"dir"`

	// JSON switches stderr logs from text to JSON.
	JSON bool `yaml:"json"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	// TraceExporter: none, stdout, or otlp.
	TraceExporter string `yaml:"trace_exporter" validate:"omitempty,oneof=none stdout otlp"`

	// MetricExporter: none, stdout, or prometheus.
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=none stdout prometheus"`

	// OTLPEndpoint is the OTLP receiver for traces.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// PrometheusPort is the /metrics scrape port.
	PrometheusPort int `yaml:"prometheus_port" validate:"gte=0,lte=65535"`
}

// Validate checks the configuration against its declared constraints.
//
// Example:
//
//	if err := cfg.Validate(); err != nil {
//	    return fmt.Errorf("invalid config: %w", err)
//	}
func (c *QuadcountConfig) Validate() error {
	return configValidate.Struct(c)
}

// DefaultConfig returns the built-in configuration, used when no config
// file exists and one cannot be created. The embedded default_config.yaml
// must stay in sync with it; a test enforces that.
func DefaultConfig() QuadcountConfig {
	return QuadcountConfig{
		Verify: VerifyConfig{
			Values:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 101, 303, 384, 390, 505, 676, 888, 1024},
			Parallelism: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
			PrometheusPort: 9090,
		},
	}
}
