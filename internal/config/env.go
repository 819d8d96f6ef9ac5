package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are environment variables that take precedence over config.yaml.
type EnvOverrides struct {
	ZipsPath    string `env:"SLCSP_ZIPS_PATH"`
	PlansPath   string `env:"SLCSP_PLANS_PATH"`
	TargetsPath string `env:"SLCSP_TARGETS_PATH"`
	OutputPath  string `env:"SLCSP_OUTPUT_PATH"`
	MetalLevel  string `env:"SLCSP_METAL_LEVEL"`
	MetalMatch  string `env:"SLCSP_METAL_MATCH"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (pc *ProjectConfig) applyEnv() error {
	var ovr EnvOverrides
	if err := ParseEnv(&ovr); err != nil {
		return err
	}
	override(&pc.Inputs.Zips, ovr.ZipsPath)
	override(&pc.Inputs.Plans, ovr.PlansPath)
	override(&pc.Inputs.Targets, ovr.TargetsPath)
	override(&pc.Output.Path, ovr.OutputPath)
	override(&pc.Metal.Level, ovr.MetalLevel)
	override(&pc.Metal.Match, ovr.MetalMatch)
	return nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
