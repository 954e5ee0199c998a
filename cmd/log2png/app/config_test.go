package app

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func parseArgs(args ...string) (*Config, error) {
	fs := flag.NewFlagSet("log2png", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return NewConfigFromArgs(fs, args)
}

func TestNewConfigFromArgs_Defaults(t *testing.T) {
	c, err := parseArgs("-i", "sweep.log", "-o", "out/hf")
	if err != nil {
		t.Fatalf("Failed to parse arguments: %v", err)
	}

	if c.Input != "sweep.log" || c.OutputPrefix != "out/hf" {
		t.Errorf("Unexpected input/output: %q, %q", c.Input, c.OutputPrefix)
	}
	if c.Theme != DefaultColorTheme {
		t.Errorf("Expected theme %s, got %s", DefaultColorTheme, c.Theme)
	}
	if !c.Gridlines || c.MinGridlines != DefaultMinGridlines {
		t.Errorf("Unexpected gridline settings: %v, %d", c.Gridlines, c.MinGridlines)
	}
	if c.BannerHeight != DefaultBannerHeight || c.FooterHeight != DefaultFooterHeight {
		t.Errorf("Unexpected banner/footer heights: %d, %d", c.BannerHeight, c.FooterHeight)
	}
	if c.MinPower != nil || c.MaxPower != nil {
		t.Error("Expected power window not to be set")
	}
	if c.PowerBounds() != DefaultPowerBounds() {
		t.Errorf("Expected default power bounds, got %+v", c.PowerBounds())
	}
}

func TestNewConfigFromArgs_Flags(t *testing.T) {
	c, err := parseArgs(
		"-i", "-",
		"-o", "hf",
		"-title", "HF survey",
		"-grid=false",
		"-banner", "0",
		"-min-power", "-100.5",
		"-theme", "Thermal",
		"-verbose",
	)
	if err != nil {
		t.Fatalf("Failed to parse arguments: %v", err)
	}

	if c.Input != StdinPath {
		t.Errorf("Expected stdin input, got %q", c.Input)
	}
	if c.Title != "HF survey" || c.Gridlines || c.BannerHeight != 0 || !c.Verbose {
		t.Errorf("Unexpected config: %+v", c)
	}
	if c.Theme != ThermalTheme {
		t.Errorf("Expected theme %s, got %s", ThermalTheme, c.Theme)
	}
	if c.MinPower == nil || *c.MinPower != -100.5 {
		t.Errorf("Expected minimum power -100.5, got %v", c.MinPower)
	}
	if c.MaxPower != nil {
		t.Errorf("Expected maximum power not to be set, got %v", *c.MaxPower)
	}
	if b := c.PowerBounds(); b.Min != -100.5 || b.Max != DefaultMaxPower {
		t.Errorf("Unexpected power bounds %+v", b)
	}
}

func TestNewConfigFromArgs_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log2png.yaml")
	content := `
input: logs/
output: from-file
title: From file
theme: marine
minPower: -90
bannerHeight: 10
gridlines: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	c, err := parseArgs("-c", path, "-o", "from-flag", "-theme", "grayscale")
	if err != nil {
		t.Fatalf("Failed to parse arguments: %v", err)
	}

	if c.Input != "logs/" || c.Title != "From file" || c.BannerHeight != 10 || c.Gridlines {
		t.Errorf("Values from file not applied: %+v", c)
	}
	if c.OutputPrefix != "from-flag" {
		t.Errorf("Expected flag to override output, got %q", c.OutputPrefix)
	}
	if c.Theme != GrayscaleTheme {
		t.Errorf("Expected flag to override theme, got %s", c.Theme)
	}
	if c.MinPower == nil || *c.MinPower != -90 {
		t.Errorf("Expected minimum power -90 from file, got %v", c.MinPower)
	}
}

func TestNewConfigFromArgs_Invalid(t *testing.T) {
	unknownField := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(unknownField, []byte("colour: red\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	testCases := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-o", "out"}},
		{"no output", []string{"-i", "in.log"}},
		{"inverted window", []string{"-i", "in.log", "-o", "out", "-min-power", "-20", "-max-power", "-60"}},
		{"min above default max", []string{"-i", "in.log", "-o", "out", "-min-power", "-10"}},
		{"unknown theme", []string{"-i", "in.log", "-o", "out", "-theme", "rainbow"}},
		{"zero gridlines", []string{"-i", "in.log", "-o", "out", "-min-gridlines", "0"}},
		{"negative footer", []string{"-i", "in.log", "-o", "out", "-footer", "-1"}},
		{"log id without archive", []string{"-log-id", "1", "-o", "out"}},
		{"missing config file", []string{"-c", "does-not-exist.yaml", "-i", "in.log", "-o", "out"}},
		{"unknown config field", []string{"-c", unknownField, "-i", "in.log", "-o", "out"}},
		{"unknown flag", []string{"-i", "in.log", "-o", "out", "-db", "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseArgs(tc.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNewConfigFromArgs_Archive(t *testing.T) {
	c, err := parseArgs("-archive", "sweeps.db", "-log-id", "3", "-o", "out")
	if err != nil {
		t.Fatalf("Failed to parse arguments: %v", err)
	}
	if c.ArchivePath != "sweeps.db" || c.LogID != 3 {
		t.Errorf("Unexpected archive settings: %q, %d", c.ArchivePath, c.LogID)
	}
}
