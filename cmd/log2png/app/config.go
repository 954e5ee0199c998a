package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/sweeplog/internal/logfile"
)

// StdinPath is the input path that reads the log from standard input.
const StdinPath = logfile.StdinPath

type Config struct {
	Input        string     `yaml:"input"`
	OutputPrefix string     `yaml:"output"`
	Title        string     `yaml:"title"`
	Gridlines    bool       `yaml:"gridlines"`
	MinGridlines int        `yaml:"minGridlines"`
	BannerHeight int        `yaml:"bannerHeight"`
	FooterHeight int        `yaml:"footerHeight"`
	MinPower     *float64   `yaml:"minPower"`
	MaxPower     *float64   `yaml:"maxPower"`
	AutoWindow   bool       `yaml:"autoWindow"`
	Theme        ColorTheme `yaml:"theme"`
	ArchivePath  string     `yaml:"archive"`
	LogID        int64      `yaml:"logID"`
	Verbose      bool       `yaml:"verbose"`
	ConfigFile   string     `yaml:"-"`
}

func NewConfig() *Config {
	return &Config{
		Gridlines:    true,
		MinGridlines: DefaultMinGridlines,
		BannerHeight: DefaultBannerHeight,
		FooterHeight: DefaultFooterHeight,
		Theme:        DefaultColorTheme,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(flag.CommandLine, os.Args[1:])
}

// NewConfigFromArgs parses args with fs. Values from the file given by -c are
// applied first; flags set explicitly on the command line take precedence.
func NewConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var theme string
	var minPower, maxPower float64
	fs.StringVar(&c.ConfigFile, "c", "", "Path to a YAML configuration file")
	fs.StringVar(&c.Input, "i", "", "Path to a log file, a directory of .log files, or - for stdin")
	fs.StringVar(&c.OutputPrefix, "o", "", "Output file name prefix, the image is written to <prefix>.<end time>.png")
	fs.StringVar(&c.Title, "title", "", "Graph title drawn into the banner")
	fs.BoolVar(&c.Gridlines, "grid", c.Gridlines, "Draw frequency gridlines")
	fs.IntVar(&c.MinGridlines, "min-gridlines", c.MinGridlines, "Minimum number of gridlines")
	fs.IntVar(&c.BannerHeight, "banner", c.BannerHeight, "Banner height in pixels")
	fs.IntVar(&c.FooterHeight, "footer", c.FooterHeight, "Footer height in pixels")
	fs.Float64Var(&minPower, "min-power", DefaultMinPower, "Power in dBm mapped to the first color (format nn.n)")
	fs.Float64Var(&maxPower, "max-power", DefaultMaxPower, "Power in dBm mapped to the last color (format nn.n)")
	fs.BoolVar(&c.AutoWindow, "auto-window", false, "Derive the power window from the 5th and 95th percentiles")
	fs.StringVar(&theme, "theme", string(c.Theme), "Color theme. [cubehelix, classic, grayscale, jungle, thermal, marine]")
	fs.StringVar(&c.ArchivePath, "archive", "", "Path to a sqlite archive; parsed logs are stored in it")
	fs.Int64Var(&c.LogID, "log-id", 0, "Render a log stored in the archive instead of reading -i")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.ConfigFile != "" {
		if err := c.loadFile(c.ConfigFile); err != nil {
			return nil, err
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-power":
			c.MinPower = &minPower
		case "max-power":
			c.MaxPower = &maxPower
		case "theme":
			c.Theme = ColorTheme(theme)
		}
	})

	if err := c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config file '%s': %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil {
		return fmt.Errorf("decoding config file '%s': %w", path, err)
	}
	return nil
}

// Validate checks the configuration and normalizes the theme name.
func (c *Config) Validate() error {
	theme, err := ParseColorTheme(string(c.Theme))
	if err != nil {
		return err
	}
	c.Theme = theme

	switch {
	case c.Input == "" && c.LogID == 0:
		return errors.New("input is required")
	case c.LogID < 0:
		return errors.New("log id must be positive")
	case c.LogID > 0 && c.ArchivePath == "":
		return errors.New("archive path is required to render a stored log")
	case c.OutputPrefix == "":
		return errors.New("output prefix is required")
	case c.MinGridlines <= 0:
		return errors.New("minimum gridline count must be positive")
	case c.BannerHeight < 0 || c.FooterHeight < 0:
		return errors.New("banner and footer heights must not be negative")
	}

	if b := c.PowerBounds(); !(b.Min < b.Max) {
		return fmt.Errorf("minimum power %.1f dBm must be below maximum power %.1f dBm", b.Min, b.Max)
	}
	return nil
}

// PowerBounds returns the configured display window.
func (c *Config) PowerBounds() PowerBounds {
	b := DefaultPowerBounds()
	if c.MinPower != nil {
		b.Min = *c.MinPower
	}
	if c.MaxPower != nil {
		b.Max = *c.MaxPower
	}
	b.Mean = (b.Min + b.Max) / 2
	return b
}
