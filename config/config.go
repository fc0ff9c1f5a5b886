// Package config aggregates the configuration of every pipeline stage and
// loads it from a YAML file and BLOCKTREE_ environment variables.
//
// Keys are the lowercased field names of each stage's Config, nested under
// the stage name:
//
//	layout:
//	  marginbandratio: 0.1
//	  columns:
//	    maxcolumns: 3
//	tables:
//	  minrows: 2
//	output:
//	  format: markdown
//
// The same key can be set from the environment with dots replaced by
// underscores, for example BLOCKTREE_TABLES_MINROWS=3.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/blocktree/hierarchy"
	"github.com/tsawler/blocktree/layout"
	"github.com/tsawler/blocktree/lineclass"
	"github.com/tsawler/blocktree/style"
	"github.com/tsawler/blocktree/tables"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "BLOCKTREE"

// Output formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatText     = "text"
)

// Log formats
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// Output controls what the command line tool writes
type Output struct {
	// Format is one of json, markdown, html or text.
	// Default: json
	Format string `yaml:"format" mapstructure:"format"`

	// GroupTables folds each table's rows into a single table block.
	// Default: false
	GroupTables bool `yaml:"group_tables" mapstructure:"group_tables"`
}

// Logging controls the logger handed to the pipeline
type Logging struct {
	// Level is a zerolog level name.
	// Default: warn
	Level string `yaml:"level" mapstructure:"level"`

	// Format is console or json.
	// Default: console
	Format string `yaml:"format" mapstructure:"format"`
}

// Config is the configuration of a whole run
type Config struct {
	Style     style.Config     `yaml:"style" mapstructure:"style"`
	Lines     lineclass.Config `yaml:"lines" mapstructure:"lines"`
	Layout    layout.Config    `yaml:"layout" mapstructure:"layout"`
	Tables    tables.Config    `yaml:"tables" mapstructure:"tables"`
	Hierarchy hierarchy.Config `yaml:"hierarchy" mapstructure:"hierarchy"`
	Output    Output           `yaml:"output" mapstructure:"output"`
	Log       Logging          `yaml:"log" mapstructure:"log"`
}

// Default returns the default configuration of every stage
func Default() Config {
	return Config{
		Style:     style.DefaultConfig(),
		Lines:     lineclass.DefaultConfig(),
		Layout:    layout.DefaultConfig(),
		Tables:    tables.DefaultConfig(),
		Hierarchy: hierarchy.DefaultConfig(),
		Output:    Output{Format: FormatJSON},
		Log:       Logging{Level: "warn", Format: LogConsole},
	}
}

// NewViper returns a viper instance that knows every configuration key,
// with the defaults set and BLOCKTREE_ environment overrides enabled.
// Command line flags can be bound to it before calling LoadViper.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	raw, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	setDefaults(v, "", tree)
	return v, nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Load reads the configuration file at path, if any, over the defaults and
// applies environment overrides. An empty path loads defaults and
// environment only.
func Load(path string) (Config, error) {
	v, err := NewViper()
	if err != nil {
		return Config{}, err
	}
	return LoadViper(v, path)
}

// LoadViper is Load on a prepared viper instance
func LoadViper(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every out of range setting
func (c Config) Validate() error {
	var errs []error
	ratio := func(name string, v float64) {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in (0, 1], got %v", name, v))
		}
	}
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}

	positive("style.sizetolerance", c.Style.SizeTolerance)
	if c.Style.BoldWeight < 100 || c.Style.BoldWeight > 1000 {
		errs = append(errs, fmt.Errorf("style.boldweight must be in [100, 1000], got %d", c.Style.BoldWeight))
	}

	ratio("lines.tablerowscore", c.Lines.TableRowScore)
	ratio("lines.celltablerowscore", c.Lines.CellTableRowScore)
	ratio("lines.titlecaseratio", c.Lines.TitleCaseRatio)
	positive("lines.maxtitlewords", float64(c.Lines.MaxTitleWords))
	positive("lines.minruleglyphs", float64(c.Lines.MinRuleGlyphs))

	ratio("layout.marginbandratio", c.Layout.MarginBandRatio)
	ratio("layout.marginrepeatratio", c.Layout.MarginRepeatRatio)
	ratio("layout.pagenumberdigitratio", c.Layout.PageNumberDigitRatio)
	ratio("layout.letterspacedratio", c.Layout.LetterSpacedRatio)
	positive("layout.marginpositionstep", c.Layout.MarginPositionStep)
	positive("layout.splitgapratio", c.Layout.SplitGapRatio)
	positive("layout.maxjoingapratio", c.Layout.MaxJoinGapRatio)
	positive("layout.aligntolerance", c.Layout.AlignTolerance)
	positive("layout.edgetolerance", c.Layout.EdgeTolerance)
	ratio("layout.columns.dominantshare", c.Layout.Columns.DominantShare)
	ratio("layout.columns.mincolumnshare", c.Layout.Columns.MinColumnShare)
	ratio("layout.columns.mergeoverlap", c.Layout.Columns.MergeOverlap)
	if c.Layout.Columns.MaxColumns < 2 {
		errs = append(errs, fmt.Errorf("layout.columns.maxcolumns must be at least 2, got %d", c.Layout.Columns.MaxColumns))
	}

	positive("tables.lookahead", float64(c.Tables.Lookahead))
	ratio("tables.minalignratio", c.Tables.MinAlignRatio)
	positive("tables.maxfootergapratio", c.Tables.MaxFooterGapRatio)
	positive("tables.maxheadergapratio", c.Tables.MaxHeaderGapRatio)
	if c.Tables.MinRows < 1 {
		errs = append(errs, fmt.Errorf("tables.minrows must be at least 1, got %d", c.Tables.MinRows))
	}
	if c.Tables.MaxFooterBlocks < 0 {
		errs = append(errs, fmt.Errorf("tables.maxfooterblocks must not be negative, got %d", c.Tables.MaxFooterBlocks))
	}

	if c.Hierarchy.OrdinalSlack < 1 {
		errs = append(errs, fmt.Errorf("hierarchy.ordinalslack must be at least 1, got %d", c.Hierarchy.OrdinalSlack))
	}
	positive("hierarchy.sizetolerance", c.Hierarchy.SizeTolerance)

	switch c.Output.Format {
	case FormatJSON, FormatMarkdown, FormatHTML, FormatText:
	default:
		errs = append(errs, fmt.Errorf("output.format must be one of json, markdown, html, text, got %q", c.Output.Format))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != LogConsole && c.Log.Format != LogJSON {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration as YAML
func (c Config) WriteYAML(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Logger builds the logger described by l, writing to w (stderr when nil)
func (l Logging) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}
	if l.Format == LogConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
