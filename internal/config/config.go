package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nconklindev/rentport/internal/classify"
	"github.com/nconklindev/rentport/internal/match"
	"github.com/nconklindev/rentport/internal/normalize"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// ErrInvalid wraps every configuration problem; main exits with code 2 on it.
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultOutputDir = "."
	DefaultEnvFile   = ".env"
)

type Config struct {
	PropertiesInput string
	LeasesInput     string
	OutputDir       string
	// Sheet overrides workbook sheet selection for both inputs.
	Sheet string

	YearPivot    int
	DefaultCity  string
	DefaultOwner string
	OwnerNames   []string

	PositionalFallback bool
	RequireSlash       bool
	LeaseExtensions    bool

	MatchMinScore int

	Verbose     bool
	Interactive bool

	// ConfigFile and EnvFile are where the values above were loaded from.
	ConfigFile string
	EnvFile    string
}

func Defaults() Config {
	return Config{
		OutputDir:     DefaultOutputDir,
		YearPivot:     normalize.DefaultYearPivot,
		OwnerNames:    append([]string(nil), classify.DefaultOwnerNames...),
		MatchMinScore: match.DefaultMinScore,
		EnvFile:       DefaultEnvFile,
	}
}

// Classifier returns the extraction settings for the row classifier.
func (c Config) Classifier() classify.Config {
	cfg := classify.DefaultConfig()
	cfg.OwnerNames = c.OwnerNames
	cfg.DefaultOwner = c.DefaultOwner
	cfg.DefaultCity = c.DefaultCity
	cfg.YearPivot = c.YearPivot
	cfg.RequireSlash = c.RequireSlash
	cfg.PositionalFallback = c.PositionalFallback
	return cfg
}

func (c Config) HasInput() bool {
	return strings.TrimSpace(c.PropertiesInput) != "" || strings.TrimSpace(c.LeasesInput) != ""
}

// Validate checks the settings a batch run depends on.
func (c Config) Validate() error {
	if !c.HasInput() {
		return fmt.Errorf("%w: no properties or leases input given (use -i for the interactive picker)", ErrInvalid)
	}
	return c.ValidateSettings()
}

// ValidateSettings is Validate without the input check, for the interactive
// mode where inputs are picked later.
func (c Config) ValidateSettings() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalid)
	}
	if c.YearPivot < 0 || c.YearPivot > 99 {
		return fmt.Errorf("%w: date pivot %d is outside 0-99", ErrInvalid, c.YearPivot)
	}
	if c.MatchMinScore < 0 || c.MatchMinScore > 100 {
		return fmt.Errorf("%w: match minimum score %d is outside 0-100", ErrInvalid, c.MatchMinScore)
	}
	return nil
}

// listValue is a comma-separated flag.
type listValue struct{ list *[]string }

func (v listValue) String() string {
	if v.list == nil {
		return ""
	}
	return strings.Join(*v.list, ",")
}

func (v listValue) Set(s string) error {
	*v.list = splitList(s)
	return nil
}

func (v listValue) Type() string { return "list" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BindFlags registers the command-line flags on flags, writing into cfg.
func BindFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringVar(&cfg.PropertiesInput, "properties", cfg.PropertiesInput, "Properties workbook (.xlsx, .html, .csv)")
	flags.StringVar(&cfg.LeasesInput, "leases", cfg.LeasesInput, "Leases workbook (.xlsx, .html, .csv); discovered next to the properties file when omitted")
	flags.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory for the generated CSV files")
	flags.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "Workbook sheet to read instead of the automatic choice")
	flags.IntVar(&cfg.YearPivot, "date.pivot", cfg.YearPivot, "Two-digit years below this are 20yy, the rest 19yy")
	flags.StringVar(&cfg.DefaultCity, "city.default", cfg.DefaultCity, "City used when the address names none")
	flags.StringVar(&cfg.DefaultOwner, "owner.default", cfg.DefaultOwner, "Owner used before the first owner row")
	flags.Var(listValue{&cfg.OwnerNames}, "owner.names", "Comma-separated owner name fragments")
	flags.BoolVar(&cfg.PositionalFallback, "leases.positionalFallback", cfg.PositionalFallback, "Read lease columns by position when no header row exists")
	flags.BoolVar(&cfg.RequireSlash, "leases.requireSlash", cfg.RequireSlash, "Only accept lease file numbers containing '/'")
	flags.BoolVar(&cfg.LeaseExtensions, "leases.extensions", cfg.LeaseExtensions, "Add our-share, insurance, arnona, meter, sequential and handled-by columns")
	flags.IntVar(&cfg.MatchMinScore, "match.minScore", cfg.MatchMinScore, "Lowest address score written to the matches file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose logging")
	flags.BoolVarP(&cfg.Interactive, "interactive", "i", cfg.Interactive, "Pick input files interactively")
	flags.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")
	flags.StringVar(&cfg.EnvFile, "env", cfg.EnvFile, "Environment file loaded before reading RENTPORT_* variables")
}

// Resolve layers the configuration sources under the parsed flags. Explicit
// flags win over the YAML file, which wins over the environment, which wins
// over the defaults.
func Resolve(flags *pflag.FlagSet, cfg *Config) error {
	explicit := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) { explicit[f.Name] = f.Value.String() })

	if err := LoadEnvFile(cfg.EnvFile, flags.Changed("env")); err != nil {
		return err
	}

	base := Defaults()
	base.ConfigFile, base.EnvFile = cfg.ConfigFile, cfg.EnvFile
	if err := ApplyEnv(&base, os.Getenv); err != nil {
		return err
	}
	if base.ConfigFile != "" {
		fc, err := LoadConfigFile(base.ConfigFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		ApplyFileConfig(&base, fc)
	}

	// The flags still point into cfg, so setting the explicit ones again
	// layers them over the merged values.
	*cfg = base
	for name, value := range explicit {
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("%w: --%s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// LoadEnvFile loads KEY=value pairs into the process environment without
// overriding variables that are already set. A missing file is only an error
// when it was asked for explicitly.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	return fmt.Errorf("%w: env file %s: %v", ErrInvalid, path, err)
}
