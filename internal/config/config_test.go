package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nconklindev/rentport/internal/classify"

	"github.com/spf13/pflag"
)

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	cfg := Defaults()
	flags := pflag.NewFlagSet("rentport", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	BindFlags(flags, &cfg)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("flags.Parse(%v) error = %v", args, err)
	}
	err := Resolve(flags, &cfg)
	return cfg, err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := parse(t, "--properties", "props.xlsx")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.PropertiesInput != "props.xlsx" || cfg.LeasesInput != "" {
		t.Errorf("inputs = %q, %q", cfg.PropertiesInput, cfg.LeasesInput)
	}
	if cfg.OutputDir != DefaultOutputDir || cfg.YearPivot != 50 || cfg.MatchMinScore != 50 {
		t.Errorf("defaults = out %q pivot %d minScore %d", cfg.OutputDir, cfg.YearPivot, cfg.MatchMinScore)
	}
	if !slices.Equal(cfg.OwnerNames, classify.DefaultOwnerNames) {
		t.Errorf("OwnerNames = %v", cfg.OwnerNames)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolve_Precedence(t *testing.T) {
	t.Setenv("RENTPORT_DATE_PIVOT", "30")
	t.Setenv("RENTPORT_OUTPUT_DIR", "from-env")
	t.Setenv("RENTPORT_CITY_DEFAULT", "Israel")
	t.Setenv("RENTPORT_REQUIRE_SLASH", "true")

	file := writeFile(t, "rentport.yaml", `
input:
  properties: from-file.xlsx
output: from-file
date:
  pivot: 40
leases:
  requireSlash: false
  extensions: true
owner:
  names: [כהן, לוי]
`)

	cfg, err := parse(t, "--config", file, "--date.pivot", "20", "--properties=from-flag.xlsx", "-i")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"flag beats file", cfg.YearPivot, 20},
		{"flag input beats file", cfg.PropertiesInput, "from-flag.xlsx"},
		{"file beats env", cfg.OutputDir, "from-file"},
		{"file false beats env true", cfg.RequireSlash, false},
		{"env beats default", cfg.DefaultCity, "Israel"},
		{"file only", cfg.LeaseExtensions, true},
		{"default kept", cfg.MatchMinScore, 50},
		{"shorthand flag kept", cfg.Interactive, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
	if !slices.Equal(cfg.OwnerNames, []string{"כהן", "לוי"}) {
		t.Errorf("OwnerNames = %v", cfg.OwnerNames)
	}
}

func TestResolve_ListFlagBeatsFile(t *testing.T) {
	file := writeFile(t, "rentport.yaml", "owner:\n  names: [כהן, לוי]\n")

	cfg, err := parse(t, "--config", file, "--owner.names", "אבי, רון")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !slices.Equal(cfg.OwnerNames, []string{"אבי", "רון"}) {
		t.Errorf("OwnerNames = %v", cfg.OwnerNames)
	}
}

func TestResolve_EnvFile(t *testing.T) {
	t.Cleanup(func() {
		os.Unsetenv("RENTPORT_LEASES")
		os.Unsetenv("RENTPORT_LEASE_EXTENSIONS")
	})
	envFile := writeFile(t, "test.env", "RENTPORT_LEASES=leases.xlsx\nRENTPORT_LEASE_EXTENSIONS=1\n")

	cfg, err := parse(t, "--env", envFile)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.LeasesInput != "leases.xlsx" || !cfg.LeaseExtensions {
		t.Errorf("LeasesInput = %q, LeaseExtensions = %v", cfg.LeasesInput, cfg.LeaseExtensions)
	}
}

func TestResolve_Errors(t *testing.T) {
	unknownKey := writeFile(t, "bad.yaml", "outptu: x\n")

	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"missing explicit env file", []string{"--env", filepath.Join(t.TempDir(), "nope.env")}, nil},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}, nil},
		{"unknown yaml key", []string{"--config", unknownKey}, nil},
		{"bad env number", nil, map[string]string{"RENTPORT_DATE_PIVOT": "fifty"}},
		{"bad env boolean", nil, map[string]string{"RENTPORT_VERBOSE": "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parse(t, tt.args...)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Resolve() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.LeasesInput = "leases.html"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no input", func(c *Config) { c.LeasesInput = "  " }, true},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, true},
		{"pivot too low", func(c *Config) { c.YearPivot = -1 }, true},
		{"pivot too high", func(c *Config) { c.YearPivot = 100 }, true},
		{"pivot bounds", func(c *Config) { c.YearPivot = 99 }, false},
		{"score too high", func(c *Config) { c.MatchMinScore = 101 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateSettings_NoInput(t *testing.T) {
	cfg := Defaults()
	if err := cfg.ValidateSettings(); err != nil {
		t.Errorf("ValidateSettings() error = %v", err)
	}
	cfg.MatchMinScore = 500
	if err := cfg.ValidateSettings(); !errors.Is(err, ErrInvalid) {
		t.Errorf("ValidateSettings() error = %v, want ErrInvalid", err)
	}
}

func TestClassifier(t *testing.T) {
	cfg := Defaults()
	cfg.OwnerNames = []string{"כהן"}
	cfg.DefaultCity = "Israel"
	cfg.YearPivot = 20
	cfg.RequireSlash = true

	cc := cfg.Classifier()
	if !slices.Equal(cc.OwnerNames, []string{"כהן"}) || cc.DefaultCity != "Israel" || cc.YearPivot != 20 || !cc.RequireSlash {
		t.Errorf("Classifier() = %+v", cc)
	}
	if len(cc.PropertyKeywords) == 0 {
		t.Error("Classifier() dropped the property keywords")
	}
}

func TestApplyEnv_EmptyLeavesValues(t *testing.T) {
	cfg := Defaults()
	env := map[string]string{"RENTPORT_OWNER_NAMES": " א , ב ,, "}
	if err := ApplyEnv(&cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cfg.OwnerNames, []string{"א", "ב"}) {
		t.Errorf("OwnerNames = %v", cfg.OwnerNames)
	}
	if cfg.YearPivot != 50 || cfg.OutputDir != DefaultOutputDir {
		t.Errorf("unset variables changed values: %+v", cfg)
	}
}
