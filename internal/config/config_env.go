package config

import (
	"fmt"
	"strconv"
	"strings"
)

const envPrefix = "RENTPORT_"

// ApplyEnv overlays RENTPORT_* variables onto cfg. Unset or empty variables
// leave the current value alone.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}
	get := func(key string) string { return strings.TrimSpace(getenv(envPrefix + key)) }

	setString := func(key string, dst *string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := get(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalid, envPrefix, key, v)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := get(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, envPrefix, key, v)
		}
		*dst = b
		return nil
	}

	setString("PROPERTIES", &cfg.PropertiesInput)
	setString("LEASES", &cfg.LeasesInput)
	setString("OUTPUT_DIR", &cfg.OutputDir)
	setString("SHEET", &cfg.Sheet)
	setString("CITY_DEFAULT", &cfg.DefaultCity)
	setString("OWNER_DEFAULT", &cfg.DefaultOwner)
	if v := get("OWNER_NAMES"); v != "" {
		cfg.OwnerNames = splitList(v)
	}

	for _, err := range []error{
		setInt("DATE_PIVOT", &cfg.YearPivot),
		setInt("MATCH_MIN_SCORE", &cfg.MatchMinScore),
		setBool("POSITIONAL_FALLBACK", &cfg.PositionalFallback),
		setBool("REQUIRE_SLASH", &cfg.RequireSlash),
		setBool("LEASE_EXTENSIONS", &cfg.LeaseExtensions),
		setBool("VERBOSE", &cfg.Verbose),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
