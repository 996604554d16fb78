// Package config resolves forgec's project configuration through the
// layering order SPEC_FULL.md §4.10 specifies: CLI flags win over
// environment variables, which win over forge.toml, which wins over
// built-in defaults. Grounded in the morfx example repo's own
// .env-then-flags layering and parsed with the same libraries the
// teacher's dependency pack carries (BurntSushi/toml, joho/godotenv).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/forge-lang/forgec/pkg/version"
)

// Target is the backend forgec compiles to.
type Target string

const (
	TargetVM   Target = "vm"
	TargetLLVM Target = "llvm"
)

// Config is forgec's fully-resolved configuration, after merging
// defaults, forge.toml, the environment, and (by the caller, via the
// Override* methods) CLI flags.
type Config struct {
	Target          Target
	OptLevel        int
	Verbose         bool
	SearchPath      []string
	MinForgeVersion version.Version
}

// Default returns the built-in defaults, the bottom of the precedence
// ladder.
func Default() Config {
	return Config{Target: TargetVM, OptLevel: 0, Verbose: false}
}

// fileConfig mirrors forge.toml's shape for BurntSushi/toml to decode
// into; fields are pointers so "absent from the file" is distinguishable
// from "explicitly zero."
type fileConfig struct {
	Target          *string  `toml:"target"`
	OptLevel        *int     `toml:"opt_level"`
	Verbose         *bool    `toml:"verbose"`
	SearchPath      []string `toml:"search_path"`
	MinForgeVersion *string  `toml:"min_forge_version"`
}

// LoadTOML reads forge.toml at path and layers it over base. A missing
// file is not an error — it simply leaves base unchanged, since
// forge.toml is optional (SPEC_FULL.md §4.10).
func LoadTOML(path string, base Config) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return base, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := base
	if fc.Target != nil {
		result.Target = Target(*fc.Target)
	}
	if fc.OptLevel != nil {
		result.OptLevel = *fc.OptLevel
	}
	if fc.Verbose != nil {
		result.Verbose = *fc.Verbose
	}
	if len(fc.SearchPath) > 0 {
		result.SearchPath = fc.SearchPath
	}
	if fc.MinForgeVersion != nil {
		v, err := version.Parse(*fc.MinForgeVersion)
		if err != nil {
			return base, fmt.Errorf("parsing min_forge_version in %s: %w", path, err)
		}
		result.MinForgeVersion = v
	}
	return result, nil
}

// CheckVersion reports an error if running is older than the
// min_forge_version a forge.toml declared. A zero MinForgeVersion means
// no constraint was declared.
func (c Config) CheckVersion(running version.Version) error {
	if c.MinForgeVersion.IsZero() {
		return nil
	}
	if !running.Satisfies(c.MinForgeVersion) {
		return fmt.Errorf("forge.toml requires forgec >= %s, running %s", c.MinForgeVersion, running)
	}
	return nil
}

// LoadEnv loads envPath (a .env file, optional) into the process
// environment and layers FORGE_TARGET / FORGE_OPT_LEVEL / FORGE_VERBOSE
// over base, per SPEC_FULL.md §4.10. A missing .env file is not an
// error.
func LoadEnv(envPath string, base Config) (Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return base, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	result := base
	if v, ok := os.LookupEnv("FORGE_TARGET"); ok {
		result.Target = Target(v)
	}
	if v, ok := os.LookupEnv("FORGE_OPT_LEVEL"); ok {
		var level int
		if _, err := fmt.Sscanf(v, "%d", &level); err != nil {
			return base, fmt.Errorf("FORGE_OPT_LEVEL=%q is not an integer", v)
		}
		result.OptLevel = level
	}
	if v, ok := os.LookupEnv("FORGE_VERBOSE"); ok {
		result.Verbose = v == "1" || v == "true"
	}
	return result, nil
}

// Load resolves the full precedence ladder: defaults, then forge.toml at
// tomlPath, then the environment (via envPath's optional .env file).
// CLI flags are layered on top by the caller, after Load returns, via
// the Override* methods — cobra flag values are only known to the
// command that defines them.
func Load(tomlPath, envPath string) (Config, error) {
	cfg, err := LoadTOML(tomlPath, Default())
	if err != nil {
		return cfg, err
	}
	return LoadEnv(envPath, cfg)
}

// OverrideTarget applies a CLI --target flag, the top of the precedence
// ladder, when set is true (the flag was actually passed).
func (c Config) OverrideTarget(value string, set bool) Config {
	if set {
		c.Target = Target(value)
	}
	return c
}

// OverrideOptLevel applies a CLI -O flag.
func (c Config) OverrideOptLevel(value int, set bool) Config {
	if set {
		c.OptLevel = value
	}
	return c
}

// OverrideVerbose applies a CLI --verbose flag.
func (c Config) OverrideVerbose(value bool, set bool) Config {
	if set {
		c.Verbose = value
	}
	return c
}
