package profile

import (
	"fmt"
	"regexp"

	"github.com/matheus3301/campchat/internal/config"
)

const DefaultName = "main"

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name conforms to profile naming rules.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. config.toml default_profile
// 3. "main"
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultName
}

// Active is a resolved profile with its settings.
type Active struct {
	Name     string
	Settings config.Profile
}

// Load reads the config file, resolves the profile and applies environment
// overrides. The settings are not validated; binaries that need an origin
// call Settings.Validate.
func Load(flagOverride string) (Active, error) {
	cfg, err := config.LoadOrEmpty(ConfigPath())
	if err != nil {
		return Active{}, err
	}
	name := Resolve(flagOverride, cfg)
	if err := ValidateName(name); err != nil {
		return Active{}, err
	}
	settings := cfg.Profile(name)
	if err := settings.ApplyEnv(nil); err != nil {
		return Active{}, err
	}
	return Active{Name: name, Settings: settings}, nil
}
