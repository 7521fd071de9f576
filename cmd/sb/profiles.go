package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Default service URLs, matching the services' default listen addresses.
const (
	defaultIdentityURL    = "http://localhost:8081"
	defaultRegistryURL    = "http://localhost:8082"
	defaultInteractionURL = "http://localhost:8083"
)

// ProfilesConfig holds all named profiles and tracks which one is active.
type ProfilesConfig struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Profile is a named deployment: where the services live and who we are
// there.
type Profile struct {
	IdentityURL    string `toml:"identity_url"`
	RegistryURL    string `toml:"registry_url"`
	InteractionURL string `toml:"interaction_url"`
	NATSURL        string `toml:"nats_url,omitempty"`
	Username       string `toml:"username,omitempty"`
	Token          string `toml:"token,omitempty"`
}

func profilesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "switchboard")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.toml"), nil
}

func loadProfiles() (ProfilesConfig, error) {
	path, err := profilesPath()
	if err != nil {
		return ProfilesConfig{}, err
	}
	var cfg ProfilesConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return ProfilesConfig{Profiles: map[string]Profile{}}, nil
		}
		return ProfilesConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

// saveProfiles writes the file with 0600 permissions; it holds tokens.
func saveProfiles(cfg ProfilesConfig) error {
	path, err := profilesPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// selectedProfileName is --profile, else SWITCHBOARD_PROFILE, else the
// active profile.
func selectedProfileName(cfg ProfilesConfig) string {
	if profileName != "" {
		return profileName
	}
	if p := os.Getenv("SWITCHBOARD_PROFILE"); p != "" {
		return p
	}
	return cfg.Active
}

// resolveTarget merges, in decreasing precedence, command-line flags,
// SWITCHBOARD_* environment variables, the selected profile and the
// localhost defaults.
func resolveTarget(cmd *cobra.Command) (Profile, error) {
	cfg, err := loadProfiles()
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if name := selectedProfileName(cfg); name != "" {
		stored, ok := cfg.Profiles[name]
		if !ok && profileName != "" {
			return Profile{}, fmt.Errorf("profile %q not found", name)
		}
		p = stored
	}

	flags := cmd.Flags()
	pick := func(flag, env, fromProfile, fallback string) string {
		if v, _ := flags.GetString(flag); v != "" {
			return v
		}
		if v := os.Getenv(env); v != "" {
			return v
		}
		if fromProfile != "" {
			return fromProfile
		}
		return fallback
	}

	p.IdentityURL = pick("identity-url", "SWITCHBOARD_IDENTITY_URL", p.IdentityURL, defaultIdentityURL)
	p.RegistryURL = pick("registry-url", "SWITCHBOARD_REGISTRY_URL", p.RegistryURL, defaultRegistryURL)
	p.InteractionURL = pick("interaction-url", "SWITCHBOARD_INTERACTION_URL", p.InteractionURL, defaultInteractionURL)
	p.NATSURL = pick("nats-url", "SWITCHBOARD_NATS_URL", p.NATSURL, "")
	p.Token = pick("token", "SWITCHBOARD_TOKEN", p.Token, "")
	return p, nil
}

// requireToken returns the resolved bearer token or an error telling the
// user how to get one.
func requireToken() (string, error) {
	if target.Token == "" {
		return "", fmt.Errorf("not logged in; run 'sb login' or pass --token")
	}
	return target.Token, nil
}

func maskToken(tok string) string {
	if len(tok) <= 8 {
		return tok
	}
	return tok[:8] + "..."
}
