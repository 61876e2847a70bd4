package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/config"
)

// ProfilesConfig holds all named profiles and tracks which one is active.
type ProfilesConfig struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Profile is a named tracker connection.
type Profile struct {
	URL          string `toml:"url"`
	Project      string `toml:"project,omitempty"`
	Token        string `toml:"token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	NATSURL      string `toml:"nats_url,omitempty"`
	DatabaseURL  string `toml:"database_url,omitempty"`
	Description  string `toml:"description,omitempty"`
}

func (p Profile) fallback() config.Fallback {
	return config.Fallback{
		APIURL:       p.URL,
		ProjectID:    p.Project,
		Token:        p.Token,
		RefreshToken: p.RefreshToken,
		NATSURL:      p.NATSURL,
		DatabaseURL:  p.DatabaseURL,
	}
}

func profileConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "sprintboard")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.toml"), nil
}

func loadProfiles() (ProfilesConfig, error) {
	path, err := profileConfigPath()
	if err != nil {
		return ProfilesConfig{}, err
	}
	var cfg ProfilesConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return ProfilesConfig{Profiles: map[string]Profile{}}, nil
		}
		return ProfilesConfig{}, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

func saveProfiles(cfg ProfilesConfig) error {
	path, err := profileConfigPath()
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

// selectedProfile returns the profile named by --profile, else the active
// one. No profile at all is not an error: the environment may carry
// everything.
func selectedProfile() (Profile, error) {
	cfg, err := loadProfiles()
	if err != nil {
		return Profile{}, fmt.Errorf("load profiles: %w", err)
	}
	name := cfg.Active
	if profileFlag != "" {
		name = profileFlag
	}
	if name == "" {
		return Profile{}, nil
	}
	p, ok := cfg.Profiles[name]
	if !ok {
		if profileFlag != "" {
			return Profile{}, fmt.Errorf("profile %q not found", name)
		}
		return Profile{}, nil
	}
	return p, nil
}

func maskToken(tok string) string {
	if len(tok) > 8 {
		return tok[:8] + strings.Repeat("*", len(tok)-8)
	}
	return tok
}

func shortToken(tok string) string {
	if len(tok) > 8 {
		return tok[:8] + "..."
	}
	return tok
}

var profileCmd = &cobra.Command{
	Use:               "profile",
	Short:             "Manage named tracker profiles",
	GroupID:           "system",
	PersistentPreRunE: skipConfig,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or update a named profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		p := Profile{URL: url}
		p.Project, _ = cmd.Flags().GetString("project-id")
		p.Token, _ = cmd.Flags().GetString("token")
		p.RefreshToken, _ = cmd.Flags().GetString("refresh-token")
		p.NATSURL, _ = cmd.Flags().GetString("nats")
		p.DatabaseURL, _ = cmd.Flags().GetString("database")
		p.Description, _ = cmd.Flags().GetString("description")

		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		cfg.Profiles[name] = p
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q added (%s)\n", name, url)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		delete(cfg.Profiles, name)
		if cfg.Active == name {
			cfg.Active = ""
		}
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q removed\n", name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if len(cfg.Profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no profiles configured")
			return nil
		}
		names := make([]string, 0, len(cfg.Profiles))
		for name := range cfg.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tURL\tPROJECT\tTOKEN")
		for _, name := range names {
			p := cfg.Profiles[name]
			marker := "  "
			if name == cfg.Active {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", marker, name, p.URL, p.Project, shortToken(p.Token))
		}
		return w.Flush()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		cfg.Active = name
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active profile set to %q\n", name)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [<name>]",
	Short: "Show details for a profile (defaults to active)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		name := cfg.Active
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no active profile; specify a name or run 'sb profile use <name>'")
		}
		p, ok := cfg.Profiles[name]
		if !ok {
			return fmt.Errorf("profile %q not found", name)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		active := ""
		if name == cfg.Active {
			active = " (active)"
		}
		fmt.Fprintf(w, "name:\t%s%s\n", name, active)
		fmt.Fprintf(w, "url:\t%s\n", p.URL)
		for _, row := range []struct{ label, value string }{
			{"project", p.Project},
			{"token", maskToken(p.Token)},
			{"refresh_token", maskToken(p.RefreshToken)},
			{"nats_url", p.NATSURL},
			{"database_url", p.DatabaseURL},
			{"description", p.Description},
		} {
			if row.value != "" {
				fmt.Fprintf(w, "%s:\t%s\n", row.label, row.value)
			}
		}
		return w.Flush()
	},
}

func init() {
	profileAddCmd.Flags().String("project-id", "", "default project for this profile")
	profileAddCmd.Flags().String("token", "", "access token")
	profileAddCmd.Flags().String("refresh-token", "", "refresh token used to renew the access token")
	profileAddCmd.Flags().String("nats", "", "NATS URL for cross-session change events")
	profileAddCmd.Flags().String("database", "", "PostgreSQL URL for the transition journal")
	profileAddCmd.Flags().String("description", "", "free-form note")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileShowCmd)
}
