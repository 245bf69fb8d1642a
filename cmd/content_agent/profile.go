package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/content-agent/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your professional profile",
}

var profileInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the starter profile for you to edit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := profilePath(appConfig)
		if err != nil {
			return err
		}
		return initProfile(cmd.OutOrStdout(), path, profileForce)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := profilePath(appConfig)
		if err != nil {
			return err
		}
		return showProfile(cmd.OutOrStdout(), path)
	},
}

var profileForce bool

func init() {
	profileInitCmd.Flags().BoolVarP(&profileForce, "force", "f", false, "Overwrite an existing profile")
	profileCmd.AddCommand(profileInitCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func initProfile(out io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("profile already exists at %s (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check profile: %w", err)
	}
	if err := profile.Default().Save(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Profile written to %s\nEdit it to describe your role, goals and projects.\n", path)
	return nil
}

func showProfile(out io.Writer, path string) error {
	p, err := profile.Load(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintf(out, "# No profile at %s; showing defaults. Run 'content_agent profile init' to create one.\n", path)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = out.Write(data)
	return err
}
