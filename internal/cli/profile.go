package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage saved connections",
	}
	cmd.AddCommand(
		newProfileAddCommand(a),
		newProfileRmCommand(a),
		newProfileLsCommand(a),
		newProfileImportCommand(a),
	)
	return cmd
}

func newProfileAddCommand(a *app) *cobra.Command {
	var (
		remoteDir        string
		notes            string
		rememberPassword bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a connection from --host, --port and --user",
		Long: `Save a connection under <name>. An existing profile with the same name is
replaced. With --remember-password the --password value (or SXTX_PASSWORD)
is stored in the system keyring, never in the profiles file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if s.Host == "" {
				return ErrNoHost
			}
			if s.User == "" {
				return errors.New("no user given: use --user")
			}
			if rememberPassword && s.Password == "" {
				return errors.New("--remember-password needs --password")
			}

			p, err := a.profiles.AddProfile(config.Profile{
				Name:      args[0],
				Host:      s.Host,
				Port:      s.Port,
				Username:  s.User,
				RemoteDir: remoteDir,
				Notes:     notes,
			})
			if err != nil {
				return err
			}

			if rememberPassword {
				if err := a.profiles.SetPassword(p.ID, s.Password); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", p.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&remoteDir, "remote-dir", "", "Remote directory to start in")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().BoolVar(&rememberPassword, "remember-password", false, "Store the password in the system keyring")
	return cmd
}

func newProfileRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name|id>",
		Aliases: []string{"delete"},
		Short:   "Delete a saved connection and its stored password",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.profiles.DeleteProfile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newProfileLsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List saved connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := a.profiles.ListProfiles()
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved connections.")
				return nil
			}

			last, _ := a.profiles.LastUsed()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTARGET\tREMOTE DIR\tID")
			for _, p := range profiles {
				name := p.Name
				if p.ID == last.ID {
					name += " *"
				}
				fmt.Fprintf(w, "%s\t%s@%s:%d\t%s\t%s\n", name, p.Username, p.Host, p.Port, p.RemoteDir, p.ID)
			}
			return w.Flush()
		},
	}
}

func newProfileImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [ssh-config]",
		Short: "Import Host entries from an OpenSSH client config",
		Long: `Import every concrete Host entry of an OpenSSH client config (default
~/.ssh/config) as a profile. Wildcard hosts are skipped, and so are names
that already exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultSSHConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			found, err := config.ParseSSHConfig(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			added, err := a.profiles.Import(found)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d hosts from %s\n", added, len(found), path)
			return nil
		},
	}
}
