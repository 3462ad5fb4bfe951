package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/pharmsim/internal/buildinfo"
	"github.com/dmitrijs2005/pharmsim/internal/client/config"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
)

// annotationNoApp marks commands that run without local state or network.
const annotationNoApp = "pharmsim/no-app"

// appFactory builds the App for a command; tests replace it.
type appFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error)

type runner struct {
	newApp appFactory
	app    *App
}

// rootCmd returns the pharmsim command tree. Running it without a
// subcommand starts the interactive shell.
func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pharmsim",
		Short: "pharmsim - pharmacy simulation platform client",
		Long: `pharmsim is the command-line client of the pharmacy role-play simulation
platform. It keeps you signed in between runs on a trusted device and shows the
views your roles allow.`,
		SilenceUsage:      true,
		PersistentPreRunE: r.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.app.Shell(cmd.Context())
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		r.shellCmd(),
		r.loginCmd(),
		r.logoutCmd(),
		r.whoamiCmd(),
		r.viewCmd(),
		r.persistCmd(),
		versionCmd(),
	)
	return root
}

func (r *runner) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[annotationNoApp] == "true" {
		return nil
	}
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	app, err := r.newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	r.app = app
	app.Start(cmd.Context())
	return nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

func (r *runner) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.app.Shell(cmd.Context())
			return nil
		},
	}
}

func (r *runner) loginCmd() *cobra.Command {
	var (
		identifier string
		trust      bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email or student number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loginOptions{Identifier: identifier}
			if cmd.Flags().Changed("trust-device") {
				opts.Trust = &trust
			}
			return r.app.login(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&identifier, "user", "u", "", "email or student number (prompted when empty)")
	cmd.Flags().BoolVar(&trust, "trust-device", false, "restore the session on later runs (prompted when not set)")
	return cmd
}

func (r *runner) logoutCmd() *cobra.Command {
	var everywhere, forget bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case forget:
				return r.app.ForgetDevice(cmd.Context())
			case everywhere:
				return r.app.LogoutAll(cmd.Context())
			default:
				return r.app.Logout(cmd.Context())
			}
		},
	}
	cmd.Flags().BoolVar(&everywhere, "everywhere", false, "end every session of the user")
	cmd.Flags().BoolVar(&forget, "forget-device", false, "also forget that this device is trusted")
	return cmd
}

func (r *runner) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.WhoAmI(cmd.Context())
		},
	}
}

func (r *runner) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "view <name>",
		Short:     "Open a view",
		Args:      cobra.ExactArgs(1),
		ValidArgs: viewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.Open(cmd.Context(), args[0])
		},
	}
}

func (r *runner) persistCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "persist on|off",
		Short:     "Trust or untrust this device for silent session restore",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.SetPersist(cmd.Context(), args[0] == "on")
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// Execute runs the command tree with args and releases local state.
func Execute(ctx context.Context, args []string) error {
	r := &runner{newApp: NewApp}
	root := r.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := r.close(); cerr != nil && err == nil {
		err = fmt.Errorf("close local state: %w", cerr)
	}
	return err
}
