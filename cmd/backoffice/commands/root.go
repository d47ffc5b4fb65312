// Package commands implements the CLI commands for the back-office client.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/backoffice/internal/app"
	"go.trai.ch/backoffice/internal/build"
	"go.trai.ch/backoffice/internal/core/domain"
)

// CLI represents the command line interface for backoffice.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Config(opts app.Options) (domain.Config, error)
	Open(ctx context.Context, opts app.Options) (*app.Session, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Command line client for the back-office API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to configuration file (default: search for "+domain.ConfigFileName+")")
	flags.StringP("output", "o", formatText, "Output format: text, json or yaml")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.Int("retries", 0, "Repeat reads failing with a network error this many times")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	for _, name := range []string{
		domain.ResourceUsers,
		domain.ResourceProducts,
		domain.ResourceCustomers,
		domain.ResourceLocations,
		domain.ResourceAuditLogs,
		domain.ResourceSystemConfig,
	} {
		rootCmd.AddCommand(c.newResourceCmd(name))
	}
	rootCmd.AddCommand(c.newDashboardCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// options reads the global flags.
func options(cmd *cobra.Command) app.Options {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	verbose, _ := flags.GetBool("verbose")
	jsonLogs, _ := flags.GetBool("json-logs")
	retries, _ := flags.GetInt("retries")
	return app.Options{
		ConfigPath: configPath,
		Verbose:    verbose,
		JSONLogs:   jsonLogs,
		Retries:    retries,
	}
}

// withSession opens a session for the duration of fn.
func (c *CLI) withSession(cmd *cobra.Command, fn func(*app.Session, *printer) error) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	session, err := c.app.Open(cmd.Context(), options(cmd))
	if err != nil {
		return err
	}
	defer func() {
		_ = session.Close(context.WithoutCancel(cmd.Context()))
	}()
	return fn(session, p)
}
