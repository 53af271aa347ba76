package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/activity-monitor/pkg/config"
	"github.com/Veraticus/activity-monitor/pkg/focus"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// path returns the --config value, falling back to the standard location.
func (o *rootOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.Path()
}

type runOptions struct {
	json     bool
	noStatus bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "activity-monitor",
		Short: "Poll application focus, document changes and user idle time",
		Long: "activity-monitor samples whether the host application is focused, " +
			"whether its documents changed and how long the user has been idle, " +
			"and publishes one activity event per poll interval.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// run re-initializes once the config level is known
			level := opts.logLevel
			if level == "" {
				level = "WARNING"
			}
			return InitLogger(level, cmd.ErrOrStderr())
		},
	}
	addRootFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		newRunCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

func addRootFlags(fs *pflag.FlagSet, opts *rootOptions) {
	fs.StringVar(&opts.configPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/activity-monitor/config.yaml)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: DEBUG, INFO, WARNING, ERROR (overrides config)")
}

func addRunFlags(fs *pflag.FlagSet, opts *runOptions) {
	fs.BoolVar(&opts.json, "json", false, "write each poll to stdout as a JSON line")
	fs.BoolVar(&opts.noStatus, "no-status", false, "disable the terminal status line")
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start polling until interrupted",
		Long: "Start polling until interrupted.\n\n" +
			"SIGUSR1 toggles polling and saves the new state; " +
			"SIGHUP reloads the interval and history length from the config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, root, opts)
		},
	}
	addRunFlags(cmd.Flags(), opts)

	return cmd
}

func runMonitor(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	path := root.path()
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	terminalMode := cfg.Focus.Mode == config.FocusTerminal && isTerminal(os.Stdin)
	if terminalMode {
		restore, err := terminalFocus(os.Stdin, stdout)
		if err != nil {
			return err
		}
		defer restore()
		stdout, stderr = crlfWriter{w: stdout}, crlfWriter{w: stderr}
	}

	if err := InitLogger(logLevel(root, cfg), stderr); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	deps, err := NewDependencies(cfg, path, Options{
		Stdout:     stdout,
		Stderr:     stderr,
		JSON:       opts.json,
		StatusLine: cfg.StatusLine && !opts.noStatus && isTerminal(os.Stderr),
	})
	if err != nil {
		return err
	}
	defer deps.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, watchedSignals...)
	defer signal.Stop(sigChan)

	if terminalMode && deps.FocusTracker != nil {
		reader := focus.NewTerminalReader(deps.FocusTracker, func() {
			select {
			case sigChan <- os.Interrupt:
			default:
			}
		})
		go func() {
			if err := reader.Run(os.Stdin); err != nil {
				log.Debugf("terminal input closed: %v", err)
			}
		}()
	}

	log.Infof("config %s, focus mode %s, interval %s", path, cfg.Focus.Mode, cfg.Polling.Interval)
	return NewApplication(deps).Run(cmd.Context(), sigChan)
}

func logLevel(root *rootOptions, cfg *config.Config) string {
	if root.logLevel != "" {
		return root.logLevel
	}
	return cfg.LogLevel
}

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the stored settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.LoadFrom(root.path())
				if err != nil {
					return err
				}
				return writeConfig(cmd.OutOrStdout(), root.path(), cfg)
			},
		},
		&cobra.Command{
			Use:   "set-interval <seconds|duration>",
			Short: "Set the poll interval; invalid values are ignored",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				d, err := config.ParseInterval(args[0])
				if err != nil {
					// Keep the previous value
					log.Debugf("ignoring interval: %v", err)
					return nil
				}
				return editConfig(root.path(), func(cfg *config.Config) {
					cfg.Polling.Interval = d
				})
			},
		},
		&cobra.Command{
			Use:   "set-enabled <true|false>",
			Short: "Set whether polling starts with run",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				enabled, err := config.ParseBool(args[0])
				if err != nil {
					return err
				}
				return editConfig(root.path(), func(cfg *config.Config) {
					cfg.Polling.Enabled = enabled
				})
			},
		},
		&cobra.Command{
			Use:   "set-history <polls>",
			Short: "Set how many recent polls are kept; invalid values are ignored",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					log.Debugf("ignoring history length %q", args[0])
					return nil
				}
				return editConfig(root.path(), func(cfg *config.Config) {
					cfg.History.Length = n
				})
			},
		},
	)

	return cmd
}

// editConfig applies edit to the stored config file, without environment
// overrides, and saves it.
func editConfig(path string, edit func(*config.Config)) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	edit(cfg)
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	log.Debugf("saved %s", path)
	return nil
}

func writeConfig(w io.Writer, path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# %s\n%s", path, data); err != nil {
		return err
	}
	return nil
}
