package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"scormtrack/internal/bootstrap"
	"scormtrack/internal/platform/config"
	"scormtrack/internal/simulation"
	"scormtrack/internal/ui/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configPath string
	logLevel   string
	origin     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "scormtrack",
		Short:         "SCORM progress tracking and resume correction engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", ".", "directory for local state")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level")
	root.PersistentFlags().StringVar(&flags.origin, "origin", "", "origin storage backend: memory|sqlite|redis")

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newSimulateCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newWatchCmd(flags))
	return root
}

func loadApp(flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.dataDir, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.origin != "" {
		cfg.Storage.OriginBackend = flags.origin
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// blobArg reads the blob from args, or from stdin when it is "-".
func blobArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func newDecodeCmd() *cobra.Command {
	var asJSON, showInner bool
	cmd := &cobra.Command{
		Use:   "decode <blob|->",
		Short: "Decode the resume position from a suspend-data blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := blobArg(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := bootstrap.NewCodecCLI().Decode(context.Background(), blob)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if !out.Found {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no position found (kind=%s)\n", out.Kind)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kind=%s current=%d furthest=%d\n", out.Kind, out.Current, out.Furthest)
			if showInner && out.Inner != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Inner)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decode result as JSON")
	cmd.Flags().BoolVar(&showInner, "inner", false, "print the decompressed payload")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "encode <blob|-> --target <slide>",
		Short: "Rewrite a suspend-data blob to resume at a slide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target < 1 {
				return fmt.Errorf("--target must be a 1-based slide number")
			}
			blob, err := blobArg(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := bootstrap.NewCodecCLI().Encode(context.Background(), blob, target)
			if err != nil {
				return err
			}
			if !out.Changed {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "blob unchanged")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Blob)
			return nil
		},
	}
	cmd.Flags().IntVar(&target, "target", 0, "1-based target slide")
	return cmd
}

func newSimulateCmd(flags *globalFlags) *cobra.Command {
	var verbose, shared bool
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>...",
		Short: "Replay scenarios in virtual time and check their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			runner := app.Runner(shared)
			failed := 0
			for _, path := range args {
				sc, err := simulation.LoadScenario(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				res, err := runner.Run(cmd.Context(), sc)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), report.Render(res, verbose))
				if !res.Passed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario(s) failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include player events")
	cmd.Flags().BoolVar(&shared, "shared-origin", false, "use the configured origin storage instead of a fresh one")
	return cmd
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve <scenario.yaml>",
		Short: "Run a scenario live and bridge host messages over WebSocket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			sc, err := simulation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			if listen == "" {
				listen = app.Config.Bridge.Listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return bootstrap.Serve(ctx, app, sc, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (defaults to bridge.listen)")
	return cmd
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var shared bool
	cmd := &cobra.Command{
		Use:   "watch <scenario.yaml>",
		Short: "Replay a scenario in the terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			sc, err := simulation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app, sc, shared)
		},
	}
	cmd.Flags().BoolVar(&shared, "shared-origin", false, "use the configured origin storage instead of a fresh one")
	return cmd
}
