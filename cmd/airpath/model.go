package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/airpath/airpath/internal/engine"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and probe the local inference setup",
	}
	cmd.AddCommand(newModelStatusCmd(), newModelLoadCmd(), newModelUnloadCmd())
	return cmd
}

func newModelStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show model, backend, and data store availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "config dir:    %s\n", a.cfg.ConfigDir)
			fmt.Fprintf(out, "model path:    %s (%s)\n", orUnset(a.cfg.ModelPath), fileStatus(a.cfg.ModelPath))
			fmt.Fprintf(out, "airports db:   %s (%s)\n", a.cfg.AirportsDBPath(), openStatus(a.db != nil))
			fmt.Fprintf(out, "rules:         %s (%s)\n", a.cfg.RulesPath(), fileStatus(a.cfg.RulesPath()))

			st, reason := a.eng.State()
			if st == engine.StateUnsupported {
				fmt.Fprintf(out, "inference:     unsupported (%s)\n", reason)
			} else {
				fmt.Fprintf(out, "inference:     %s\n", st)
			}
			return nil
		},
	}
}

// newModelLoadCmd probes the backend ladder end to end: spawn, health check,
// report which backend took the model, release. The loaded state does not
// persist past the process; chat sessions load on demand.
func newModelLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Probe that the configured model loads on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.eng.Load(cmd.Context(), a.cfg.ModelPath); err != nil {
				return fmt.Errorf("load: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model loaded via %s\n", a.eng.BackendName())
			return nil
		},
	}
}

func newModelUnloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unload",
		Short: "Release any model held by this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			a.eng.Unload()
			fmt.Fprintln(cmd.OutOrStdout(), "unloaded")
			return nil
		},
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func fileStatus(path string) string {
	if path == "" {
		return "missing"
	}
	if _, err := os.Stat(path); err != nil {
		return "missing"
	}
	return "present"
}

func openStatus(ok bool) string {
	if ok {
		return "open"
	}
	return "unavailable"
}
