package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/airpath/airpath/internal/agent"
	"github.com/airpath/airpath/internal/core"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single flight-planning question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			question := strings.Join(args, " ")
			_, err = a.orch.Run(cmd.Context(), agent.TurnRequest{Message: question}, func(ev core.ChatEvent) {
				renderEvent(cmd.OutOrStdout(), cmd.ErrOrStderr(), ev)
			})
			if err != nil {
				// Already surfaced via the error event; exit nonzero quietly.
				return errors.New("request failed")
			}
			return nil
		},
	}
}
