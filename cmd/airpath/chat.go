package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/airpath/airpath/internal/agent"
	"github.com/airpath/airpath/internal/core"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session; conversation history carries between questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			fmt.Fprintln(errOut, "AirPath chat. /quit to exit, /unload to release the model.")

			var history []core.Turn
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(errOut, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "/quit", line == "/exit":
					return nil
				case line == "/unload":
					a.eng.Unload()
					fmt.Fprintln(errOut, "model unloaded")
					continue
				case line == "/status":
					st, reason := a.eng.State()
					fmt.Fprintf(errOut, "engine: %s", st)
					if reason != "" {
						fmt.Fprintf(errOut, " (%s)", reason)
					}
					fmt.Fprintln(errOut)
					continue
				}

				res, err := a.orch.Run(cmd.Context(), agent.TurnRequest{
					Message: line,
					History: history,
				}, func(ev core.ChatEvent) {
					renderEvent(out, errOut, ev)
				})
				if err != nil {
					// Error already rendered; the session continues.
					continue
				}
				history = append(history, res.Turns...)
			}
		},
	}
}
