package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/airpath/airpath/internal/core"
)

// renderEvent prints one chat event for the terminal. Messages go to out;
// progress and tool activity go to errOut so piped output stays clean.
func renderEvent(out, errOut io.Writer, ev core.ChatEvent) {
	switch ev.Kind {
	case core.EventThinking:
		fmt.Fprintf(errOut, "· %s\n", ev.Text)
	case core.EventToolCallStart:
		fmt.Fprintf(errOut, "→ %s(%s)\n", ev.Tool, renderArgs(ev.Args))
	case core.EventToolCallEnd:
		if ev.Result != nil && !ev.Result.OK {
			fmt.Fprintf(errOut, "← %s failed: %s\n", ev.Tool, ev.Result.Err)
		} else {
			fmt.Fprintf(errOut, "← %s ok\n", ev.Tool)
		}
	case core.EventMessage:
		fmt.Fprintln(out, ev.Text)
	case core.EventError:
		fmt.Fprintf(errOut, "error: %s\n", ev.Text)
	case core.EventDone:
	}
}

func renderArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := json.Marshal(args[k])
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return strings.Join(parts, ", ")
}
