// AirPath is an offline flight-planning assistant for general aviation:
// bundled airport and country-rule stores, a local GGUF model behind
// llama-server, and a bounded tool loop that answers route, customs, and
// notification questions without a network connection.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/agent"
	"github.com/airpath/airpath/internal/config"
	"github.com/airpath/airpath/internal/engine"
	"github.com/airpath/airpath/internal/rules"
	"github.com/airpath/airpath/internal/store"
	"github.com/airpath/airpath/internal/tools"
)

var (
	flagConfigDir string
	flagVerbose   bool
)

func main() {
	root := &cobra.Command{
		Use:           "airpath",
		Short:         "Offline flight-planning assistant for general aviation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default: .airpath or ~/.config/airpath)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log engine and tool activity to stderr")

	root.AddCommand(newAskCmd(), newChatCmd(), newModelCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs. Stores that fail to open are left
// nil; the dispatcher reports per-tool data errors instead of the process
// refusing to start.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *store.DB
	eng  *engine.Engine
	orch *agent.Orchestrator
}

func newApp(ctx *cobra.Command) (*app, error) {
	cfg, err := config.New(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := zap.NewNop()
	if flagVerbose {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{"stderr"}
		log, err = zcfg.Build()
		if err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg, log: log}

	if db, err := store.Open(ctx.Context(), cfg.AirportsDBPath(), log); err != nil {
		log.Warn("airports store unavailable", zap.Error(err))
	} else {
		a.db = db
	}

	var doc *rules.Document
	if d, err := rules.Load(cfg.RulesPath(), log); err != nil {
		log.Warn("rules store unavailable", zap.Error(err))
	} else {
		doc = d
	}

	a.eng = engine.New(backendLadder(cfg), engine.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Stop:        []string{"\nUser:", "\nTool result"},
	}, log)

	a.orch = &agent.Orchestrator{
		Config: cfg,
		Gen:    a.eng,
		Tools:  tools.New(a.db, doc, log),
		Log:    log,
	}
	return a, nil
}

func (a *app) close() {
	a.eng.Unload()
	if a.db != nil {
		a.db.Close()
	}
	_ = a.log.Sync()
}

// backendLadder returns the factories in probe order. No usable server
// binary means no ladder at all; the engine reports Unsupported.
func backendLadder(cfg *config.Config) []engine.BackendFactory {
	bin := cfg.ServerBinary
	if bin == "" {
		bin = "llama-server"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil
	}
	sc := engine.SpawnConfig{ServerBinary: resolved, ContextWindow: cfg.ContextWindow}
	return []engine.BackendFactory{engine.NewAccelerated(sc), engine.NewPortable(sc)}
}
