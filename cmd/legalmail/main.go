// Legalmail triages inbound legal emails and drafts replies citing the
// governing contract, from the command line or as an MCP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hal9000y/legalmail-mcp/internal/agent"
	"github.com/hal9000y/legalmail-mcp/internal/analysis"
	"github.com/hal9000y/legalmail-mcp/internal/config"
	"github.com/hal9000y/legalmail-mcp/internal/logging"
	"github.com/hal9000y/legalmail-mcp/internal/reply"
	"github.com/hal9000y/legalmail-mcp/internal/tool"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand once the root command has
// resolved the configuration.
type app struct {
	configFile string
	envFile    string

	cfg    *config.Config
	logger *zap.Logger
	agent  *agent.Agent
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "legalmail",
		Short: "Triage legal emails and draft replies citing the contract",
		Long: `legalmail classifies inbound legal emails by intent, topic and urgency,
extracts the parties, agreement, questions and requested due date, and drafts
a reply that cites the relevant clauses of the contract.

Run "legalmail serve" to expose the same pipeline as MCP tools over stdio.`,
		Version:           tool.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a yaml, json or toml config file")
	flags.StringVar(&a.envFile, "env-file", "", "Path to a dotenv file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "json", "Log format: json or console")
	flags.String("log-file", "", "Path to log file, serve discards logs when empty")
	flags.String("signature", reply.DefaultSignature, "Sign-off of drafted replies")
	flags.String("rules-file", "", "Path to a yaml file overriding the triage keyword rules")

	root.AddCommand(
		newAnalyzeCmd(a),
		newDraftCmd(a),
		newProcessCmd(a),
		newServeCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return fmt.Errorf("config.Load failed: %w", err)
	}
	a.cfg = cfg

	// stdout belongs to the stdio transport when serving.
	if cmd.Name() != "serve" || cfg.LogFile != "" {
		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("logging.New failed: %w", err)
		}
		a.logger = logger
	}

	rules, err := analysis.LoadRulesFile(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("analysis.LoadRulesFile failed: %w", err)
	}

	analyzer, err := analysis.New(rules)
	if err != nil {
		return fmt.Errorf("analysis.New failed: %w", err)
	}

	a.agent = agent.New(analyzer, reply.New(cfg.Signature), a.logger)
	a.logger.Debug("configured",
		zap.String("command", cmd.Name()),
		zap.String("signature", cfg.Signature),
		zap.String("rules_file", cfg.RulesFile),
	)

	return nil
}
