package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"veracity/internal/model"
	"veracity/internal/pipeline"
)

var (
	outJSON     bool
	askTimeout  time.Duration
	noFastPath  bool
	refresh     bool
	llmProvider string
	juniorModel string
	seniorModel string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about this machine",
	Long: `Ask answers one question about the local system:
- Common status questions are answered instantly from cached snapshots
- Other questions run diagnostic probes and a junior/senior reasoning loop
- Every answer is checked against the collected evidence before release

Example:
  veracity ask "how is my computer doing?"
  veracity ask "why is nginx failing?" --json
  veracity ask "how much memory am I using" --refresh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	// Output flags
	askCmd.Flags().BoolVar(&outJSON, "json", false, "emit the full answer as JSON")

	// Behaviour flags
	askCmd.Flags().DurationVar(&askTimeout, "timeout", time.Minute, "overall request timeout")
	askCmd.Flags().BoolVar(&noFastPath, "no-fastpath", false, "skip the snapshot fast path")
	askCmd.Flags().BoolVar(&refresh, "refresh", false, "capture a fresh snapshot before answering")

	// LLM flags
	askCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	askCmd.Flags().StringVar(&juniorModel, "junior-model", "", "junior model name")
	askCmd.Flags().StringVar(&seniorModel, "senior-model", "", "senior model name")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("empty question")
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg, err := buildAskConfig()
	if err != nil {
		return err
	}

	engine, err := pipeline.NewEngine(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if refresh {
		if verbose {
			fmt.Fprintln(os.Stderr, "Capturing fresh snapshot...")
		}
		if _, err := engine.RefreshSnapshot(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: snapshot refresh failed: %v\n", err)
		}
	}

	answer := engine.Ask(ctx, question)

	renderer := pipeline.NewRenderer(os.Stdout, cfg.Output.Verbose)
	if outJSON || cfg.Output.JSON {
		return renderer.RenderJSON(answer)
	}
	renderer.RenderHuman(answer)
	return nil
}

func buildAskConfig() (*model.Config, error) {
	// Provider overrides apply before key resolution so a provider switch
	// on the command line picks up the right environment variable.
	if llmProvider != "" {
		viper.Set("llm.provider", llmProvider)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if juniorModel != "" {
		cfg.LLM.JuniorModel = juniorModel
	}
	if seniorModel != "" {
		cfg.LLM.SeniorModel = seniorModel
	}
	if noFastPath {
		cfg.FastPath.Enabled = false
	}
	return cfg, nil
}
