package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"veracity/internal/model"
	"veracity/internal/pipeline"
	"veracity/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer multiple questions from a file",
	Long: `Batch reads questions from a file (one per line, # comments and blank
lines skipped) and answers them through the same decision path as ask.
Questions run in parallel with a configurable worker count; answers are
printed in input order.

Example:
  veracity batch questions.txt
  veracity batch questions.txt --concurrency 4 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent questions")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "emit each answer as JSON")
}

type askJob struct {
	index    int
	question string
	engine   *pipeline.Engine
}

type askResult struct {
	index    int
	question string
	answer   *model.FinalAnswer
}

func (r askResult) GetError() error { return nil }

func (j askJob) Execute(ctx context.Context) worker.Result {
	return askResult{
		index:    j.index,
		question: j.question,
		answer:   j.engine.Ask(ctx, j.question),
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	questions, err := readQuestions(args[0])
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions in %s", args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := pipeline.NewEngine(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Answering %d questions with %d workers\n\n", len(questions), concurrency)
	}

	pool := worker.NewPool(ctx, concurrency)
	pool.Start()
	for i, q := range questions {
		pool.Submit(askJob{index: i, question: q, engine: engine})
	}

	ordered := make([]*askResult, len(questions))
	for _, r := range pool.Wait() {
		res := r.(askResult)
		ordered[res.index] = &res
	}

	renderer := pipeline.NewRenderer(os.Stdout, cfg.Output.Verbose)
	refusals := 0
	for _, res := range ordered {
		if res == nil {
			continue
		}
		if res.answer.IsRefusal {
			refusals++
		}
		fmt.Printf("── %s\n", res.question)
		if batchJSON || cfg.Output.JSON {
			if err := renderer.RenderJSON(res.answer); err != nil {
				return err
			}
		} else {
			renderer.RenderHuman(res.answer)
		}
		fmt.Println()
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Done: %d answered, %d refused\n", len(questions)-refusals, refusals)
	}
	return nil
}

// readQuestions loads non-empty, non-comment lines from path.
func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	return questions, nil
}
