package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pipeline"
	"github.com/spigell/cv-screener/internal/resume"
	"github.com/spigell/cv-screener/internal/screening"
)

const defaultWorkers = 1

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Extract structured data from resume files and print it as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().IntP("workers", "w", defaultWorkers, "number of files processed in parallel")
}

type processResult struct {
	Path      string         `json:"path"`
	Digest    string         `json:"digest,omitempty"`
	FromCache bool           `json:"from_cache,omitempty"`
	Resume    *resume.Resume `json:"resume,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	processor, release, err := newProcessor(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}
	defer release()

	workers, _ := cmd.Flags().GetInt("workers")
	candidates, err := processFiles(ctx, processor, args, workers)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, candidate := range candidates {
		result := processResult{
			Path:      candidate.Path,
			Digest:    candidate.Digest,
			FromCache: candidate.FromCache,
			Resume:    candidate.Resume,
		}
		if candidate.Err != nil {
			result.Error = candidate.Err.Error()
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}

	return nil
}

type documentProcessor interface {
	ProcessDocument(ctx context.Context, path string) (*pipeline.Document, error)
}

// processFiles runs every path through the pipeline and returns one candidate per path, in order.
// Per-file failures are kept on the candidate; only cancellation aborts the run.
func processFiles(ctx context.Context, p documentProcessor, paths []string, workers int) ([]*screening.Candidate, error) {
	if workers < 1 {
		workers = defaultWorkers
	}

	candidates := make([]*screening.Candidate, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			candidate := &screening.Candidate{Path: path}
			doc, err := p.ProcessDocument(gCtx, path)
			if err != nil {
				candidate.Err = err
			} else {
				candidate.Digest = doc.Digest
				candidate.FromCache = doc.FromCache
				candidate.Resume = doc.Resume
			}
			candidates[i] = candidate
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return candidates, nil
}
