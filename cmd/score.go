package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/screening"
)

const skipFlagSetMsg = "skip-step flag is set"

var scoreCmd = &cobra.Command{
	Use:   "score --job <job file> <file>...",
	Short: "Score resume files against a job and print the ranked candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("job", "", "job description file (yaml, json or toml)")
	scoreCmd.Flags().StringP("output", "o", "", "write the ranked report to this file instead of stdout")
	scoreCmd.Flags().IntP("workers", "w", defaultWorkers, "number of files processed in parallel")
	scoreCmd.Flags().StringSlice("skip-step", nil, "screening steps to skip (failed, minimum_score, required_skills_all)")
	scoreCmd.MarkFlagRequired("job")
}

func runScore(cmd *cobra.Command, args []string) error {
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

	jobFile, _ := cmd.Flags().GetString("job")
	job, err := scoring.LoadJob(jobFile)
	if err != nil {
		logger.Fatal("loading the job", zap.Error(err), zap.String("path", jobFile))
	}

	weights := scoring.WeightsFromMap(config.Scoring.Weights)
	engine := scoring.NewEngine(job, weights)

	logger.Info("starting the scoring",
		zap.String("version", version),
		zap.String("job", job.Title),
		zap.Int("files", len(args)),
		zap.Any("weights", weights),
	)

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

	scoreCandidates(engine, candidates)

	steps := screening.Defaults(
		config.Screening.DropFailed,
		config.Screening.MinimumScore,
		config.Screening.RequireAllSkills,
		logger,
	)
	skipped, _ := cmd.Flags().GetStringSlice("skip-step")
	skipSteps(steps, skipped)
	logger.Debug("screening steps", zap.String("steps", screening.Summary(screening.Describe(steps))))

	left, err := screening.Run(ctx, logger, steps, &screening.Candidates{Items: candidates})
	if err != nil {
		return fmt.Errorf("screening candidates: %w", err)
	}

	if left.Len() == 0 {
		logger.Info("no candidates left after screening")
	}

	report := screening.NewReport(engine, steps, left)

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := report.WriteFile(output); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", zap.String("filename", output), zap.Int("candidates", left.Len()))
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func scoreCandidates(engine *scoring.Engine, candidates []*screening.Candidate) {
	for _, candidate := range candidates {
		candidate.Score = engine.CalculateTotalScore(candidate.Resume, candidate.Err)
		if candidate.Err == nil && candidate.Resume != nil {
			candidate.Years = engine.YearsOfExperience(candidate.Resume.Experience)
			candidate.MissingSkills = engine.MissingSkills(candidate.Resume.Skills)
		}
	}
}

func skipSteps(steps []screening.Filter, names []string) {
	for _, name := range names {
		screening.DisableByName(steps, strings.TrimSpace(name), skipFlagSetMsg)
	}
}
