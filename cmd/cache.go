package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/cache"
	"github.com/spigell/cv-screener/internal/logger"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errNotFileBackend = errors.New("only the file cache backend can be listed or purged")

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the extraction cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached extraction results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, _ := fileStoreFromConfig()

		entries, err := store.List()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every cached extraction result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, logger := fileStoreFromConfig()

		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			logger.Info("cache is empty", zap.String("dir", store.Dir))
			return nil
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			prompt := promptui.Select{
				Label: fmt.Sprintf("Remove %d cached entries from %s?", len(entries), store.Dir),
				Items: []string{PromptNo, PromptYes},
			}
			_, answer, err := prompt.Run()
			if err != nil {
				return err
			}
			if answer != PromptYes {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return nil
			}
		}

		removed, err := store.Purge()
		if err != nil {
			return err
		}

		logger.Info("cache purged", zap.String("dir", store.Dir), zap.Int("removed", removed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)

	cachePurgeCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func fileStoreFromConfig() (*cache.FileStore, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := fileStore(config.Cache)
	if err != nil {
		logger.Fatal("opening cache", zap.Error(err))
	}

	return store, logger
}

func fileStore(cfg *CacheConfig) (*cache.FileStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend != "" && backend != backendFile {
		return nil, fmt.Errorf("%w: %s", errNotFileBackend, cfg.Backend)
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = defaultCacheDir
	}
	return cache.NewFileStore(dir)
}
