package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-screener/internal/ai/gemini"
	"github.com/spigell/cv-screener/internal/cache"
	"github.com/spigell/cv-screener/internal/scoring"
)

const (
	app = "cv-screener"
)

type Config struct {
	Cache     *CacheConfig     `mapstructure:"cache"`
	AI        *AIConfig        `mapstructure:"ai"`
	Scoring   *ScoringConfig   `mapstructure:"scoring"`
	Screening *ScreeningConfig `mapstructure:"screening"`
}

type CacheConfig struct {
	Backend string             `mapstructure:"backend"`
	Dir     string             `mapstructure:"dir"`
	Redis   *cache.RedisConfig `mapstructure:"redis"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string        `mapstructure:"api-key-file"`
	APIKey       string        `mapstructure:"api-key" json:"-"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base-url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type ScoringConfig struct {
	// Weights accepts skills, experience and education. Other keys are ignored.
	Weights map[string]float64 `mapstructure:"weights"`
}

type ScreeningConfig struct {
	MinimumScore     float64 `mapstructure:"minimum-score"`
	DropFailed       bool    `mapstructure:"drop-failed"`
	RequireAllSkills bool    `mapstructure:"require-all-skills"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-screener extracts structured data from resumes and scores them against a job",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("cache.dir", "CV_SCREENER_CACHE_DIR"); err != nil {
		log.Fatalf("binding CV_SCREENER_CACHE_DIR environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.backend", backendFile)
	v.SetDefault("cache.dir", defaultCacheDir)
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.gemini.timeout", gemini.DefaultTimeout)
	v.SetDefault("scoring.weights", map[string]any{
		"skills":     scoring.DefaultWeights.Skills,
		"experience": scoring.DefaultWeights.Experience,
		"education":  scoring.DefaultWeights.Education,
	})
}

func initConfig() {
	// Version does not need a config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads an explicit config file or the optional default one from the current directory.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.Screening == nil {
		config.Screening = &ScreeningConfig{}
	}

	return config, nil
}
