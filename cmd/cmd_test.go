package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/ai/gemini"
	"github.com/spigell/cv-screener/internal/cache"
	"github.com/spigell/cv-screener/internal/pipeline"
	"github.com/spigell/cv-screener/internal/resume"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/screening"
)

func configFrom(t *testing.T, content string) *Config {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(content)))

	config, err := decodeConfig(v)
	require.NoError(t, err)
	return config
}

func TestDecodeConfigDefaults(t *testing.T) {
	config := configFrom(t, "")

	assert.Equal(t, backendFile, config.Cache.Backend)
	assert.Equal(t, defaultCacheDir, config.Cache.Dir)
	assert.Equal(t, providerGemini, config.AI.Provider)
	assert.Equal(t, gemini.DefaultTimeout, config.AI.Gemini.Timeout)
	assert.Equal(t, scoring.DefaultWeights, scoring.WeightsFromMap(config.Scoring.Weights))
	assert.Zero(t, config.Screening.MinimumScore)
}

func TestDecodeConfigFromFile(t *testing.T) {
	config := configFrom(t, `
cache:
  backend: redis
  redis:
    address: localhost:6379
    db: 2
ai:
  gemini:
    api-key-file: /run/secrets/gemini
    model: gemini-2.5-pro
    timeout: 30s
    max-log-length: 50
scoring:
  weights:
    skills: 0.7
    experience: 0.2
    education: 0.1
screening:
  minimum-score: 40
  drop-failed: true
`)

	assert.Equal(t, backendRedis, config.Cache.Backend)
	require.NotNil(t, config.Cache.Redis)
	assert.Equal(t, "localhost:6379", config.Cache.Redis.Address)
	assert.Equal(t, 2, config.Cache.Redis.DB)
	assert.Equal(t, "/run/secrets/gemini", config.AI.Gemini.APIKeyFile)
	assert.Equal(t, "gemini-2.5-pro", config.AI.Gemini.Model)
	assert.Equal(t, 30*time.Second, config.AI.Gemini.Timeout)
	assert.Equal(t, 50, config.AI.Gemini.MaxLogLength)
	assert.Equal(t, scoring.Weights{Skills: 0.7, Experience: 0.2, Education: 0.1}, scoring.WeightsFromMap(config.Scoring.Weights))
	assert.Equal(t, 40.0, config.Screening.MinimumScore)
	assert.True(t, config.Screening.DropFailed)
	assert.False(t, config.Screening.RequireAllSkills)
}

func TestReadConfigWithoutDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.NoError(t, readConfig(viper.New(), ""))
	assert.Error(t, readConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	store, release, err := newStore(ctx, &CacheConfig{Dir: t.TempDir()}, log)
	require.NoError(t, err)
	release()
	assert.IsType(t, &cache.FileStore{}, store)

	_, _, err = newStore(ctx, &CacheConfig{Backend: "memcached"}, log)
	assert.ErrorContains(t, err, "unsupported cache backend")

	_, _, err = newStore(ctx, &CacheConfig{Backend: backendRedis}, log)
	assert.Error(t, err)
}

func TestFileStoreRejectsRedisBackend(t *testing.T) {
	_, err := fileStore(&CacheConfig{Backend: backendRedis})
	assert.ErrorIs(t, err, errNotFileBackend)

	store, err := fileStore(&CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, defaultCacheDir, store.Dir)
}

func TestNewExtractor(t *testing.T) {
	t.Setenv(geminiAPIKeyEnv, "")
	ctx := context.Background()
	log := zap.NewNop()

	_, err := newExtractor(ctx, &AIConfig{Provider: "openai", Gemini: &GeminiConfig{}}, log)
	assert.ErrorContains(t, err, "unsupported ai provider")

	_, err = newExtractor(ctx, &AIConfig{Gemini: &GeminiConfig{}}, log)
	assert.ErrorContains(t, err, "gemini api key is not configured")

	extractor, err := newExtractor(ctx, &AIConfig{Gemini: &GeminiConfig{APIKey: "inline", BaseURL: "http://127.0.0.1:1"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Extractor{}, extractor)
}

type fakeProcessor struct {
	docs map[string]*pipeline.Document
}

func (f *fakeProcessor) ProcessDocument(_ context.Context, path string) (*pipeline.Document, error) {
	doc, ok := f.docs[path]
	if !ok {
		return nil, ai.Extraction(path, nil)
	}
	return doc, nil
}

func TestProcessFilesKeepsOrderAndErrors(t *testing.T) {
	p := &fakeProcessor{docs: map[string]*pipeline.Document{
		"a.pdf":  {Path: "a.pdf", Digest: "aa", Resume: &resume.Resume{Name: "A"}},
		"b.docx": {Path: "b.docx", Digest: "bb", Resume: &resume.Resume{Name: "B"}, FromCache: true},
	}}

	candidates, err := processFiles(context.Background(), p, []string{"b.docx", "missing.pdf", "a.pdf"}, 3)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "b.docx", candidates[0].Path)
	assert.True(t, candidates[0].FromCache)
	assert.Equal(t, "B", candidates[0].Resume.Name)

	assert.Equal(t, "missing.pdf", candidates[1].Path)
	assert.EqualError(t, candidates[1].Err, "Could not extract text from file: missing.pdf")
	assert.Nil(t, candidates[1].Resume)

	assert.Equal(t, "aa", candidates[2].Digest)
}

func TestProcessFilesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processFiles(ctx, &fakeProcessor{}, []string{"a.pdf"}, 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScoreCandidates(t *testing.T) {
	engine := scoring.NewEngine(&scoring.Job{RequiredSkills: []string{"Go", "SQL"}}, scoring.Weights{Skills: 1})
	candidates := []*screening.Candidate{
		{Path: "a.pdf", Resume: &resume.Resume{Skills: []string{"go"}}},
		{Path: "b.pdf", Err: ai.ErrEmptyText},
	}

	scoreCandidates(engine, candidates)

	assert.Equal(t, 50.0, candidates[0].Score.TotalScore)
	assert.Zero(t, candidates[0].Years)
	assert.Equal(t, []string{"SQL"}, candidates[0].MissingSkills)
	assert.Equal(t, "CV text is empty.", candidates[1].Score.Error)
	assert.Nil(t, candidates[1].MissingSkills)
}

func TestSkipSteps(t *testing.T) {
	steps := screening.Defaults(true, 50, true, nil)

	skipSteps(steps, []string{" minimum_score", "unknown"})

	statuses := screening.Describe(steps)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Enabled)
	assert.False(t, statuses[1].Enabled)
	assert.Equal(t, skipFlagSetMsg, statuses[1].Reason)
	assert.True(t, statuses[2].Enabled)
}

func TestScoreCandidatesRecordsYears(t *testing.T) {
	engine := scoring.NewEngine(&scoring.Job{}, scoring.DefaultWeights)
	candidates := []*screening.Candidate{
		{Path: "a.pdf", Resume: &resume.Resume{Experience: []resume.Experience{{Duration: "2015 - 2018"}}}},
	}

	scoreCandidates(engine, candidates)

	assert.Equal(t, 3.0, candidates[0].Years)
}
