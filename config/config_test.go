//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sk-test", s.OpenAIAPIKey)
	require.Equal(t, "gpt-4", s.OpenAIModel)
	require.Equal(t, 5*time.Minute, s.CacheTTL())
	require.Equal(t, 10*time.Second, s.RequestTimeout())
	require.True(t, s.Verbose)
	require.True(t, s.SemanticCache.Enabled)
	require.Equal(t, 0.85, s.SemanticCache.SimilarityThreshold)
	require.Equal(t, 1000, s.SemanticCache.MaxCacheSize)
	require.Equal(t, time.Hour, s.SemanticCache.TTL())
	require.Equal(t, "semantic_cache.json", s.SemanticCache.FilePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("NEWSAPI_KEY", "news-key")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("VERBOSE", "false")
	t.Setenv("SEMANTIC_CACHE_ENABLED", "false")
	t.Setenv("SEMANTIC_CACHE_THRESHOLD", "0.9")
	t.Setenv("HISTORY_DB_PATH", "/tmp/history.db")

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", s.OpenAIModel)
	require.Equal(t, "news-key", s.NewsAPIKey)
	require.Equal(t, time.Minute, s.CacheTTL())
	require.Equal(t, 5*time.Second, s.RequestTimeout())
	require.False(t, s.Verbose)
	require.False(t, s.SemanticCache.Enabled)
	require.Equal(t, 0.9, s.SemanticCache.SimilarityThreshold)
	require.Equal(t, "/tmp/history.db", s.HistoryDBPath)
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openai_api_key: sk-from-file
openai_model: gpt-4-turbo
cache_ttl_seconds: 120
semantic_cache:
  enabled: true
  similarity_threshold: 0.8
  file_path: /tmp/sem.json
`), 0o644))

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	s, err := Load(path)
	require.NoError(t, err)
	// File fills what the environment leaves unset; env wins otherwise.
	require.Equal(t, "sk-from-file", s.OpenAIAPIKey)
	require.Equal(t, "gpt-4o-mini", s.OpenAIModel)
	require.Equal(t, 2*time.Minute, s.CacheTTL())
	require.Equal(t, 0.8, s.SemanticCache.SimilarityThreshold)
	require.Equal(t, "/tmp/sem.json", s.SemanticCache.FilePath)
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CACHE_TTL", "not-a-number")

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, s.CacheTTL())
}
