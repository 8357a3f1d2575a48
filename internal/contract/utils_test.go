package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.csv")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})

	t.Run("previous file is replaced", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "previous.csv")
		require.NoError(t, os.WriteFile(tempFile, []byte("stale content"), 0o644))

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		_ = file.Close()

		data, err := os.ReadFile(tempFile)
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestRemoveExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, RemoveExisting(filepath.Join(dir, "missing.json")))

	existing := filepath.Join(dir, "existing.json")
	require.NoError(t, os.WriteFile(existing, []byte("[]"), 0o644))
	require.NoError(t, RemoveExisting(existing))
	_, err := os.Stat(existing)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		ext      string
		expected string
	}{
		{"appends missing extension", "report", ".csv", "report.csv"},
		{"keeps existing extension", "report.csv", ".csv", "report.csv"},
		{"case insensitive match", "REPORT.JSON", ".json", "REPORT.JSON"},
		{"no extension for text", "report", "", "report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnsureExtension(tt.input, tt.ext))
		})
	}
}

func TestDBFilePaths(t *testing.T) {
	cachePath := GetCacheDBFilePath()
	historyPath := GetHistoryDBFilePath()
	assert.True(t, strings.HasSuffix(cachePath, ".glexport_cache.db"))
	assert.True(t, strings.HasSuffix(historyPath, ".glexport_history.db"))
	assert.NotEqual(t, cachePath, historyPath)
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		wantErr  bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTypedErrors(t *testing.T) {
	cause := errors.New("connection refused")
	fetchErr := &FetchError{URL: "https://gitlab.example.com/api/v4/groups", Err: cause}
	wrapped := fmt.Errorf("collecting groups: %w", fetchErr)

	var target *FetchError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, fetchErr.URL, target.URL)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, fetchErr.Error(), "connection refused")

	withStatus := &FetchError{URL: "/groups", Status: 404, Err: errors.New("Not Found")}
	assert.Contains(t, withStatus.Error(), "status 404")

	notFound := &FetchError{URL: "/projects/1/repository/commits", Err: ErrProjectNotFound}
	assert.True(t, errors.Is(notFound, ErrProjectNotFound))

	assert.Equal(t, "no groups found", (&EmptyResultError{Collection: "groups"}).Error())
	assert.Equal(t, "no authors selected", (&SelectionError{Label: "authors"}).Error())
	assert.Contains(t, (&ConfigError{Field: "gitlab-token", Msg: "missing"}).Error(), "gitlab-token")
}
