package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gesture-logger/models"
	"gesture-logger/utils"
)

func TestCreateSessionLog_TruncatesExisting(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	dir := filepath.Join(base, "Test Folder")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.txt"), []byte("old session\n"), 0o644))

	l, err := CreateSessionLog(base, "Test Folder", "sample.txt", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSessionLog_AppendRecord(t *testing.T) {
	t.Parallel()
	clock := utils.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	l, err := CreateSessionLog(t.TempDir(), "logs", "sample.txt", clock)
	require.NoError(t, err)

	clock.Advance(3*time.Second + 250*time.Millisecond)
	rec := models.LogRecord{
		Participant: 1,
		Elapsed:     l.Elapsed(),
		Features: []models.FeatureConfidence{
			{Name: "HeadBackward", Confidence: 0.5},
			{Name: "CrossedArms", Confidence: 0.25},
		},
	}
	require.NoError(t, l.Append(rec.Text()))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, "1-00:00:03.2500000\nHeadBackward 0.500\nCrossedArms 0.250\n", string(data))

	appends, failures := l.Stats()
	assert.Equal(t, uint64(1), appends)
	assert.Zero(t, failures)
}

func TestSessionLog_ConcurrentAppendsNeverInterleave(t *testing.T) {
	t.Parallel()
	l, err := CreateSessionLog(t.TempDir(), "logs", "sample.txt", nil)
	require.NoError(t, err)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				var b strings.Builder
				fmt.Fprintf(&b, "BEGIN %d-%d\n", w, i)
				for k := 0; k < 19; k++ {
					fmt.Fprintf(&b, "w%d line %d\n", w, k)
				}
				b.WriteString("END\n")
				assert.NoError(t, l.Append(b.String()))
			}
		}(w)
	}
	wg.Wait()

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, writers*perWriter*21)

	for i := 0; i < len(lines); i += 21 {
		require.True(t, strings.HasPrefix(lines[i], "BEGIN "), "line %d: %q", i, lines[i])
		var w, n int
		_, err := fmt.Sscanf(lines[i], "BEGIN %d-%d", &w, &n)
		require.NoError(t, err)
		for k := 0; k < 19; k++ {
			require.Equal(t, fmt.Sprintf("w%d line %d", w, k), lines[i+1+k])
		}
		require.Equal(t, "END", lines[i+20])
	}
}

func TestSessionLog_FailureIsCountedAndRetried(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	l, err := CreateSessionLog(base, "logs", "sample.txt", nil)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(base, "logs")))
	assert.Error(t, l.Append("lost\n"))
	_, failures := l.Stats()
	assert.Equal(t, uint64(1), failures)

	// the next attempt retries from scratch once the folder is back
	require.NoError(t, os.MkdirAll(filepath.Join(base, "logs"), 0o755))
	require.NoError(t, l.Append("kept\n"))
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, "kept\n", string(data))
}
