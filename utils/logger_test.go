package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, WARN, ParseLogLevel(" warning "))
	assert.Equal(t, INFO, ParseLogLevel("verbose"))
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestSetLogger(t *testing.T) {
	prev := L().Sugar()
	defer SetLogger(prev)

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core).Sugar())
	L().Info("opened %s", "sensor")
	L().Debug("hidden")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "opened sensor", entries[0].Message)
	}

	SetLogger(nil)
	assert.NotPanics(t, func() { L().Error("discarded") })
}

func TestL_ConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Logger, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				got[i] = InitLogger(INFO, "")
			} else {
				got[i] = L()
			}
		}(i)
	}
	wg.Wait()
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}
