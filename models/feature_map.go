package models

import (
	"fmt"
	"math"
	"sync/atomic"
)

// FeatureConfidence is one entry of a FeatureMap snapshot.
type FeatureConfidence struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

// FeatureMap holds the latest confidence per known gesture. The key set is
// fixed at construction; values are stored as atomic float32 bits so gesture
// callbacks and the logger never need a shared lock.
type FeatureMap struct {
	names  [GestureCount]string
	index  map[string]int // read-only after construction
	values [GestureCount]atomic.Uint32
}

// NewFeatureMap builds a map over labels, or over KnownGestures when labels is empty.
// Every value starts at 0.
func NewFeatureMap(labels []string) (*FeatureMap, error) {
	if len(labels) == 0 {
		labels = KnownGestures[:]
	}
	if len(labels) != GestureCount {
		return nil, fmt.Errorf("feature map needs %d labels, got %d", GestureCount, len(labels))
	}
	m := &FeatureMap{index: make(map[string]int, GestureCount)}
	for i, name := range labels {
		if name == "" {
			return nil, fmt.Errorf("feature label %d is empty", i)
		}
		if _, dup := m.index[name]; dup {
			return nil, fmt.Errorf("duplicate feature label %q", name)
		}
		m.names[i] = name
		m.index[name] = i
	}
	return m, nil
}

// Set stores the confidence for name, clamped to [0,1]. Unknown names are
// ignored and reported with false.
func (m *FeatureMap) Set(name string, confidence float32) bool {
	i, ok := m.index[name]
	if !ok {
		return false
	}
	m.values[i].Store(math.Float32bits(clampUnit(confidence)))
	return true
}

// Get returns the confidence for name.
func (m *FeatureMap) Get(name string) (float32, bool) {
	i, ok := m.index[name]
	if !ok {
		return 0, false
	}
	return math.Float32frombits(m.values[i].Load()), true
}

// Len is always GestureCount.
func (m *FeatureMap) Len() int { return len(m.names) }

// Keys returns the labels in declaration order.
func (m *FeatureMap) Keys() []string {
	out := make([]string, len(m.names))
	copy(out, m.names[:])
	return out
}

// Snapshot copies every entry in declaration order.
func (m *FeatureMap) Snapshot() []FeatureConfidence {
	out := make([]FeatureConfidence, len(m.names))
	for i, name := range m.names {
		out[i] = FeatureConfidence{Name: name, Confidence: math.Float32frombits(m.values[i].Load())}
	}
	return out
}

func clampUnit(v float32) float32 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
