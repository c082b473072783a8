package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"zookeeper/internal/infra/persistence/memory"
	"zookeeper/pkg/domain"
)

func fixtureAnimals() []domain.Animal {
	return []domain.Animal{
		{ID: "0", Name: "Erica", Species: "gorilla", Diet: "omnivore", PersonalityTraits: []string{"quirky", "rash"}},
		{ID: "1", Name: "Noel", Species: "bear", Diet: "carnivore", PersonalityTraits: []string{"impish", "sassy", "brave"}},
		{ID: "2", Name: "Jacob", Species: "gorilla", Diet: "herbivore", PersonalityTraits: []string{"anxious", "goofy"}},
		{ID: "3", Name: "Felicia", Species: "bear", Diet: "omnivore", PersonalityTraits: []string{"hungry", "quirky", "rash"}},
		{ID: "4", Name: "Midnight", Species: "penguin", Diet: "carnivore", PersonalityTraits: []string{"brave", "rash"}},
	}
}

var errDiskFull = errors.New("disk full")

// flakyBackend wraps a memory backend and fails saves while failSaves is set.
type flakyBackend struct {
	*memory.Store
	mu        sync.Mutex
	failSaves bool
	failLoad  bool
	closed    bool
}

func newFlakyBackend(animals ...domain.Animal) *flakyBackend {
	return &flakyBackend{Store: memory.NewStore(animals...)}
}

func (f *flakyBackend) setFailSaves(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaves = v
}

func (f *flakyBackend) Load(ctx context.Context) (domain.Snapshot, error) {
	if f.failLoad {
		return domain.Snapshot{}, errDiskFull
	}
	return f.Store.Load(ctx)
}

func (f *flakyBackend) Save(ctx context.Context, s domain.Snapshot) error {
	f.mu.Lock()
	fail := f.failSaves
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.Store.Save(ctx, s)
}

func (f *flakyBackend) Close() error {
	f.closed = true
	return nil
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	mu      sync.Mutex
	calls   []metricsCall
	animals int
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) SetAnimals(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.animals = n
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *captureLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }

func (l *captureLogger) contains(fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.Contains(e, fragment) {
			return true
		}
	}
	return false
}
