package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/masomo-ar/core/sharecode"
)

// CreateCode stores a share code directly in a repository, bypassing the
// service tiers. An optional createdAt shifts both timestamps.
func CreateCode(
	t *testing.T,
	repo sharecode.Repository,
	code, assetURL, title string,
	kind sharecode.Kind,
	createdAt ...time.Time,
) sharecode.Code {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	c := sharecode.Code{
		Code: code,
		Payload: sharecode.Payload{
			AssetURL: assetURL,
			Title:    title,
			Kind:     kind,
		},
		CreatedAt: tstamp,
		ExpiresAt: tstamp.Add(kind.TTL()),
	}
	if err := repo.SaveCode(context.Background(), c); err != nil {
		t.Fatalf("CreateCode() failed: %v", err)
	}
	return c
}

// WaitFor polls cond until it holds or the deadline passes. Used to observe
// the outcome of fire-and-forget goroutines.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("WaitFor() condition not met within %v", timeout)
}

// Logger records every logged message; safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, msg)
}

func (l *Logger) Logged() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := make([]string, len(l.Messages))
	copy(msgs, l.Messages)
	return msgs
}

func (l *Logger) Enable(enabled bool)                   {}
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log(msg) }
