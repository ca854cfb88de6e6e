package log

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

// memTransporter collects entries in memory.
type memTransporter struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	closed  bool
}

func (m *memTransporter) Name() string { return "mem" }

func (m *memTransporter) Write(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

func (m *memTransporter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memTransporter) all() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// blockingTransporter holds the worker until release is closed.
type blockingTransporter struct {
	memTransporter
	release chan struct{}
}

func (b *blockingTransporter) Write(e Entry) error {
	<-b.release
	return b.memTransporter.Write(e)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{" warn ", Warn, false},
		{"warning", Warn, false},
		{"Error", Error, false},
		{"fatal", Fatal, false},
		{"trace", Trace, false},
		{"verbose", Info, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	var l Level
	if err := l.UnmarshalText([]byte("debug")); err != nil || l != Debug {
		t.Errorf("UnmarshalText(debug) = %v, %v", l, err)
	}
	if err := l.UnmarshalText([]byte("loud")); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("UnmarshalText(loud) error = %v", err)
	}
}

func TestLevel_String(t *testing.T) {
	if Warn.String() != "WARN" {
		t.Errorf("Warn.String() = %q", Warn.String())
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}

func TestEntry_MarshalJSON_FlattensFields(t *testing.T) {
	// Arrange
	e := NewEntry(Error, "boom").With("source", "embed", "error", errors.New("HTTP 500"), 7, "ignored", "dangling")
	e.Caller = "x.go:1"

	// Act
	data, err := json.Marshal(e)

	// Assert
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	_ = json.Unmarshal(data, &got)
	if got["source"] != "embed" || got["error"] != "HTTP 500" || got["caller"] != "x.go:1" {
		t.Errorf("unexpected JSON %s", data)
	}
	if _, ok := got["request_id"]; ok {
		t.Error("empty request_id should be omitted")
	}
	if _, ok := got["dangling"]; ok {
		t.Error("key without value should be ignored")
	}
}

func TestEntry_MarshalJSON_ReservedKeysWin(t *testing.T) {
	e := NewEntry(Info, "real").With("msg", "spoofed")

	data, _ := json.Marshal(e)

	if !strings.Contains(string(data), `"msg":"real"`) {
		t.Errorf("msg should not be overridden by fields: %s", data)
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	// Arrange
	mem := &memTransporter{}
	l := New(Warn, mem)

	// Act
	l.Info("hidden")
	l.Warn("shown")
	l.SetLevel(Debug)
	l.Debug("now shown")
	l.Close()

	// Assert
	entries := mem.all()
	if len(entries) != 2 || entries[0].Message != "shown" || entries[1].Message != "now shown" {
		t.Errorf("entries = %+v", entries)
	}
	if !mem.closed {
		t.Error("Close should close transporters")
	}
}

func TestLogger_CtxMergesRequestIDAndFields(t *testing.T) {
	// Arrange
	mem := &memTransporter{}
	l := New(Info, mem).With("service", "postcard", "handle", "base")
	ctx := WithRequestID(context.Background(), "req-9")
	ctx = WithFields(ctx, "handle", "acme")
	ctx = WithFields(ctx, "post_id", "42")

	// Act
	l.InfoCtx(ctx, "resolved", "source", "embed")
	l.Close()

	// Assert
	entries := mem.all()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.RequestID != "req-9" {
		t.Errorf("RequestID = %q", e.RequestID)
	}
	want := map[string]any{"service": "postcard", "handle": "acme", "post_id": "42", "source": "embed"}
	for k, v := range want {
		if e.Fields[k] != v {
			t.Errorf("field %s = %v, want %v", k, e.Fields[k], v)
		}
	}
	if !strings.HasPrefix(e.Caller, "log_test.go:") {
		t.Errorf("Caller = %q", e.Caller)
	}
}

func TestGlobal_DefaultDiscardsUntilSet(t *testing.T) {
	// Arrange
	mem := &memTransporter{}
	GlobalInfo("dropped")
	SetDefault(New(Info, mem))
	defer SetDefault(nil)

	// Act
	GlobalWarnCtx(WithRequestID(context.Background(), "g-1"), "kept")
	Default().Close()

	// Assert
	entries := mem.all()
	if len(entries) != 1 || entries[0].Message != "kept" || entries[0].RequestID != "g-1" {
		t.Errorf("entries = %+v", entries)
	}
	if !strings.HasPrefix(entries[0].Caller, "log_test.go:") {
		t.Errorf("Caller = %q, want the test file", entries[0].Caller)
	}
}

func TestBuffer_DropsOldestWhenFull(t *testing.T) {
	// Arrange
	bt := &blockingTransporter{release: make(chan struct{})}
	b := NewBuffer(2, bt)

	// Act
	for i := 0; i < 10; i++ {
		b.Send(*NewEntry(Info, "m"))
	}
	close(bt.release)
	b.Close()

	// Assert
	if b.DroppedCount() == 0 {
		t.Error("expected dropped entries")
	}
	if got := int64(len(bt.all())) + b.DroppedCount(); got != 10 {
		t.Errorf("delivered + dropped = %d, want 10", got)
	}
}

func TestBuffer_SendAfterClose_Ignored(t *testing.T) {
	mem := &memTransporter{}
	b := NewBuffer(4, mem)
	b.Close()
	b.Close()

	b.Send(*NewEntry(Info, "late"))

	if len(mem.all()) != 0 {
		t.Error("entries sent after Close should be ignored")
	}
}

func TestBuffer_TransporterErrorFallsBack(t *testing.T) {
	// Arrange
	var fallback strings.Builder
	mem := &memTransporter{err: errors.New("disk full")}
	b := NewBuffer(4, mem)
	b.fallback = &fallback

	// Act
	b.Send(*NewEntry(Error, "x"))
	b.Close()

	// Assert
	if !strings.Contains(fallback.String(), `"mem" failed: disk full`) {
		t.Errorf("fallback output = %q", fallback.String())
	}
}

func TestBuffer_ConcurrentSend(t *testing.T) {
	mem := &memTransporter{}
	b := NewBuffer(1000, mem)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.Send(*NewEntry(Info, "c"))
			}
		}()
	}
	wg.Wait()
	b.Close()

	if got := int64(len(mem.all())) + b.DroppedCount(); got != 500 {
		t.Errorf("delivered + dropped = %d, want 500", got)
	}
}
