package analyzer

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/tl/afv/pkg/parser"
)

const testDump = `Notification Clients:
   pid    uid  name
 30548  10553  com.salt.music
 12001  10210  com.example.podcast
Global session refs:

Output thread 0x7a2c0c1740, name AudioOut_D, tid 1512, type 0 (MIXER):
  Standby: no
  3 Tracks of which 3 are active
Type     Id Active Client Session Port Id S  Flags   Format Chn mask  SRate
7      yes   30548    89     41 A  0x000 00000001 00000003  48000
9      yes   30548    90     42 A  0x000 00000001 00000003  44100
12     yes   12001    97     45 A  0x000 00000001 00000003  48000

`

func TestNewAnalyzer(t *testing.T) {
	if a := NewAnalyzer(); a == nil {
		t.Fatal("NewAnalyzer() returned nil")
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer()

	result, err := a.Analyze(context.Background(), "test.txt", testDump)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.IsFailure() {
		t.Fatalf("IsFailure() = true, want false")
	}
	if len(result.Snapshot.Tracks) != 3 {
		t.Errorf("got %d tracks, want 3", len(result.Snapshot.Tracks))
	}
	if len(result.Clients) != 2 {
		t.Errorf("got %d clients, want 2", len(result.Clients))
	}

	md := result.Metadata
	if md.Source != "test.txt" {
		t.Errorf("Source = %q, want test.txt", md.Source)
	}
	if md.Pass != parser.PassStructured {
		t.Errorf("Pass = %q, want structured", md.Pass)
	}
	if md.Threads != 1 {
		t.Errorf("Threads = %d, want 1", md.Threads)
	}
	if md.CaptureID == "" {
		t.Error("CaptureID is empty")
	}
	if md.LinesProcessed != strings.Count(testDump, "\n") {
		t.Errorf("LinesProcessed = %d, want %d", md.LinesProcessed, strings.Count(testDump, "\n"))
	}
	if md.EndTime.Before(md.StartTime) {
		t.Error("EndTime before StartTime")
	}
}

func TestAnalyzer_Sentinel(t *testing.T) {
	a := NewAnalyzer()

	result, err := a.Analyze(context.Background(), "device", "Shizuku服务未运行")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !result.IsFailure() {
		t.Fatal("IsFailure() = false, want true")
	}
	if result.Failure != "Shizuku服务未运行" {
		t.Errorf("Failure = %q, want sentinel verbatim", result.Failure)
	}
	if result.Snapshot != nil {
		t.Error("Snapshot should be nil for channel failures")
	}
}

func TestAnalyzer_WithAppFilter(t *testing.T) {
	a := NewAnalyzer(WithAppFilter([]string{"com.example.podcast"}))

	result, err := a.Analyze(context.Background(), "test.txt", testDump)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(result.Snapshot.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(result.Snapshot.Tracks))
	}
	if result.Snapshot.Tracks[0].ApplicationID != "com.example.podcast" {
		t.Errorf("ApplicationID = %q", result.Snapshot.Tracks[0].ApplicationID)
	}
}

func TestAnalyzer_WithGrammar(t *testing.T) {
	g := parser.DefaultGrammar()
	g.Markers.ThreadDelimiter = "Playback thread"

	raw := strings.Replace(testDump, "Output thread", "Playback thread", 1)
	a := NewAnalyzer(WithGrammar(g))

	result, err := a.Analyze(context.Background(), "vendor.txt", raw)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Metadata.Pass != parser.PassStructured {
		t.Errorf("Pass = %q, want structured", result.Metadata.Pass)
	}
}

func TestAnalyzer_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := NewAnalyzer(WithLogger(logger))
	if _, err := a.Analyze(context.Background(), "test.txt", testDump); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "found client") || !strings.Contains(out, "found active track") {
		t.Errorf("debug log missing client/track entries:\n%s", out)
	}
}

func TestAnalyzer_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewAnalyzer().Analyze(ctx, "test.txt", testDump); err != context.Canceled {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyzer_NoTracks(t *testing.T) {
	result, err := NewAnalyzer().Analyze(context.Background(), "empty.txt", "nothing here\n")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.HasTracks() {
		t.Error("HasTracks() = true, want false")
	}
	if result.Metadata.Pass != parser.PassNone {
		t.Errorf("Pass = %q, want none", result.Metadata.Pass)
	}
	if result.Raw != "nothing here\n" {
		t.Errorf("Raw = %q", result.Raw)
	}
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(testDump)
	second := Parse(testDump)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() not idempotent:\n%+v\n%+v", first, second)
	}
}
