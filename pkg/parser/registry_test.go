package parser

import (
	"strings"
	"testing"
)

func TestExtractClients(t *testing.T) {
	registry := ExtractClients(sampleDump)

	want := []ClientEntry{
		{PID: "1190", ApplicationID: "audioserver"},
		{PID: "30548", ApplicationID: "com.salt.music"},
		{PID: "12001", ApplicationID: "com.example.podcast"},
	}
	got := registry.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entries()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExtractClients_ExcludesSystemUIDs(t *testing.T) {
	registry := ExtractClients(sampleDump)
	if _, ok := registry.Lookup("2345"); ok {
		t.Error("android.uid.* client was registered")
	}
	for _, e := range registry.Entries() {
		if strings.HasPrefix(e.ApplicationID, "android.uid.") {
			t.Errorf("registry contains %v", e)
		}
	}
}

func TestExtractClients_NoSection(t *testing.T) {
	registry := ExtractClients("Output thread 0x1:\n  Standby: no\n")
	if registry.Len() != 0 {
		t.Errorf("Len() = %d, want 0", registry.Len())
	}
}

func TestExtractClients_StopsAtBlankLine(t *testing.T) {
	raw := "Notification Clients:\n 100  10001  com.first.app\n\n 200  10002  com.after.blank\n"
	registry := ExtractClients(raw)
	if registry.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", registry.Len())
	}
	if _, ok := registry.Lookup("200"); ok {
		t.Error("client after blank line was registered")
	}
}

func TestExtractClients_StopsAtEndMarker(t *testing.T) {
	raw := "Notification Clients:\n 100  10001  com.first.app\nGlobal session refs:\n 200  10002  com.after.end\n"
	registry := ExtractClients(raw)
	if _, ok := registry.Lookup("200"); ok {
		t.Error("client after end marker was registered")
	}
}

func TestExtractClients_LastWriteWins(t *testing.T) {
	raw := "Notification Clients:\n 100  10001  com.old.app\n 200  10002  com.other.app\n 100  10003  com.new.app  \n"
	registry := ExtractClients(raw)

	app, _ := registry.Lookup("100")
	if app != "com.new.app" {
		t.Errorf("Lookup(100) = %q, want com.new.app", app)
	}
	entries := registry.Entries()
	if len(entries) != 2 || entries[0].PID != "100" {
		t.Errorf("Entries() = %v, want pid 100 first", entries)
	}
}

func TestClientRegistry_Resolve(t *testing.T) {
	registry := NewClientRegistry()
	registry.Set("30548", "com.salt.music")

	if got := registry.Resolve("30548"); got != "com.salt.music" {
		t.Errorf("Resolve(30548) = %q", got)
	}
	if got := registry.Resolve("999"); got != "未知应用(pid:999)" {
		t.Errorf("Resolve(999) = %q, want placeholder", got)
	}

	var empty *ClientRegistry
	if got := empty.Resolve("1"); !IsPlaceholder(got) {
		t.Errorf("nil registry Resolve() = %q, want placeholder", got)
	}
}

func TestGrammar_ExtractClients_CustomMarkers(t *testing.T) {
	g := DefaultGrammar()
	g.Markers.ClientsStart = "Clients:"
	g.Markers.ExcludedAppPrefix = "vendor."

	raw := "Clients:\n 1  1000  vendor.hal\n 2  10001  com.app\n"
	registry := g.ExtractClients(raw)
	if registry.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", registry.Len())
	}
	if app, _ := registry.Lookup("2"); app != "com.app" {
		t.Errorf("Lookup(2) = %q, want com.app", app)
	}
}

func TestClientSection(t *testing.T) {
	g := DefaultGrammar()

	if got := g.ClientSection("no clients here"); got != nil {
		t.Errorf("ClientSection() = %q, want nil without marker", got)
	}

	section := g.ClientSection(sampleDump)
	if len(section) != 5 {
		t.Fatalf("ClientSection() returned %d lines, want 5", len(section))
	}
	if !strings.Contains(section[0], "pid") {
		t.Errorf("first line = %q, want column titles", section[0])
	}

	empty := g.ClientSection("Notification Clients:\nGlobal session refs:\n")
	if empty == nil || len(empty) != 0 {
		t.Errorf("ClientSection() = %q, want empty non-nil section", empty)
	}
}
