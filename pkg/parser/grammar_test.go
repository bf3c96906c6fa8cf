package parser

import (
	"strings"
	"testing"
)

func TestClientRow(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantOK  bool
		wantPID string
		wantApp string
	}{
		{"package row", " 30548  10553  com.salt.music", true, "30548", "com.salt.music"},
		{"system uid row", "  2345   1000  android.uid.system", true, "2345", "android.uid.system"},
		{"bare name", "  1190   1041  audioserver", true, "1190", "audioserver"},
		{"column titles", "   pid    uid  name", false, "", ""},
		{"missing uid", " 30548  com.salt.music", false, "", ""},
		{"trailing junk", " 30548  10553  com.salt.music (dead)", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := ClientRow.Match(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if row["pid"] != tt.wantPID || row["app"] != tt.wantApp {
				t.Errorf("Match(%q) = pid %q app %q, want pid %q app %q",
					tt.line, row["pid"], row["app"], tt.wantPID, tt.wantApp)
			}
		})
	}
}

func TestActiveTrackRow(t *testing.T) {
	good := "7      yes   30548    89     41 A  0x000 00000001 00000003  48000  3   1  2"
	row, ok := ActiveTrackRow.Match(good)
	if !ok {
		t.Fatalf("Match(%q) did not match", good)
	}
	if row["track"] != "7" || row["pid"] != "30548" || row["rate"] != "48000" {
		t.Errorf("Match() = %v, want track 7 pid 30548 rate 48000", row)
	}

	bad := []string{
		"15     no    1190     101    46 I  0x000 00000001 00000003  48000",
		"Type     Id Active Client Session Port Id S  Flags   Format Chn mask  SRate",
		"  7      yes   30548    89     41 A  0x000 00000001 00000003  48000",
		"7      yes   30548    89     41 A  0xzz 00000001 00000003  48000",
	}
	for _, line := range bad {
		if _, ok := ActiveTrackRow.Match(line); ok {
			t.Errorf("Match(%q) matched, want no match", line)
		}
	}
}

func TestRelaxedTrackRow(t *testing.T) {
	indented := "   7      yes   30548    89     41 A  0x000 00000001 00000003  48000"
	if _, ok := ActiveTrackRow.Match(indented); ok {
		t.Fatalf("anchored pattern matched indented row")
	}
	row, ok := RelaxedTrackRow.Match(indented)
	if !ok {
		t.Fatalf("relaxed pattern did not match %q", indented)
	}
	if row["track"] != "7" {
		t.Errorf("track = %q, want 7", row["track"])
	}

	if _, ok := RelaxedTrackRow.Match("7 no 30548 89 41 A 0x000 00000001 00000003 48000"); ok {
		t.Errorf("relaxed pattern matched an inactive row")
	}
}

func TestRowPattern_FindAll(t *testing.T) {
	rows := RelaxedTrackRow.FindAll(sampleDump)
	if len(rows) != 3 {
		t.Fatalf("FindAll() returned %d rows, want 3", len(rows))
	}
	want := []string{"7", "12", "21"}
	for i, row := range rows {
		if row["track"] != want[i] {
			t.Errorf("rows[%d].track = %q, want %q", i, row["track"], want[i])
		}
	}
}

func TestNewRowPattern_Errors(t *testing.T) {
	if _, err := NewRowPattern("bad", `[invalid`); err == nil {
		t.Error("NewRowPattern() expected error for invalid regex")
	}

	_, err := NewRowPattern("client_row", `^(\d+)\s+(?P<app>\S+)$`, ClientRowGroups...)
	if err == nil {
		t.Fatal("NewRowPattern() expected error for missing pid group")
	}
	if !strings.Contains(err.Error(), "pid") {
		t.Errorf("error = %v, want mention of pid group", err)
	}
}

func TestMarkers_WithDefaults(t *testing.T) {
	m := Markers{Standby: "Standby: true"}.WithDefaults()
	if m.Standby != "Standby: true" {
		t.Errorf("Standby = %q, want override kept", m.Standby)
	}
	if m.ClientsStart != DefaultClientsStart {
		t.Errorf("ClientsStart = %q, want %q", m.ClientsStart, DefaultClientsStart)
	}
	if len(m.ColumnTitles) != 2 {
		t.Errorf("ColumnTitles = %v, want defaults", m.ColumnTitles)
	}
}
