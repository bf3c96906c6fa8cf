package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format_SingleTrack(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport(t, scenarioDump)

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "=== 音频应用播放信息 ===\n" +
		"发现 1 个活跃音频轨道:\n" +
		"\n" +
		"应用包名: com.salt.music\n" +
		"进程PID: 30548\n" +
		"采样率: 48000 Hz\n" +
		"---\n" +
		"=== 统计信息 ===\n" +
		"使用的采样率: 48000 Hz\n" +
		"\n" +
		"应用使用统计:\n" +
		"  com.salt.music: 1 个活跃轨道\n"
	if got := buf.String(); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestTextFormatter_Format_NoTracksEchoesRaw(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport(t, standbyDump)

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "未找到活跃的音频轨道") {
		t.Error("Output missing no-tracks message")
	}
	if !strings.Contains(output, "=== 完整原始输出 ===\n"+standbyDump) {
		t.Error("Output missing raw dump")
	}
}

func TestTextFormatter_Format_Failure(t *testing.T) {
	for _, opts := range []FormatOptions{{}, {Quiet: true}, {Language: "en"}} {
		f := NewTextFormatter(opts)
		report := createTestReport(t, "Shizuku服务未运行")

		var buf bytes.Buffer
		if err := f.Format(context.Background(), report, &buf); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if buf.String() != "Shizuku服务未运行" {
			t.Errorf("Format(%+v) = %q, want sentinel verbatim", opts, buf.String())
		}
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(t, scenarioDump), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := buf.String(); got != "afv: 1 个活跃轨道, 1 个应用, 采样率 48000 Hz\n" {
		t.Errorf("Format() = %q", got)
	}

	buf.Reset()
	if err := f.Format(context.Background(), createTestReport(t, standbyDump), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "Output thread") {
		t.Error("quiet output should not echo raw dump")
	}
}

func TestTextFormatter_Format_VerboseEnglish(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true, Language: "en"})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(t, scenarioDump), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Found 1 active audio track(s):",
		"Track ID: 7",
		"Package: com.salt.music",
		"Source: test.txt",
		"Pass: structured",
		"Output threads: 1 (standby 0)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestTextFormatter_UnknownLanguageFallsBack(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Language: "fr"})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(t, scenarioDump), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "发现 1 个活跃音频轨道") {
		t.Error("unknown language should fall back to zh")
	}
}

func TestParseAndFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single track", scenarioDump, "发现 1 个活跃音频轨道"},
		{"placeholder", strings.Replace(scenarioDump, " 30548  10553  com.salt.music\n", "", 1), "应用包名: 未知应用(pid:30548)"},
		{"no tracks", standbyDump, "未找到活跃的音频轨道"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAndFormat(tt.raw); !strings.Contains(got, tt.want) {
				t.Errorf("ParseAndFormat() missing %q:\n%s", tt.want, got)
			}
		})
	}

	if got := ParseAndFormat("Shizuku服务未运行"); got != "Shizuku服务未运行" {
		t.Errorf("ParseAndFormat(sentinel) = %q, want sentinel verbatim", got)
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"", "text", "json"} {
		if _, err := NewFormatter(name, FormatOptions{}); err != nil {
			t.Errorf("NewFormatter(%q) error = %v", name, err)
		}
	}
	if _, err := NewFormatter("xml", FormatOptions{}); err == nil {
		t.Error("NewFormatter(xml) expected error")
	}
}
