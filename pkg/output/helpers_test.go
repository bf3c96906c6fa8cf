package output

import (
	"context"
	"testing"

	"github.com/tl/afv/pkg/analyzer"
)

const scenarioDump = `Notification Clients:
 30548  10553  com.salt.music

Output thread 0x7a2c0c1740, name AudioOut_D, tid 1512, type 0 (MIXER):
  Standby: no
  1 Tracks of which 1 are active
Type     Id Active Client Session Port Id S  Flags   Format Chn mask  SRate
7      yes   30548    89     41 A  0x000 00000001 00000003  48000
`

const standbyDump = `Output thread 0x7a2c0d2200, name AudioOut_15, tid 1600, type 1 (DIRECT):
  Standby: yes
  0 Tracks of which 0 are active
`

// createTestReport analyzes raw and builds its report.
func createTestReport(t *testing.T, raw string) *Report {
	t.Helper()
	result, err := analyzer.NewAnalyzer().Analyze(context.Background(), "test.txt", raw)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return NewReport(result)
}
