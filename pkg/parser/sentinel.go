package parser

import "strings"

// Failure texts produced by the privileged channel in place of a dump.
const (
	SentinelNotRunning = "privileged channel not running"
	SentinelNoProcess  = "could not create privileged process"
	SentinelExecError  = "execution error"

	// Texts emitted by the Android capture app.
	SentinelShizukuNotRunning = "Shizuku服务未运行"
	SentinelShizukuNoProcess  = "无法创建Shizuku进程"
	SentinelShizukuExecError  = "执行命令时出错"
)

// Sentinels lists every failure text recognized in raw input.
var Sentinels = []string{
	SentinelNotRunning,
	SentinelNoProcess,
	SentinelExecError,
	SentinelShizukuNotRunning,
	SentinelShizukuNoProcess,
	SentinelShizukuExecError,
}

// DetectSentinel reports whether raw carries a channel failure instead of a
// dump, and which sentinel it contains.
func DetectSentinel(raw string) (string, bool) {
	for _, s := range Sentinels {
		if strings.Contains(raw, s) {
			return s, true
		}
	}
	return "", false
}
