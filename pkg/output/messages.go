package output

// messages holds the fixed strings of the text report for one language.
type messages struct {
	title     string
	found     string
	app       string
	pid       string
	rate      string
	trackID   string
	stats     string
	rates     string
	appStats  string
	appLine   string
	noTracks  string
	rawHeader string
	quiet     string
	quietNone string
	source    string
	pass      string
	threads   string
	duration  string
}

var catalog = map[string]messages{
	"zh": {
		title:     "=== 音频应用播放信息 ===",
		found:     "发现 %d 个活跃音频轨道:",
		app:       "应用包名: %s",
		pid:       "进程PID: %s",
		rate:      "采样率: %s Hz",
		trackID:   "轨道ID: %s",
		stats:     "=== 统计信息 ===",
		rates:     "使用的采样率: %s Hz",
		appStats:  "应用使用统计:",
		appLine:   "  %s: %d 个活跃轨道",
		noTracks:  "未找到活跃的音频轨道",
		rawHeader: "=== 完整原始输出 ===",
		quiet:     "afv: %d 个活跃轨道, %d 个应用, 采样率 %s Hz",
		quietNone: "afv: 未找到活跃的音频轨道",
		source:    "来源: %s",
		pass:      "解析方式: %s",
		threads:   "输出线程: %d (待机 %d)",
		duration:  "耗时: %s",
	},
	"en": {
		title:     "=== Audio playback ===",
		found:     "Found %d active audio track(s):",
		app:       "Package: %s",
		pid:       "PID: %s",
		rate:      "Sample rate: %s Hz",
		trackID:   "Track ID: %s",
		stats:     "=== Statistics ===",
		rates:     "Sample rates: %s Hz",
		appStats:  "Tracks per application:",
		appLine:   "  %s: %d active track(s)",
		noTracks:  "No active audio tracks found",
		rawHeader: "=== Full raw output ===",
		quiet:     "afv: %d active track(s), %d application(s), sample rates %s Hz",
		quietNone: "afv: no active audio tracks found",
		source:    "Source: %s",
		pass:      "Pass: %s",
		threads:   "Output threads: %d (standby %d)",
		duration:  "Duration: %s",
	},
}

// DefaultLanguage is the report language when none is set.
const DefaultLanguage = "zh"

// Languages lists the supported report languages.
func Languages() []string {
	return []string{"zh", "en"}
}

// IsLanguage reports whether lang is supported.
func IsLanguage(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

func messagesFor(lang string) messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[DefaultLanguage]
}
