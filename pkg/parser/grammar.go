package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Default section markers found in AOSP audio_flinger dumps.
const (
	DefaultClientsStart      = "Notification Clients:"
	DefaultClientsEnd        = "Global session refs:"
	DefaultThreadDelimiter   = "Output thread"
	DefaultStandbyMarker     = "Standby: yes"
	DefaultTracksHeader      = "Tracks of which"
	DefaultTracksActive      = "are active"
	DefaultEffectChains      = "Effect Chains"
	DefaultExcludedAppPrefix = "android.uid."
)

// Default row grammars. Group names are part of the contract: client rows
// must capture pid and app, track rows must capture track, pid and rate.
const (
	DefaultClientRowExpr       = `^\s*(?P<pid>\d+)\s+\d+\s+(?P<app>[\w.]+)$`
	DefaultActiveTrackRowExpr  = `^(?P<track>\w+)\s+yes\s+(?P<pid>\d+)\s+\d+\s+\d+\s+\w\s+0x[0-9A-F]+\s+[0-9A-F]+\s+[0-9A-F]+\s+(?P<rate>\d+)`
	DefaultRelaxedTrackRowExpr = `(?P<track>\w+)\s+yes\s+(?P<pid>\d+)\s+\d+\s+\d+\s+\w\s+0x[0-9A-F]+\s+[0-9A-F]+\s+[0-9A-F]+\s+(?P<rate>\d+)`
)

// Required capture groups per row shape.
var (
	ClientRowGroups = []string{"pid", "app"}
	TrackRowGroups  = []string{"track", "pid", "rate"}
)

// Markers are the fixed strings that delimit the sections of a dump.
type Markers struct {
	ClientsStart      string   `yaml:"clients_start,omitempty"`
	ClientsEnd        string   `yaml:"clients_end,omitempty"`
	ThreadDelimiter   string   `yaml:"thread_delimiter,omitempty"`
	Standby           string   `yaml:"standby,omitempty"`
	TracksHeader      string   `yaml:"tracks_header,omitempty"`
	TracksActive      string   `yaml:"tracks_active,omitempty"`
	ColumnTitles      []string `yaml:"column_titles,omitempty"`
	EffectChains      string   `yaml:"effect_chains,omitempty"`
	ExcludedAppPrefix string   `yaml:"excluded_app_prefix,omitempty"`
}

// DefaultMarkers returns the markers of the stock AOSP dump layout.
func DefaultMarkers() Markers {
	return Markers{
		ClientsStart:      DefaultClientsStart,
		ClientsEnd:        DefaultClientsEnd,
		ThreadDelimiter:   DefaultThreadDelimiter,
		Standby:           DefaultStandbyMarker,
		TracksHeader:      DefaultTracksHeader,
		TracksActive:      DefaultTracksActive,
		ColumnTitles:      []string{"Type", "Id"},
		EffectChains:      DefaultEffectChains,
		ExcludedAppPrefix: DefaultExcludedAppPrefix,
	}
}

// WithDefaults fills empty fields from DefaultMarkers.
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	if m.ClientsStart == "" {
		m.ClientsStart = d.ClientsStart
	}
	if m.ClientsEnd == "" {
		m.ClientsEnd = d.ClientsEnd
	}
	if m.ThreadDelimiter == "" {
		m.ThreadDelimiter = d.ThreadDelimiter
	}
	if m.Standby == "" {
		m.Standby = d.Standby
	}
	if m.TracksHeader == "" {
		m.TracksHeader = d.TracksHeader
	}
	if m.TracksActive == "" {
		m.TracksActive = d.TracksActive
	}
	if len(m.ColumnTitles) == 0 {
		m.ColumnTitles = d.ColumnTitles
	}
	if m.EffectChains == "" {
		m.EffectChains = d.EffectChains
	}
	if m.ExcludedAppPrefix == "" {
		m.ExcludedAppPrefix = d.ExcludedAppPrefix
	}
	return m
}

// RowPattern is a named row grammar with named capture groups.
type RowPattern struct {
	name string
	re   *regexp.Regexp
}

// Row holds the named captures of a matched row.
type Row map[string]string

// NewRowPattern compiles expr and checks that every required group exists.
func NewRowPattern(name, expr string, required ...string) (*RowPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern: %w", name, err)
	}
	for _, group := range required {
		if re.SubexpIndex(group) < 0 {
			return nil, fmt.Errorf("%s pattern is missing capture group (?P<%s>...)", name, group)
		}
	}
	return &RowPattern{name: name, re: re}, nil
}

// MustRowPattern is like NewRowPattern but panics on error.
func MustRowPattern(name, expr string, required ...string) *RowPattern {
	p, err := NewRowPattern(name, expr, required...)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the grammar name.
func (p *RowPattern) Name() string {
	return p.name
}

// String returns the source expression.
func (p *RowPattern) String() string {
	return p.re.String()
}

// Match matches a single line. Trailing content past the pattern is ignored
// unless the expression anchors it.
func (p *RowPattern) Match(line string) (Row, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return p.row(m), true
}

// FindAll returns every non-overlapping match in text, in order.
func (p *RowPattern) FindAll(text string) []Row {
	matches := p.re.FindAllStringSubmatch(text, -1)
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, p.row(m))
	}
	return rows
}

func (p *RowPattern) row(m []string) Row {
	row := make(Row, len(m))
	for i, name := range p.re.SubexpNames() {
		if name != "" {
			row[name] = m[i]
		}
	}
	return row
}

// Grammar bundles the markers and row patterns used to read a dump.
type Grammar struct {
	Markers         Markers
	ClientRow       *RowPattern
	ActiveTrackRow  *RowPattern
	RelaxedTrackRow *RowPattern
}

var (
	// ClientRow matches " 30548  10553  com.salt.music".
	ClientRow = MustRowPattern("client_row", DefaultClientRowExpr, ClientRowGroups...)

	// ActiveTrackRow matches an anchored row of the active tracks table.
	ActiveTrackRow = MustRowPattern("active_track_row", DefaultActiveTrackRowExpr, TrackRowGroups...)

	// RelaxedTrackRow is ActiveTrackRow without the line anchor, used when
	// scanning the whole dump.
	RelaxedTrackRow = MustRowPattern("relaxed_track_row", DefaultRelaxedTrackRowExpr, TrackRowGroups...)
)

// DefaultGrammar returns the grammar for the stock AOSP layout.
func DefaultGrammar() *Grammar {
	return &Grammar{
		Markers:         DefaultMarkers(),
		ClientRow:       ClientRow,
		ActiveTrackRow:  ActiveTrackRow,
		RelaxedTrackRow: RelaxedTrackRow,
	}
}

func (g *Grammar) orDefault() *Grammar {
	if g == nil {
		return DefaultGrammar()
	}
	return g
}

// splitLines splits text into lines, accepting \n, \r\n and \r endings.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
