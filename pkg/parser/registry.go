package parser

import "strings"

// ExtractClients builds the client registry using the default grammar.
func ExtractClients(raw string) *ClientRegistry {
	return DefaultGrammar().ExtractClients(raw)
}

// ExtractClients builds the pid to application registry from the
// notification clients section. A missing section yields an empty registry.
func (g *Grammar) ExtractClients(raw string) *ClientRegistry {
	g = g.orDefault()
	registry := NewClientRegistry()

	for _, line := range g.ClientSection(raw) {
		row, ok := g.ClientRow.Match(strings.TrimSpace(line))
		if !ok {
			continue
		}
		pid, app := row["pid"], row["app"]
		if app == "" || strings.HasPrefix(app, g.Markers.ExcludedAppPrefix) {
			continue
		}
		registry.Set(pid, app)
	}

	return registry
}

// ClientSection returns the lines following the clients marker, up to the
// end marker or the first blank line. Nil means the marker is absent.
func (g *Grammar) ClientSection(raw string) []string {
	g = g.orDefault()
	lines := splitLines(raw)

	start := -1
	for i, line := range lines {
		if strings.Contains(line, g.Markers.ClientsStart) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	section := []string{}
	for _, line := range lines[start+1:] {
		if isBlank(line) || strings.Contains(line, g.Markers.ClientsEnd) {
			break
		}
		section = append(section, line)
	}
	return section
}
