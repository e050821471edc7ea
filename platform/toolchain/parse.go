package toolchain

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/robbyt/go-livescript/platform/diagnostic"
)

var (
	// path(12,5): error SC0010: message
	// path(12,5,12,9): warning: message
	msbuildPattern = regexp.MustCompile(
		`^\s*(.+?)\((\d+),(\d+)(?:,\d+,\d+)?\)\s*:\s*(error|warning|info|note)\s*([A-Za-z]*\d*)\s*:\s*(.*)$`,
	)

	// path:12:5: error: message
	// path:12:5: message
	gnuPattern = regexp.MustCompile(
		`^\s*(.+?):(\d+):(\d+):\s*(?:(error|warning|note|info|fatal error):\s*)?(.*)$`,
	)

	// path:12: message
	gnuLinePattern = regexp.MustCompile(
		`^\s*(.+?):(\d+):\s*(?:(error|warning|note|info|fatal error):\s*)?(.*)$`,
	)
)

// ParseDiagnostics extracts diagnostics from compiler output, one per matching line,
// in output order. Lines that match no known format are skipped.
func ParseDiagnostics(output string) diagnostic.List {
	var diags diagnostic.List
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if d, ok := parseLine(scanner.Text()); ok {
			diags = append(diags, d)
		}
	}
	return diags
}

func parseLine(line string) (diagnostic.Diagnostic, bool) {
	if strings.TrimSpace(line) == "" {
		return diagnostic.Diagnostic{}, false
	}

	if m := msbuildPattern.FindStringSubmatch(line); m != nil {
		category := m[5]
		if category == "" {
			category = m[4]
		}
		return diagnostic.Diagnostic{
			FilePath: m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Severity: diagnostic.ParseSeverity(m[4]),
			Category: category,
			Message:  strings.TrimSpace(m[6]),
		}, true
	}

	if m := gnuPattern.FindStringSubmatch(line); m != nil {
		return diagnostic.Diagnostic{
			FilePath: m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Severity: diagnostic.ParseSeverity(m[4]),
			Category: m[4],
			Message:  strings.TrimSpace(m[5]),
		}, true
	}

	if m := gnuLinePattern.FindStringSubmatch(line); m != nil {
		return diagnostic.Diagnostic{
			FilePath: m[1],
			Line:     atoi(m[2]),
			Severity: diagnostic.ParseSeverity(m[3]),
			Category: m[3],
			Message:  strings.TrimSpace(m[4]),
		}, true
	}

	return diagnostic.Diagnostic{}, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
