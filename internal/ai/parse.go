package ai

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CleanResponse strips code fences and surrounding quotes that models like to wrap answers in.
func CleanResponse(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.Index(raw, "\n"); idx != -1 && !strings.Contains(raw[:idx], " ") {
			raw = raw[idx+1:]
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`\"' \n\t")
	return strings.TrimSpace(raw)
}

// LabeledFields extracts "LABEL: value" blocks from a response. A value runs until the
// next known label, so multi-line values are kept whole. Labels are matched
// case-insensitively; missing labels are absent from the result.
func LabeledFields(response string, labels ...string) map[string]string {
	type hit struct {
		label      string
		start, end int
	}

	var hits []hit
	for _, label := range labels {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:`)
		loc := re.FindStringIndex(response)
		if loc == nil {
			continue
		}
		hits = append(hits, hit{label: label, start: loc[0], end: loc[1]})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	fields := make(map[string]string, len(hits))
	for i, h := range hits {
		stop := len(response)
		if i+1 < len(hits) {
			stop = hits[i+1].start
		}
		fields[h.label] = strings.TrimSpace(response[h.end:stop])
	}

	return fields
}

// SplitList splits a comma-separated value, dropping blanks.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BulletLines splits a value into lines, stripping list markers and blanks.
func BulletLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-•*"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

var firstNumber = regexp.MustCompile(`\d+`)

// FirstInt returns the first integer found in s.
func FirstInt(s string) (int, bool) {
	m := firstNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
