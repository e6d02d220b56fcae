package parser

import (
	"regexp"
	"strings"

	"github.com/centromex/request-relay-bot/internal/models"
)

var (
	requestPattern = regexp.MustCompile(`(?i)(^|\s)#?\s*request(\b|\s)`)
	markerPattern  = regexp.MustCompile(`(?i)#?\s*\brequest\b`)
	yearPattern    = regexp.MustCompile(`^\d{4}$`)

	namePattern     = fieldPattern("name|title")
	yearLinePattern = fieldPattern("year")
	qualityPattern  = fieldPattern("quality")
	languagePattern = fieldPattern("language|audio")
)

// fieldPattern matches "<label>[:=] value" at the start of a line.
// [ \t] instead of \s keeps an empty value from swallowing the next line, and
// the value may not start with the separator itself.
func fieldPattern(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^(?:` + labels + `)\b[ \t]*[:=]?[ \t]*([^:=\s].*)$`)
}

// IsRequest reports whether text carries the request marker ("#request" or the
// bare word "request").
func IsRequest(text string) bool {
	return requestPattern.MatchString(text)
}

// StripMarker removes the first request marker so a one-line
// "#Request Name: X" still exposes its labels at line start.
func StripMarker(text string) string {
	loc := markerPattern.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}

// Extract pulls the labelled fields out of free text. The first matching line
// wins for each field; a year that is not exactly four digits is dropped.
func Extract(text string) models.Fields {
	content := normalize(text)

	fields := models.Fields{
		Name:     find(namePattern, content),
		Year:     find(yearLinePattern, content),
		Quality:  find(qualityPattern, content),
		Language: find(languagePattern, content),
	}
	if fields.Year != "" && !yearPattern.MatchString(fields.Year) {
		fields.Year = ""
	}
	return fields
}

func find(re *regexp.Regexp, content string) string {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// normalize trims every line and drops blank ones.
func normalize(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
