package taskqueue

import (
	"regexp"
	"strings"
)

// Job payloads travel to an external model, so inputs are stripped of markup,
// template-injection sequences and SQL-looking statements before enqueue, and
// truncated to a bounded size.
var (
	scriptRe   = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
	templateRe = regexp.MustCompile(`\{\{.*?\}\}|\$\{.*?\}|<%.*?%>`)
	sqlRe      = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|ALTER|UNION|TRUNCATE|EXEC)\b[^;]*;?`)
	spaceRe    = regexp.MustCompile(`[ \t]+`)
)

// SanitizeText cleans untrusted text and truncates it to maxLen characters.
func SanitizeText(text string, maxLen int) string {
	text = scriptRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = templateRe.ReplaceAllString(text, "")
	text = sqlRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = string(runes[:maxLen])
		}
	}
	return text
}
