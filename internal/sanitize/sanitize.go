// Package sanitize provides best-effort input cleaning for user-supplied
// text, URLs, and file names. Every function is total: any string input,
// including empty, yields a defined result without panicking.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

// Denylist patterns. This is intentionally not an HTML parser; it strips the
// handful of constructs that matter for stored free text rendered by the
// admin UI.
var (
	scriptRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeRe  = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	objectRe  = regexp.MustCompile(`(?is)<object\b.*?</object>`)
	embedRe   = regexp.MustCompile(`(?is)<embed\b.*?</embed>`)
	handlerRe = regexp.MustCompile(`(?i)on\w+\s*=\s*("[^"]*"|'[^']*')`)
	jsProtoRe = regexp.MustCompile(`(?i)javascript:`)
	dataURLRe = regexp.MustCompile(`(?i)data:text/html`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	ctrlRe    = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	badFileRe = regexp.MustCompile(`[<>:"|?*\x00-\x1F]`)
)

// HTML strips script/iframe/object/embed elements (including their content),
// inline event-handler attributes, and javascript:/data:text/html scheme
// prefixes. Matching is case-insensitive.
func HTML(html string) string {
	s := scriptRe.ReplaceAllString(html, "")
	s = iframeRe.ReplaceAllString(s, "")
	s = objectRe.ReplaceAllString(s, "")
	s = embedRe.ReplaceAllString(s, "")
	s = handlerRe.ReplaceAllString(s, "")
	s = jsProtoRe.ReplaceAllString(s, "")
	s = dataURLRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Text strips all tags, decodes the common named entities, removes control
// characters except tab and newline, and trims surrounding whitespace.
func Text(text string) string {
	s := tagRe.ReplaceAllString(text, "")

	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	s = replacer.Replace(s)

	s = ctrlRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// URL validates a user-supplied link. It returns the normalized URL and true
// when the input parses and uses http or https; otherwise "" and false. When
// allowedDomains is non-empty, the hostname must equal or be a subdomain of
// one of the entries.
func URL(raw string, allowedDomains ...string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	if len(allowedDomains) > 0 {
		host := strings.ToLower(u.Hostname())
		allowed := false
		for _, domain := range allowedDomains {
			d := strings.ToLower(domain)
			if host == d || strings.HasSuffix(host, "."+d) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", false
		}
	}

	return u.String(), true
}

// FileName neutralizes path traversal and characters that are unsafe in
// storage keys, truncating to 255 characters while preserving the extension.
// An input that sanitizes to nothing becomes the literal "file".
func FileName(name string) string {
	s := strings.ReplaceAll(name, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, `\`, "_")
	s = badFileRe.ReplaceAllString(s, "")

	if len(s) > 255 {
		ext := ""
		if i := strings.LastIndex(s, "."); i >= 0 {
			ext = s[i:]
		}
		if len(ext) >= 255 {
			ext = ""
		}
		s = s[:255-len(ext)] + ext
	}

	if s == "" {
		return "file"
	}
	return s
}

// Length truncates text to max characters. Text shorter than min passes
// through unchanged; nothing is ever padded.
func Length(text string, max, min int) string {
	if len(text) < min {
		return text
	}
	if len(text) > max {
		return text[:max]
	}
	return text
}

// EscapeHTML maps the five HTML-significant characters to named entities.
func EscapeHTML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(text)
}
