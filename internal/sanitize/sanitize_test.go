package sanitize

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		notIn []string
	}{
		{
			name:  "strips script with content",
			in:    `hello <script>alert("xss")</script> world`,
			notIn: []string{"<script", "alert"},
		},
		{
			name:  "strips event handlers",
			in:    `<img src=x onerror="alert(1)">`,
			notIn: []string{"onerror="},
		},
		{
			name:  "strips single quoted handlers",
			in:    `<div onclick='steal()'>x</div>`,
			notIn: []string{"onclick"},
		},
		{
			name:  "strips javascript protocol",
			in:    `<a href="javascript:alert(1)">link</a>`,
			notIn: []string{"javascript:"},
		},
		{
			name:  "strips iframe case insensitively",
			in:    `before<IFRAME src="evil"></IFRAME>after`,
			want:  "beforeafter",
		},
		{
			name:  "strips data text html",
			in:    `<a href="data:text/html,<b>x</b>">x</a>`,
			notIn: []string{"data:text/html"},
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTML(tt.in)
			if tt.want != "" || len(tt.notIn) == 0 {
				if got != tt.want {
					t.Errorf("HTML(%q) = %q, want %q", tt.in, got, tt.want)
				}
			}
			for _, bad := range tt.notIn {
				if strings.Contains(strings.ToLower(got), strings.ToLower(bad)) {
					t.Errorf("HTML(%q) = %q, still contains %q", tt.in, got, bad)
				}
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>bold</b> text", "bold text"},
		{"&lt;tag&gt; &amp; &quot;quote&quot; &#39;s&#39;", `<tag> & "quote" 's'`},
		{"a\x00b\x07c", "abc"},
		{"keep\ttabs\nand newlines", "keep\ttabs\nand newlines"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		domains []string
		wantOK  bool
	}{
		{name: "plain https", in: "https://example.com/page", wantOK: true},
		{name: "plain http", in: "http://example.com", wantOK: true},
		{name: "javascript scheme rejected", in: "javascript:alert(1)", wantOK: false},
		{name: "ftp rejected", in: "ftp://example.com/file", wantOK: false},
		{name: "not a url", in: "://nope", wantOK: false},
		{name: "allowed domain exact", in: "https://example.com/x", domains: []string{"example.com"}, wantOK: true},
		{name: "allowed subdomain", in: "https://cdn.example.com/x", domains: []string{"example.com"}, wantOK: true},
		{name: "disallowed domain", in: "https://evil.com/x", domains: []string{"example.com"}, wantOK: false},
		{name: "suffix is not subdomain", in: "https://notexample.com/x", domains: []string{"example.com"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := URL(tt.in, tt.domains...)
			if ok != tt.wantOK {
				t.Fatalf("URL(%q, %v) ok = %v, want %v", tt.in, tt.domains, ok, tt.wantOK)
			}
			if ok && got == "" {
				t.Errorf("URL(%q) accepted but returned empty string", tt.in)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	got := FileName("../../etc/passwd")
	if strings.Contains(got, "..") || strings.Contains(got, "/") {
		t.Errorf("FileName traversal not neutralized: %q", got)
	}

	if got := FileName(`a<b>c:d"e|f?g*h.txt`); got != "abcdefgh.txt" {
		t.Errorf("FileName dangerous chars: got %q", got)
	}

	if got := FileName(""); got != "file" {
		t.Errorf("FileName empty: got %q, want %q", got, "file")
	}

	if got := FileName("///"); got != "___" {
		t.Errorf("FileName separators: got %q", got)
	}

	long := strings.Repeat("a", 300) + ".png"
	got = FileName(long)
	if len(got) > 255 {
		t.Errorf("FileName did not truncate: len %d", len(got))
	}
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("FileName lost extension: %q", got)
	}
}

func TestLength(t *testing.T) {
	if got := Length("hello", 3, 0); got != "hel" {
		t.Errorf("Length truncate: got %q", got)
	}
	if got := Length("hi", 10, 5); got != "hi" {
		t.Errorf("Length below min passes through: got %q", got)
	}
	if got := Length("exact", 5, 0); got != "exact" {
		t.Errorf("Length exact: got %q", got)
	}
}

func TestEscapeHTML(t *testing.T) {
	in := `<a href="x" title='y'>&</a>`
	want := `&lt;a href=&quot;x&quot; title=&#39;y&#39;&gt;&amp;&lt;/a&gt;`
	if got := EscapeHTML(in); got != want {
		t.Errorf("EscapeHTML(%q) = %q, want %q", in, got, want)
	}
}
