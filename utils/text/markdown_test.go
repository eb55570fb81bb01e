package text

import "testing"

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Oi, tudo bem?", "Oi, tudo bem?"},
		{"bold", "isso é **importante** mesmo", "isso é importante mesmo"},
		{"italic", "um *detalhe* pequeno", "um detalhe pequeno"},
		{"bold italic", "***muito*** bom", "muito bom"},
		{"underscore emphasis", "um _detalhe_ e __outro__", "um detalhe e outro"},
		{"inline code", "use o comando `ls -la` agora", "use o comando ls -la agora"},
		{"fenced code block removed", "antes\n```go\nfmt.Println(1)\n```\ndepois", "antes\n\ndepois"},
		{"header", "# Título\ntexto", "Título\ntexto"},
		{"link keeps label", "veja [o site](https://example.com) aqui", "veja o site aqui"},
		{"image dropped entirely", "foto ![alt](https://example.com/a.png) fim", "foto fim"},
		{"unordered list", "- um\n- dois", "um\ndois"},
		{"ordered list", "1. um\n2. dois", "um\ndois"},
		{"blockquote", "> citação", "citação"},
		{"table pipes become commas", "a | b", "a , b"},
		{"residual asterisk", "a*b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.in); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripMarkdownOrderFenceBeforeInline(t *testing.T) {
	// The fence rule must consume the whole block before the inline-code
	// rule can see the backticks.
	in := "x\n```\na `b` c\n```\ny"
	if got := StripMarkdown(in); got != "x\n\ny" {
		t.Errorf("got %q, want %q", got, "x\n\ny")
	}
}

func TestSanitizeForSpeech(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quotes to apostrophes", `ela disse "oi"`, "ela disse 'oi'"},
		{"newlines to spaces", "linha um\nlinha dois", "linha um linha dois"},
		{"trimmed", "  oi  ", "oi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForSpeech(tt.in); got != tt.want {
				t.Errorf("SanitizeForSpeech(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeForSpeechTruncates(t *testing.T) {
	long := make([]rune, MaxSpeechLength+100)
	for i := range long {
		long[i] = 'ã' // multi-byte, truncation must be rune-safe
	}
	got := SanitizeForSpeech(string(long))
	if n := len([]rune(got)); n != MaxSpeechLength {
		t.Errorf("truncated length = %d runes, want %d", n, MaxSpeechLength)
	}
}
