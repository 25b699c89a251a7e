package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
)

func TestText_Empty(t *testing.T) {
	if got := htmlsanitize.Text(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestText_PlainTextUnchanged(t *testing.T) {
	in := "Rough morning, went to a meeting & felt better"
	if got := htmlsanitize.Text(in); got != in {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestText_StripsMarkup(t *testing.T) {
	got := htmlsanitize.Text("<b>hi</b><script>alert('x')</script>")
	if got != "hi" {
		t.Errorf("expected markup stripped, got %q", got)
	}
}

func TestRich_RemovesScript(t *testing.T) {
	got := htmlsanitize.Rich("<p>Read chapter 5</p><script>alert('xss')</script>")
	if got != "<p>Read chapter 5</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestRich_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Rich(`<a href="javascript:alert('xss')">Click</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestRich_KeepsSafeLinks(t *testing.T) {
	got := htmlsanitize.Rich(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("expected safe link kept, got %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	cases := map[string]bool{
		"":            true,
		"no tags":     true,
		"a <b> c":     false,
		"3 < 4":       true,
		"only > here": true,
	}
	for in, want := range cases {
		if got := htmlsanitize.IsPlainText(in); got != want {
			t.Errorf("IsPlainText(%q) = %v, want %v", in, got, want)
		}
	}
}
