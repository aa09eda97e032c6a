package textutil

import "testing"

func TestPlainText(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "strips tags", in: `<b>חולצה</b> <script>alert(1)</script>כחולה`, want: "חולצה כחולה"},
		{name: "keeps entities readable", in: "T-shirt & cap", want: "T-shirt & cap"},
		{name: "keeps newlines", in: " line one\nline two\x00 ", want: "line one\nline two"},
		{name: "caps runes not bytes", in: "שלום עולם", limit: 4, want: "שלום"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.in, tc.limit); got != tc.want {
				t.Fatalf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSingleLineCollapsesWhitespace(t *testing.T) {
	if got := SingleLine("  Kamel\n\t Store  ", 0); got != "Kamel Store" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SingleLine("abc def", 5); got != "abc d" {
		t.Fatalf("unexpected %q", got)
	}
}
