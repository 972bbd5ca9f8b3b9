package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"Title: Part 1":          "Title - Part 1",
		`Who? "Me"`:              "Who 'Me'",
		"A/B\\C|D*E":             "A-B-C-D-E",
		"<tag> trailing dots...": "tag trailing dots",
		"  many   spaces  ":      "many spaces",
		"tab\tand\x00null":       "tab andnull",
		"":                       "",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestQueryString(t *testing.T) {
	cases := map[string]string{
		"The.Office.US.":        "the office us",
		"Grey's_Anatomy":        "greys anatomy",
		"Law & Order- SVU":      "law and order svu",
		"  Mr.  Robot ":         "mr robot",
		"Café Society":    "café society",
		"Marvel's.Agents.of.S.": "marvels agents of s",
	}
	for input, want := range cases {
		if got := QueryString(input); got != want {
			t.Fatalf("QueryString(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("the.office.us"); got != "The Office Us" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := DisplayName("..."); got != "" {
		t.Fatalf("expected empty display name, got %q", got)
	}
}
