package sanitize

import (
	"slices"
	"testing"
)

func TestText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Priya  Sharma ", "Priya Sharma"},
		{"<b>Data</b> analyst", "Data analyst"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;hi", "alert(1)hi"},
		{"line one\n\n\tline two", "line one line two"},
		{"Q&amp;A session", "Q&A session"},
		{"<p></p>", ""},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextsDropsEmptyEntries(t *testing.T) {
	got := Texts([]string{" imposter syndrome ", "<br>", "", "time"})
	if want := []string{"imposter syndrome", "time"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
