package deduplication

import "testing"

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"simple", "https://www.healthline.com/path", "https://www.healthline.com/path"},
		{"mixed case", "HTTPS://WWW.WebMD.com/Diet", "https://www.webmd.com/diet"},
		{"whitespace", "  https://medportal.ru/a  ", "https://medportal.ru/a"},
		{"query kept", "https://a.fr/x?utm_source=feed", "https://a.fr/x?utm_source=feed"},
		{"trailing slash kept", "https://a.fr/x/", "https://a.fr/x/"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeURL(c.url); got != c.want {
				t.Fatalf("NormalizeURL(%q) = %q; want %q", c.url, got, c.want)
			}
		})
	}
}

func TestSeenSetFirstWins(t *testing.T) {
	s := NewSeenSet()
	if !s.Add("https://www.healthline.com/yoga") {
		t.Fatal("first add should be new")
	}
	if s.Add("HTTPS://WWW.HEALTHLINE.COM/YOGA") {
		t.Fatal("case variant should be a duplicate")
	}
	if !s.Add("https://www.healthline.com/yoga/") {
		t.Fatal("trailing slash variant is a distinct url")
	}
	if !s.Contains("https://www.healthline.com/Yoga") {
		t.Fatal("Contains should normalize")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d; want 2", s.Len())
	}
}
