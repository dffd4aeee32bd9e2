package app

import "testing"

func TestListenAddr(t *testing.T) {
	cases := map[string]string{
		"8080":  ":8080",
		":9000": ":9000",
		" 80 ":  ":80",
	}
	for in, want := range cases {
		got, err := ListenAddr(in)
		if err != nil || got != want {
			t.Fatalf("ListenAddr(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ListenAddr("  "); err == nil {
		t.Fatal("expected error for empty port")
	}
}
