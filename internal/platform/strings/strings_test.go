package strings

import (
	"testing"

	"ballotgate/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"GET"}
	if got := IfEmpty(nil, def); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	if got := IfEmpty([]string{"POST"}, def); got[0] != "POST" {
		t.Fatalf("IfEmpty(in) = %v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"electors":     "/electors",
		"/electors/":   "/electors",
		"  /a/b/  ":    "/a/b",
		"//contestant": "/contestant",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	testkit.MustPanic(t, func() { MustPrefix(" / ") })
}

func TestPtrDeref(t *testing.T) {
	if Ptr("  ") != nil {
		t.Fatal("blank should be nil")
	}
	if p := Ptr("x"); p == nil || *p != "x" {
		t.Fatalf("Ptr(x) = %v", p)
	}
	if Deref(nil) != "" || Deref(Ptr("y")) != "y" {
		t.Fatal("Deref mismatch")
	}
}
