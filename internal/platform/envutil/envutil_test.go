package envutil

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_INT", " 42 ")
	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("ENVUTIL_INT", "nope")
	if got := Int("ENVUTIL_INT", 1); got != 1 {
		t.Fatalf("expected default, got %d", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"on": true, "YES": true, "0": false, "off": false, "junk": true}
	for raw, want := range cases {
		t.Setenv("ENVUTIL_BOOL", raw)
		if got := Bool("ENVUTIL_BOOL", true); got != want {
			t.Fatalf("%q: got %v want %v", raw, got, want)
		}
	}
}

func TestSeconds(t *testing.T) {
	t.Setenv("ENVUTIL_SECS", "90")
	if got := Seconds("ENVUTIL_SECS", time.Second); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("ENVUTIL_SECS", "-3")
	if got := Seconds("ENVUTIL_SECS", time.Second); got != time.Second {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("ENVUTIL_LIST", "a, ,b,")
	got := List("ENVUTIL_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}
