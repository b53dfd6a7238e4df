package envutil

import (
	"testing"
	"time"
)

func TestGetTrimsAndDefaults(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STR", "  value  ")
	if got := Get("ENVUTIL_TEST_STR", "def"); got != "value" {
		t.Fatalf("want=%q got=%q", "value", got)
	}
	t.Setenv("ENVUTIL_TEST_STR", "   ")
	if got := Get("ENVUTIL_TEST_STR", "def"); got != "def" {
		t.Fatalf("blank should fall back: got=%q", got)
	}
}

func TestGetIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "25")
	if got := GetInt("ENVUTIL_TEST_INT", 5); got != 25 {
		t.Fatalf("want=25 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "not-a-number")
	if got := GetInt("ENVUTIL_TEST_INT", 5); got != 5 {
		t.Fatalf("garbage should fall back: got=%d", got)
	}
}

func TestGetFloat(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.7")
	if got := GetFloat("ENVUTIL_TEST_FLOAT", 0.5); got != 0.7 {
		t.Fatalf("want=0.7 got=%v", got)
	}
}

func TestGetDurationAcceptsSecondsOrDuration(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DUR", "5s")
	if got := GetDuration("ENVUTIL_TEST_DUR", time.Minute); got != 5*time.Second {
		t.Fatalf("duration form: got=%v", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "30")
	if got := GetDuration("ENVUTIL_TEST_DUR", time.Minute); got != 30*time.Second {
		t.Fatalf("bare seconds form: got=%v", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "-4s")
	if got := GetDuration("ENVUTIL_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("non-positive should fall back: got=%v", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "YES": true, "on": true,
		"0": false, "false": false, "nope": false,
	}
	for val, want := range cases {
		t.Setenv("ENVUTIL_TEST_BOOL", val)
		if got := GetBool("ENVUTIL_TEST_BOOL", !want); got != want {
			t.Fatalf("GetBool(%q): want=%v got=%v", val, want, got)
		}
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "")
	if !GetBool("ENVUTIL_TEST_BOOL", true) {
		t.Fatal("empty should return the default")
	}
}
