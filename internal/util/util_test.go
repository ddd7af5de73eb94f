package util

import "testing"

func TestTrimQuotes(t *testing.T) {
	cases := map[string]string{
		`"hello"`: "hello",
		`hello`:   "hello",
		`""`:      "",
	}
	for in, want := range cases {
		if got := TrimQuotes(in); got != want {
			t.Errorf("TrimQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFixEscapeQuotes(t *testing.T) {
	if got := FixEscapeQuotes(`a ""quoted"" word`); got != `a "quoted" word` {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestCleanArg(t *testing.T) {
	if got := CleanArg(`"{""vehicleKey"":""car-1""}"`); got != `{"vehicleKey":"car-1"}` {
		t.Errorf("unexpected result: %q", got)
	}
}
