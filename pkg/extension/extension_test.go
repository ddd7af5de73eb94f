package extension

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/swaps/internal/dispatcher"
)

func TestFormatDispatchResponse(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		result   any
		err      error
		expected string
	}{
		{
			name:     "success with string array",
			command:  ":VERSION:",
			result:   []string{"0.0.1", "2026-02-01"},
			err:      nil,
			expected: `["ok", ["0.0.1","2026-02-01"]]`,
		},
		{
			name:     "success with simple string",
			command:  ":INIT:",
			result:   "ok",
			err:      nil,
			expected: `["ok", "ok"]`,
		},
		{
			name:     "success with path string",
			command:  ":GETDIR:",
			result:   `C:\Program Files\Drift`,
			err:      nil,
			expected: `["ok", "C:\Program Files\Drift"]`,
		},
		{
			name:     "success with nil result",
			command:  ":SOME:CMD:",
			result:   nil,
			err:      nil,
			expected: `["ok"]`,
		},
		{
			name:     "error response",
			command:  ":LOG:",
			result:   nil,
			err:      errors.New("no handler registered"),
			expected: `["error", "no handler registered"]`,
		},
		{
			name:     "success with int array",
			command:  ":DATA:",
			result:   []int{1, 2, 3},
			err:      nil,
			expected: `["ok", [1,2,3]]`,
		},
		{
			name:     "success with nested array",
			command:  ":NESTED:",
			result:   [][]string{{"a", "b"}, {"c", "d"}},
			err:      nil,
			expected: `["ok", [["a","b"],["c","d"]]]`,
		},
		{
			name:     "success with map",
			command:  ":MAP:",
			result:   map[string]int{"count": 42},
			err:      nil,
			expected: `["ok", {"count":42}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDispatchResponse(tt.command, tt.result, tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseFormatConsistency(t *testing.T) {
	t.Run("success responses start with ok", func(t *testing.T) {
		responses := []struct {
			result any
		}{
			{result: "simple string"},
			{result: []string{"a", "b"}},
			{result: nil},
			{result: 42},
		}

		for _, r := range responses {
			got := formatDispatchResponse(":TEST:", r.result, nil)
			assert.True(t, strings.HasPrefix(got, `["ok"`))
		}
	})

	t.Run("error responses start with error", func(t *testing.T) {
		got := formatDispatchResponse(":TEST:", nil, errors.New("test error"))
		expected := `["error", "test error"]`
		assert.Equal(t, expected, got)
	})
}

type testLogger struct{ log *slog.Logger }

func (l testLogger) Debug(msg string, kv ...any) { l.log.Debug(msg, kv...) }
func (l testLogger) Info(msg string, kv ...any)  { l.log.Info(msg, kv...) }
func (l testLogger) Error(msg string, kv ...any) { l.log.Error(msg, kv...) }

func newTestDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()
	d, err := dispatcher.New(testLogger{slog.Default()})
	require.NoError(t, err)
	return d
}

func TestCallWithArgsRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	d.Register(":ECHO:", func(e dispatcher.Event) (any, error) {
		return e.Args[0], nil
	})
	SetDispatcher(d)
	t.Cleanup(func() { SetDispatcher(nil) })

	got := CallWithArgs(":ECHO:", []string{"hello"})
	assert.Equal(t, `["ok", "hello"]`, got)
}

func TestCallSplitsLegacyPipeFormat(t *testing.T) {
	d := newTestDispatcher(t)
	var seen dispatcher.Event
	d.Register(":PIPE:", func(e dispatcher.Event) (any, error) {
		seen = e
		return nil, nil
	})
	SetDispatcher(d)
	t.Cleanup(func() { SetDispatcher(nil) })

	got := Call(":PIPE:|payload")
	assert.Equal(t, `["ok"]`, got)
	assert.Equal(t, ":PIPE:", seen.Command)
	require.Len(t, seen.Args, 1)
	assert.Equal(t, ":PIPE:|payload", seen.Args[0])
}

func TestCallWithoutHandler(t *testing.T) {
	SetDispatcher(newTestDispatcher(t))
	t.Cleanup(func() { SetDispatcher(nil) })

	got := Call(":NOPE:")
	assert.True(t, strings.HasPrefix(got, `["error"`))
}

func TestVersionDefault(t *testing.T) {
	SetVersion("9.9.9")
	assert.Equal(t, "9.9.9", Version())
}
