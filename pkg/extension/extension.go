// Package extension is the call surface the game host uses to reach the swap
// services. The host calls in with a command string plus string arguments and
// gets a bracketed status response back; everything behind it goes through the
// dispatcher.
package extension

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/driftworks/swaps/internal/dispatcher"
)

// Config defines how calls to this extension will be handled
var Config configStruct = configStruct{}

func init() {
	Config.Init()
}

// configStruct is the central configuration used by this library
type configStruct struct {
	// version is the value returned when the host first probes the extension
	version string

	// dispatcher handles event routing
	dispatcher *dispatcher.Dispatcher
}

// Init method initializes the config struct
func (c *configStruct) Init() {
	c.version = "No version set"
}

// SetVersion sets the version string returned when the host probes the
// extension.
func SetVersion(version string) {
	Config.version = version
}

// SetDispatcher sets the event dispatcher for handling commands
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	return Config.dispatcher
}

// Version is called by the host to get the version of the extension.
func Version() string {
	return Config.version
}

// Call handles a bare command from the host, in the format
// "command" or "command|payload".
func Call(command string) string {
	commandSubstr := strings.Split(command, "|")[0]

	// Handle built-in timestamp command
	if command == ":TIMESTAMP:" {
		return getTimestamp()
	}

	// Use dispatcher (check both full command and substring)
	if Config.dispatcher != nil {
		dispatchCommand := command
		if !Config.dispatcher.HasHandler(command) && Config.dispatcher.HasHandler(commandSubstr) {
			dispatchCommand = commandSubstr
		}

		if Config.dispatcher.HasHandler(dispatchCommand) {
			event := dispatcher.Event{
				Command:   dispatchCommand,
				Args:      []string{command}, // pass full command as arg for legacy compat
				Timestamp: time.Now(),
			}

			result, err := Config.dispatcher.Dispatch(event)
			return formatDispatchResponse(dispatchCommand, result, err)
		}
	}

	// No handler found
	return fmt.Sprintf(`["error", "%s", "no handler registered"]`, command)
}

// CallWithArgs handles a command with separated string arguments from the
// host, in the format ["command", ["arg1", "arg2", ...]].
func CallWithArgs(command string, args []string) string {
	if Config.dispatcher != nil && Config.dispatcher.HasHandler(command) {
		event := dispatcher.Event{
			Command:   command,
			Args:      args,
			Timestamp: time.Now(),
		}

		result, err := Config.dispatcher.Dispatch(event)
		return formatDispatchResponse(command, result, err)
	}

	// No handler found
	return fmt.Sprintf(`["error", "%s", "no handler registered"]`, command)
}

// formatDispatchResponse formats the dispatcher result for the host. Strings
// pass through verbatim so JSON payloads from handlers are not double-encoded.
func formatDispatchResponse(command string, result any, err error) string {
	if err != nil {
		return fmt.Sprintf(`["error", "%s"]`, err.Error())
	}
	if result == nil {
		return `["ok"]`
	}
	if s, ok := result.(string); ok {
		return fmt.Sprintf(`["ok", "%s"]`, s)
	}
	data, merr := json.Marshal(result)
	if merr != nil {
		return fmt.Sprintf(`["error", "unencodable result: %s"]`, merr.Error())
	}
	return fmt.Sprintf(`["ok", %s]`, string(data))
}

func getTimestamp() string {
	return fmt.Sprintf("%d", time.Now().UTC().UnixNano())
}
