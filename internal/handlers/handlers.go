// Package handlers binds host commands to the swap services. Each handler
// decodes the host's string arguments and calls into the controller; results
// going back to the host are JSON strings.
package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/driftworks/swaps/internal/controller"
	"github.com/driftworks/swaps/internal/dispatcher"
	"github.com/driftworks/swaps/internal/garage"
	"github.com/driftworks/swaps/internal/logging"
	"github.com/driftworks/swaps/internal/monitor"
	"github.com/driftworks/swaps/internal/util"
	"github.com/driftworks/swaps/pkg/core"
)

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Controller       *controller.Controller
	Garage           *garage.Registry
	LogManager       *logging.SlogManager
	Monitor          *monitor.Service
	ExtensionVersion string
}

// Service provides handler methods for processing host commands.
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service.
func NewService(deps Dependencies) *Service {
	s := &Service{deps: deps}
	// Default writeLog function uses the logging manager
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// RegisterHandlers registers all command handlers with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Per-tick pump - hot path, no logging
	d.Register(":SWAPS:TICK:", s.handleTick)

	// Local player actions - sync so the host sees the result immediately
	d.Register(":CAR:LOADED:", s.handleCarLoaded, dispatcher.Logged())
	d.Register(":SWAPS:SELECT:", s.handleSelect, dispatcher.Logged())
	d.Register(":SWAPS:SOUND:", s.handleReloadSound, dispatcher.Logged())

	// Remote swaps can burst when joining a full session - buffered
	d.Register(":SWAPS:REMOTE:", s.handleRemoteSwap, dispatcher.Buffered(256), dispatcher.Logged())

	// Read models
	d.Register(":SWAPS:LIST:", s.handleList)
	d.Register(":STATUS:", s.handleStatus)
	d.Register(":VERSION:", s.handleVersion)
}

func (s *Service) handleTick(e dispatcher.Event) (any, error) {
	s.deps.Controller.Update()
	return nil, nil
}

func (s *Service) handleCarLoaded(e dispatcher.Event) (any, error) {
	functionName := ":CAR:LOADED:"
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("missing vehicle key")
	}

	key := util.CleanArg(e.Args[0])
	vehicle, ok := s.deps.Garage.Get(key)
	if !ok {
		s.writeLog(functionName, fmt.Sprintf(`Unknown vehicle key: %s`, key), "ERROR")
		return nil, fmt.Errorf("unknown vehicle key: %s", key)
	}

	s.deps.Controller.OnVehicleLoaded(vehicle)
	return nil, nil
}

func (s *Service) handleSelect(e dispatcher.Event) (any, error) {
	functionName := ":SWAPS:SELECT:"
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("missing engine id")
	}

	engineID, err := strconv.Atoi(util.CleanArg(e.Args[0]))
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Bad engine id: %v`, err), "ERROR")
		return nil, fmt.Errorf("bad engine id: %w", err)
	}

	s.deps.Controller.SelectEngine(engineID)
	return strconv.Itoa(s.deps.Controller.CurrentEngineID()), nil
}

func (s *Service) handleReloadSound(e dispatcher.Event) (any, error) {
	s.deps.Controller.ReloadSound()
	return nil, nil
}

func (s *Service) handleRemoteSwap(e dispatcher.Event) (any, error) {
	functionName := ":SWAPS:REMOTE:"
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("missing swap payload")
	}

	var msg core.SwapMessage
	if err := json.Unmarshal([]byte(util.CleanArg(e.Args[0])), &msg); err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error unmarshalling swap data: %v`, err), "ERROR")
		return nil, err
	}

	vehicle, ok := s.deps.Garage.Get(msg.VehicleKey)
	if !ok {
		s.writeLog(functionName, fmt.Sprintf(`Unknown remote vehicle key: %s`, msg.VehicleKey), "ERROR")
		return nil, fmt.Errorf("unknown remote vehicle key: %s", msg.VehicleKey)
	}

	s.deps.Controller.OnRemoteSwap(vehicle, msg)
	return nil, nil
}

// listResponse is the :SWAPS:LIST: payload.
type listResponse struct {
	CurrentEngineID int                         `json:"currentEngineId"`
	Engines         []controller.EngineListItem `json:"engines"`
}

func (s *Service) handleList(e dispatcher.Event) (any, error) {
	resp := listResponse{
		CurrentEngineID: s.deps.Controller.CurrentEngineID(),
		Engines:         s.deps.Controller.List(),
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode engine list: %w", err)
	}
	return string(data), nil
}

func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	return s.deps.Monitor.GetStatusJSON(), nil
}

func (s *Service) handleVersion(e dispatcher.Event) (any, error) {
	return s.deps.ExtensionVersion, nil
}
