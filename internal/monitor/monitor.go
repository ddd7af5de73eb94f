// Package monitor exposes the extension's live status: gate state, applied
// swap, ledger size and relay backlog. The host polls it through :STATUS:;
// a background goroutine also mirrors it to a status file for ops.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/driftworks/swaps/internal/applier"
	"github.com/driftworks/swaps/internal/controller"
	"github.com/driftworks/swaps/internal/gate"
	"github.com/driftworks/swaps/internal/ledger"
	"github.com/driftworks/swaps/internal/logging"
	"github.com/driftworks/swaps/internal/relay"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	LogManager *logging.SlogManager
	Controller *controller.Controller
	Gate       *gate.Gate
	Ledger     *ledger.Ledger
	Applier    *applier.Applier
	Relay      relay.Relay
	StatusDir  string
}

// Status is the read model returned to the host and written to status.txt.
type Status struct {
	Time            time.Time `json:"time"`
	Active          bool      `json:"active"`
	GateStatus      string    `json:"gateStatus"`
	VehicleKey      string    `json:"vehicleKey"`
	CurrentEngineID int       `json:"currentEngineId"`
	LedgerEntries   int       `json:"ledgerEntries"`
	RelayOutbox     int       `json:"relayOutbox"`
	LastApplyMs     float32   `json:"lastApplyMs"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus snapshots the current extension state.
func (s *Service) GetStatus() Status {
	return Status{
		Time:            time.Now(),
		Active:          s.deps.Controller.Active(),
		GateStatus:      s.deps.Gate.Status().String(),
		VehicleKey:      s.deps.Controller.CurrentVehicleKey(),
		CurrentEngineID: s.deps.Controller.CurrentEngineID(),
		LedgerEntries:   s.deps.Ledger.Len(),
		RelayOutbox:     s.deps.Relay.OutboxDepth(),
		LastApplyMs:     float32(s.deps.Applier.LastApplyDuration().Microseconds()) / 1000,
	}
}

// GetStatusJSON returns the status as JSON for the host.
func (s *Service) GetStatusJSON() string {
	data, err := json.Marshal(s.GetStatus())
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err)
	}
	return string(data)
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		statusFile, err := os.Create(filepath.Join(s.deps.StatusDir, "status.txt"))
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(1000 * time.Millisecond)

				if statusFile != nil {
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.WriteString(s.GetStatusJSON() + "\n")
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
