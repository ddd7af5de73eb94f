package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/driftworks/swaps/internal/api"
	"github.com/driftworks/swaps/internal/applier"
	"github.com/driftworks/swaps/internal/catalog"
	"github.com/driftworks/swaps/internal/config"
	"github.com/driftworks/swaps/internal/controller"
	"github.com/driftworks/swaps/internal/dispatcher"
	"github.com/driftworks/swaps/internal/garage"
	"github.com/driftworks/swaps/internal/gate"
	"github.com/driftworks/swaps/internal/handlers"
	"github.com/driftworks/swaps/internal/influx"
	"github.com/driftworks/swaps/internal/ledger"
	"github.com/driftworks/swaps/internal/logging"
	"github.com/driftworks/swaps/internal/monitor"
	intOtel "github.com/driftworks/swaps/internal/otel"
	"github.com/driftworks/swaps/internal/relay"
	"github.com/driftworks/swaps/internal/storage"
	"github.com/driftworks/swaps/pkg/extension"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	ExtensionName string = "swaps"
)

// file paths
var (
	// WorkDir is the directory config and logs live under.
	WorkDir string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	SessionStartTime time.Time = time.Now()

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// DBLogger is the zerolog logger shared by the database and influx layers
	DBLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry metrics export
	OTelProvider *intOtel.Provider

	// Services
	apiClient       *api.Client
	engineCatalog   *catalog.Catalog
	swapLedger      *ledger.Ledger
	entitlementGate *gate.Gate
	engineApplier   *applier.Applier
	swapController  *controller.Controller
	vehicleGarage   *garage.Registry
	handlerService  *handlers.Service
	monitorService  *monitor.Service
	eventDispatcher *dispatcher.Dispatcher

	// Storage backend for the swap ledger
	storageBackend storage.Backend

	// Relay connection; stays a no-op unless relay.enabled is set
	relayClient relay.Relay = relay.Noop{}

	// InfluxManager records swap telemetry when influx.enabled is set
	InfluxManager *influx.Manager
)

func setup(demoMode bool) {
	var err error

	WorkDir, err = os.Getwd()
	if err != nil {
		WorkDir = "."
	}

	// Initialize slog manager before config so early failures are visible
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	// load config
	err = config.Load(WorkDir)
	if err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	// create logs dir if it doesn't exist
	if _, err := os.Stat(viper.GetString("logsDir")); os.IsNotExist(err) {
		os.Mkdir(viper.GetString("logsDir"), 0755)
	}

	LogFilePath = fmt.Sprintf(
		"%s/%s.%s.log",
		viper.GetString("logsDir"),
		ExtensionName,
		SessionStartTime.Format("20060102_150405"),
	)

	// rotate an existing file from a clock collision out of the way
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	// Re-setup logging with file output and dynamic state context
	SlogManager.Setup(LogFile, viper.GetString("logLevel"), statusContext)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	DBLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()

	// Initialize OTel metrics if enabled
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(otelCfg)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	apiClient = api.New(viper.GetString("catalog.url"), viper.GetString("catalog.apiKey"))
	checkServerStatus()

	features := config.GetFeatureConfig()

	// catalog load happens once per session; a failure leaves the feature off
	if demoMode {
		engineCatalog = demoCatalog(features.Unrestricted)
		Logger.Info("Using built-in demo catalog")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		engineCatalog, err = catalog.Load(ctx, apiClient, features.Unrestricted)
		cancel()
		if err != nil {
			Logger.Error("Catalog load failed, swaps disabled for this session", "error", err)
			engineCatalog = nil
		} else {
			Logger.Info("Catalog loaded", "engines", engineCatalog.Len())
		}
	}

	// ledger and its persistence; without a catalog no swap can ever be
	// applied or verified, so persisted state stays untouched on disk
	swapLedger = ledger.NewLedger()
	if engineCatalog != nil {
		if err := initStorage(); err != nil {
			Logger.Error("Storage initialization failed, running without persistence", "error", err)
		}
	} else {
		Logger.Warn("Skipping ledger persistence, catalog unavailable")
	}

	// entitlement gate resolves in the background; the controller polls it
	if demoMode {
		entitlementGate = gate.New(demoChecker{}, viper.GetString("gate.featureKey"), Logger)
	} else {
		entitlementGate = gate.New(apiClient, viper.GetString("gate.featureKey"), Logger)
	}
	entitlementGate.Start(context.Background())

	// telemetry sink
	var sink applier.EventSink
	if viper.GetBool("influx.enabled") {
		InfluxManager = influx.NewManager(DBLogger, fmt.Sprintf("%s/influx_backup.gz", viper.GetString("logsDir")))
		if err := InfluxManager.Connect(); err != nil {
			Logger.Error("Failed to connect to InfluxDB", "error", err)
			InfluxManager = nil
		} else {
			sink = InfluxManager
		}
	}

	engineApplier = applier.New(engineCatalog, Logger, sink, features.LogEngines)

	// relay
	relayCfg := config.GetRelayConfig()
	if relayCfg.Enabled {
		client := relay.New(relayCfg, CurrentExtensionVersion, Logger)
		if err := client.Init(); err != nil {
			Logger.Error("Relay connection failed, announcements disabled", "error", err)
		} else {
			relayClient = client
			Logger.Info("Relay connected", "url", relayCfg.URL)
		}
	}

	swapController = controller.New(engineCatalog, swapLedger, entitlementGate, engineApplier, relayClient, Logger)
	vehicleGarage = garage.NewRegistry()

	monitorService = monitor.NewService(monitor.Dependencies{
		LogManager: SlogManager,
		Controller: swapController,
		Gate:       entitlementGate,
		Ledger:     swapLedger,
		Applier:    engineApplier,
		Relay:      relayClient,
		StatusDir:  viper.GetString("logsDir"),
	})
	if !monitorService.IsRunning() {
		monitorService.Start()
	}

	// dispatcher plus the host call surface
	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(DBLogger))
	if err != nil {
		Logger.Error("Failed to create dispatcher", "error", err)
		panic(err)
	}
	registerLifecycleHandlers(eventDispatcher)

	handlerService = handlers.NewService(handlers.Dependencies{
		Controller:       swapController,
		Garage:           vehicleGarage,
		LogManager:       SlogManager,
		Monitor:          monitorService,
		ExtensionVersion: CurrentExtensionVersion,
	})
	handlerService.RegisterHandlers(eventDispatcher)

	extension.SetVersion(CurrentExtensionVersion)
	extension.SetDispatcher(eventDispatcher)

	Logger.Info("Setup complete")
}

// statusContext injects live feature state into every log record.
func statusContext() []slog.Attr {
	attrs := []slog.Attr{}
	if entitlementGate != nil {
		attrs = append(attrs, slog.String("gate", entitlementGate.Status().String()))
	}
	if swapController != nil {
		if key := swapController.CurrentVehicleKey(); key != "" {
			attrs = append(attrs, slog.String("vehicle", key))
		}
	}
	return attrs
}

func checkServerStatus() {
	// log swap service reachability; catalog load will retry on its own
	if err := apiClient.Healthcheck(); err != nil {
		Logger.Info("Swap service is offline", "error", err)
	} else {
		Logger.Info("Swap service is online")
	}
}

func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":INIT:", func(e dispatcher.Event) (any, error) {
		return "ok", nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	d.Register(":SAVE:", func(e dispatcher.Event) (any, error) {
		Logger.Info("Received :SAVE: command, persisting ledger")
		if err := saveLedger(); err != nil {
			return nil, err
		}
		if OTelProvider != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := OTelProvider.Flush(ctx); err != nil {
				Logger.Warn("Failed to flush OTel data", "error", err)
			}
		}
		return "ok", nil
	})
}

func shutdown() {
	Logger.Info("Shutting down...")

	if err := saveLedger(); err != nil {
		Logger.Error("Failed to save ledger on shutdown", "error", err)
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if err := relayClient.Close(); err != nil {
		Logger.Error("Failed to close relay", "error", err)
	}
	if InfluxManager != nil {
		InfluxManager.Close()
	}
	if monitorService != nil {
		monitorService.Stop()
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("OTel shutdown failed", "error", err)
		}
	}
	if LogFile != nil {
		LogFile.Close()
	}
}

func main() {
	args := os.Args[1:]
	demoMode := len(args) > 0 && strings.ToLower(args[0]) == "demo"

	setup(demoMode)
	Logger.Info("Starting up...", "version", CurrentExtensionVersion, "build", BuildDate)

	if len(args) == 0 {
		fmt.Println("Usage: swaps <demo|status|version>")
		shutdown()
		return
	}

	switch strings.ToLower(args[0]) {
	case "demo":
		Logger.Info("Running demo session...")
		demoStart := time.Now()
		runDemo()
		Logger.Info("Demo session finished.", "duration", time.Since(demoStart))
	case "status":
		fmt.Println(monitorService.GetStatusJSON())
	case "version":
		fmt.Println(CurrentExtensionVersion, BuildDate)
	default:
		fmt.Println("Unknown command: ", args[0])
	}

	shutdown()
}
