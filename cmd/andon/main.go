// Andon Core - shop-floor event collection service
//
// This is the main entry point for the andon server. It accepts pin
// transition events from shop-floor devices over TCP (and optionally
// MQTT), queues them, and persists them into per-device CSV logs, with
// optional mirrors into a SQLite device registry and InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/andon-core/internal/device"
	"github.com/nerrad567/andon-core/internal/devicelog"
	"github.com/nerrad567/andon-core/internal/infrastructure/config"
	"github.com/nerrad567/andon-core/internal/infrastructure/database"
	"github.com/nerrad567/andon-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/andon-core/internal/infrastructure/logging"
	"github.com/nerrad567/andon-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/andon-core/internal/ingest"
	"github.com/nerrad567/andon-core/internal/pin"
	"github.com/nerrad567/andon-core/internal/server"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "andon_server.conf"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting andon core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, created, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if created {
		log.Info("default configuration written", "path", configPath)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Pin label table, with optional overrides file
	resolver, err := loadResolver(cfg, log)
	if err != nil {
		return err
	}

	// Persistence pipeline: store <- worker <- queue <- sources
	store := devicelog.New(cfg.Data.OutputDir, cfg.Data.ExcelPrefix, resolver)
	log.Info("device logs",
		"output_dir", cfg.Data.OutputDir,
		"prefix", cfg.Data.ExcelPrefix,
	)
	queue := ingest.NewQueue()
	worker := ingest.NewWorker(queue, store, log)

	// Device registry (optional)
	if cfg.Registry.Enabled {
		db, dbErr := database.Open(ctx, database.Config{
			Path:        cfg.Registry.Path,
			WALMode:     cfg.Registry.WALMode,
			BusyTimeout: cfg.Registry.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening registry database: %w", dbErr)
		}
		defer func() {
			log.Info("closing registry database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing registry database", "error", closeErr)
			}
		}()
		log.Info("device registry enabled", "path", cfg.Registry.Path)

		registry := device.NewRegistry(db)
		worker.AddSink(device.NewRegistrySink(registry, log))
	} else {
		log.Info("device registry disabled")
	}

	// InfluxDB mirror (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB mirror enabled",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		worker.AddSink(influxdb.NewEventSink(influxClient, resolver))
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// MQTT event source (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT source enabled",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		source := ingest.NewMQTTSource(queue, log)
		if startErr := source.Start(&mqttSubscriberAdapter{client: mqttClient}); startErr != nil {
			return fmt.Errorf("subscribing to MQTT events: %w", startErr)
		}
	} else {
		log.Info("MQTT source disabled")
	}

	// Start the persistence worker
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	// Run the TCP server until shutdown
	srv := server.New(cfg.Server, queue, log)
	err = srv.ListenAndServe(ctx)

	log.Info("shutdown signal received, cleaning up")
	<-workerDone

	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("andon core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ANDON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ANDON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadResolver builds the pin label table, merging the optional overrides
// file over the built-in labels.
func loadResolver(cfg *config.Config, log *logging.Logger) (*pin.Resolver, error) {
	if cfg.Pins.LabelsFile == "" {
		return pin.NewResolver(), nil
	}

	resolver, err := pin.NewResolverFromFile(cfg.Pins.LabelsFile)
	if err != nil {
		return nil, fmt.Errorf("loading pin labels: %w", err)
	}
	log.Info("pin label overrides loaded", "path", cfg.Pins.LabelsFile)
	return resolver, nil
}

// mqttSubscriberAdapter adapts the infrastructure MQTT client to the
// ingest source's subscriber interface. The only difference is the named
// handler type on the client side.
type mqttSubscriberAdapter struct {
	client *mqtt.Client
}

// Subscribe implements ingest.Subscriber.
func (a *mqttSubscriberAdapter) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	return a.client.Subscribe(topic, handler)
}
