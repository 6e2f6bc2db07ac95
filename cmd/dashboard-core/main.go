// Package main wires the decoder core's transport adapters, parameter
// store, watch list, persistence layer and MQTT bridge into a single
// running dashboard process, grounded on the teacher's flag/signal/
// goroutine-per-context shutdown idiom (cmd/agent-j1939/main.go,
// cmd/agent-j1587/main.go) generalized from one bus to both plus a
// persistence tick and an optional scenario generator.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkuznetsov/j1939dash/internal/telemetry"
	"github.com/dkuznetsov/j1939dash/j1939"
	"github.com/dkuznetsov/j1939dash/mqttbridge"
	"github.com/dkuznetsov/j1939dash/paramstore"
	"github.com/dkuznetsov/j1939dash/persistence"
	"github.com/dkuznetsov/j1939dash/scenario"
	"github.com/dkuznetsov/j1939dash/watchlist"
)

const (
	defaultSerialPort   = "/dev/ttyUSB0"
	defaultCanInterface = "can0"
	defaultDbPath       = "dashboard.db"
	defaultScenario     = ""
	defaultScenarioSeed = 1
	defaultScenarioTick = 100 * time.Millisecond

	displayTickInterval    = 100 * time.Millisecond
	persistenceTickInterval = 10 * time.Second
)

var (
	serialPort     = flag.String("serial-port", defaultSerialPort, "J1708 serial device")
	canInterface   = flag.String("can-if", defaultCanInterface, "SocketCAN interface name (e.g. can0, vcan0)")
	dbPath         = flag.String("dbpath", defaultDbPath, "Path to the bbolt persistence database")
	mqttBroker     = flag.String("broker", mqttbridge.DefaultBroker, "MQTT broker URL")
	mqttDataTopic  = flag.String("topic", mqttbridge.DefaultDataTopic, "MQTT topic for parameter changes")
	mqttCmdTopic   = flag.String("command-topic", mqttbridge.DefaultCommandTopic, "MQTT topic for server commands")
	updateInterval = flag.Duration("interval", mqttbridge.DefaultUpdateInterval, "unused placeholder kept for flag-set parity with the bus agents")
	scenarioName   = flag.String("scenario", defaultScenario, "run a simulated scenario instead of real buses (idle, highway, city, cold_start, acceleration, fault_injection)")
	scenarioSeed   = flag.Int64("scenario-seed", defaultScenarioSeed, "deterministic seed for the scenario generator")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("starting dashboard-core...")

	persist, err := persistence.Open(*dbPath)
	if err != nil {
		log.Fatalf("persistence.Open(%s): %v", *dbPath, err)
	}
	defer persist.Close()

	if err := persist.Boot(); err != nil {
		log.Fatalf("persistence boot: %v", err)
	}
	state := persist.State()
	log.Printf("boot_count=%d crash_count=%d", state.BootCount, state.CrashCount)

	store := paramstore.NewStore()
	counters := telemetry.NewCounters()
	list := watchlist.NewList()
	list.SetupDefaults()

	disp := newDispatcher(store, persist, counters)

	var bridge *mqttbridge.Bridge
	if *mqttBroker != "" {
		bridge = mqttbridge.New(mqttbridge.Config{
			Broker:       *mqttBroker,
			ClientID:     fmt.Sprintf("dashboard-core-%d", time.Now().UnixNano()),
			DataTopic:    *mqttDataTopic,
			CommandTopic: *mqttCmdTopic,
		}, makeCommandHandler(persist, store))
		store.RegisterObserver(bridge.OnParamChange)
		if err := bridge.Connect(); err != nil {
			log.Printf("mqttbridge: connect failed, continuing without MQTT: %v", err)
			bridge = nil
		}
	}

	done := make(chan struct{})
	var stoppers []func()

	if *scenarioName != "" {
		gen := scenario.New(scenario.Name(*scenarioName), *scenarioSeed)
		stop := runScenario(gen, disp, bridge, done)
		stoppers = append(stoppers, stop)
		log.Printf("running simulated scenario %q (seed %d), no real bus I/O", *scenarioName, *scenarioSeed)
	} else {
		if stop, err := runCANReceiver(*canInterface, disp, bridge, done); err != nil {
			log.Printf("can: %v (continuing without CAN bus)", err)
		} else {
			stoppers = append(stoppers, stop)
		}
		if stop, err := runSerialReader(*serialPort, disp, bridge, done); err != nil {
			log.Printf("serial: %v (continuing without J1708 bus)", err)
		} else {
			stoppers = append(stoppers, stop)
		}
	}

	go runDisplayLoop(store, list, done)
	go runPersistenceLoop(store, persist, counters, done)

	log.Println("dashboard-core running. press Ctrl+C to stop.")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("received signal %s, shutting down...", sig)

	close(done)
	for _, stop := range stoppers {
		stop()
	}
	if bridge != nil {
		bridge.Disconnect()
	}

	if err := persist.Shutdown(time.Now().UnixMilli()); err != nil {
		log.Printf("persistence shutdown: %v", err)
	}
	log.Println("dashboard-core stopped.")
}

func makeCommandHandler(persist *persistence.Store, store *paramstore.Store) mqttbridge.CommandHandler {
	return func(cmd mqttbridge.ServerCommand) mqttbridge.CommandAck {
		switch cmd.Type {
		case mqttbridge.ClearDTCs:
			persist.ClearActiveDTCs()
			store.Update(paramstore.ActiveDTCCount, float64(countActiveDTCs(persist.DTCHistory())), time.Now().UnixMilli(), paramstore.SourceComputed)
			return mqttbridge.CommandAck{Type: cmd.Type, Success: true}
		default:
			return mqttbridge.CommandAck{Type: cmd.Type, Success: false, Message: "unknown command"}
		}
	}
}

// runDisplayLoop is the medium-priority context (spec.md §5): a 100ms
// tick that recomputes watch-list severities from the latest parameter
// store values.
func runDisplayLoop(store *paramstore.Store, list *watchlist.List, done <-chan struct{}) {
	ticker := time.NewTicker(displayTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case t := <-ticker.C:
			list.Update(store, t.UnixMilli())
		}
	}
}

// runPersistenceLoop is the lowest-priority context (spec.md §5): a
// 10-second tick that folds the distance/fuel accumulators implied by
// the latest total-distance and fuel-rate readings into trip/lifetime
// storage.
func runPersistenceLoop(store *paramstore.Store, persist *persistence.Store, counters *telemetry.Counters, done <-chan struct{}) {
	ticker := time.NewTicker(persistenceTickInterval)
	defer ticker.Stop()

	var lastDistanceKm float64
	haveLast := false

	for {
		select {
		case <-done:
			return
		case t := <-ticker.C:
			nowMs := t.UnixMilli()
			distanceKm, ok := store.Get(paramstore.TotalDistance)
			deltaKm := 0.0
			if ok && haveLast {
				deltaKm = distanceKm - lastDistanceKm
				if deltaKm < 0 {
					deltaKm = 0
				}
			}
			if ok {
				lastDistanceKm = distanceKm
				haveLast = true
			}

			fuelRateLph, _ := store.Get(paramstore.FuelRate)
			deltaFuelL := fuelRateLph * persistenceTickInterval.Hours()

			if err := persist.Tick(nowMs, deltaKm, deltaFuelL); err != nil {
				log.Printf("persistence tick: %v", err)
			}

			snap := counters.Snapshot()
			log.Printf("counters: malformed=%d transport_abandoned=%d dtc_evictions=%d",
				snap.MalformedFrames, snap.TransportAbandoned, snap.DTCHistoryEvictions)
		}
	}
}

// runCANReceiver starts the highest-priority bus context (spec.md §5):
// a goroutine draining SocketCAN and feeding decoded messages into the
// dispatcher, plus a ticker to expire stale transport-protocol
// sessions. Returns a stop function.
func runCANReceiver(ifname string, disp *dispatcher, bridge *mqttbridge.Bridge, done <-chan struct{}) (func(), error) {
	recv, err := openCAN(ifname)
	if err != nil {
		return nil, err
	}

	go recv.Run(disp.OnCANFrame, func(id uint32, data []byte) {
		if bridge != nil {
			bridge.PublishRawCAN(id, data)
		}
	})

	stale := time.NewTicker(time.Second)
	go func() {
		defer stale.Stop()
		for {
			select {
			case <-done:
				return
			case t := <-stale.C:
				disp.ExpireStaleSessions(t.UnixMilli())
			}
		}
	}()

	return func() { recv.Close() }, nil
}

// runSerialReader starts the high-priority J1708 bus context (spec.md
// §5). Returns a stop function.
func runSerialReader(name string, disp *dispatcher, bridge *mqttbridge.Bridge, done <-chan struct{}) (func(), error) {
	reader, err := openSerial(name)
	if err != nil {
		return nil, err
	}
	go reader.Run(disp.OnJ1708Message, func(mid byte, data []byte) {
		if bridge != nil {
			bridge.PublishRawJ1708(mid, data)
		}
	})
	return func() { reader.Close() }, nil
}

// runScenario drives the deterministic generator in place of real bus
// I/O (spec.md §6), decoding its own emitted frames back through the
// same j1939 path a real CAN receiver would use, so the dispatcher
// never knows the difference.
func runScenario(gen *scenario.Generator, disp *dispatcher, bridge *mqttbridge.Bridge, done <-chan struct{}) func() {
	ticker := time.NewTicker(defaultScenarioTick)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				gen.Emit(defaultScenarioTick.Milliseconds(), func(f scenario.RawFrame) {
					if bridge != nil {
						bridge.PublishRawCAN(f.ID, f.Data)
					}
					frame := j1939.Frame{ID: f.ID, Data: f.Data, TimestampMs: f.TimestampMs}
					if msg, ok := j1939.DecodeFrame(frame); ok {
						disp.OnCANFrame(msg)
					}
				})
			}
		}
	}()
	return func() {}
}
