package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/florimondmanca/obs-midi/internal/lifecycle"
	"github.com/florimondmanca/obs-midi/internal/logger"
	"github.com/florimondmanca/obs-midi/internal/midi"
	"github.com/florimondmanca/obs-midi/internal/supervisor"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

const defaultObsPort = 4455

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log := logger.NewZapLogger()

	fs := flag.NewFlagSet("obsmidi", flag.ContinueOnError)
	midiPort := fs.String("midi-port", envOrDefault("MIDI_PORT", ""), "named MIDI input port to bind (virtual port if unset)")
	obsPort := fs.Int("obs-port", envIntOrDefault("OBS_PORT", defaultObsPort), "obs-websocket port")
	obsPassword := fs.String("obs-password", envOrDefault("OBS_PASSWORD", ""), "obs-websocket password")
	listPorts := fs.Bool("list-ports", false, "list available MIDI input ports and exit")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *listPorts {
		return runListPorts(log)
	}

	closeSignal := lifecycle.NewCloseSignal()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		closeSignal.Set()
	}()

	err := supervisor.Run(closeSignal,
		contracts.WithLogger(log),
		contracts.WithMIDIPortName(*midiPort),
		contracts.WithObsConnection("localhost", *obsPort, *obsPassword),
		contracts.WithOnReady(func(info contracts.ReadyInfo) {
			log.Info("bridge ready",
				log.Field().String("midiPort", info.MIDIPortName),
				log.Field().Int("triggerCount", len(info.Triggers)))
		}),
		contracts.WithOnObsDisconnect(func() {
			log.Warn("obs connection lost")
		}),
		contracts.WithOnObsReconnect(func() {
			log.Info("obs connection restored")
		}),
	)
	if err != nil {
		log.Error("bridge exited with error", log.Field().Error("error", err))
		return 1
	}
	return 0
}

// runListPorts enumerates the platform MIDI input ports without
// starting the bridge, reusing contracts.MidiInputOpener.ListPorts the
// same way odaacabeef-midi-cable's standalone port listing does.
func runListPorts(log contracts.Logger) int {
	opener := midi.NewOpener(log)
	ports, err := opener.ListPorts()
	if err != nil {
		log.Error("failed to list midi input ports", log.Field().Error("error", err))
		return 1
	}
	if len(ports) == 0 {
		fmt.Println("no MIDI input ports found")
		return 0
	}
	fmt.Println("Available MIDI input ports:")
	for i, name := range ports {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return 0
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
