// Command asteroids-server runs the authoritative arena simulation and
// serves it to clients over the length-prefixed JSON TCP protocol (spec §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/metrics"
	"github.com/nova-ctrl/asteroids-arena/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address, HOST:PORT (overrides --port)")
	portFlag := flag.String("port", "", "listen port on "+config.DefaultHost)
	debugAddrFlag := flag.String("debug-addr", "", "loopback debug/metrics address (empty disables it)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--addr HOST:PORT | --port N] [--debug-addr HOST:PORT]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	addr, err := resolveAddr(*addrFlag, *portFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-server: %v\n", err)
		return 2 // ConfigError: bad arguments (spec §6)
	}

	srv, err := server.New(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-server: %v\n", err)
		return 1 // bind failure (spec §6)
	}
	log.Printf("asteroids-server: listening on %s", srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	debugAddr := *debugAddrFlag
	if debugAddr == "" {
		debugAddr = config.GetEnv(config.DebugAddrEnvVar, "")
	}
	if debugAddr != "" {
		metrics.StartDebugServer(ctx, debugAddr)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Printf("asteroids-server: received shutdown signal")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "asteroids-server: %v\n", err)
		return 1
	}
	return 0
}

// resolveAddr implements spec §6's address resolution: --addr wins outright;
// otherwise --port is combined with the configured host; with neither flag,
// the ASTEROIDS_ADDR environment variable, if set, replaces the default
// address, matching the teacher's config.GetEnv override pattern.
func resolveAddr(addrFlag, portFlag string) (string, error) {
	addr := addrFlag
	if addr == "" {
		port := portFlag
		if port == "" {
			port = config.DefaultPort
		}
		addr = net.JoinHostPort(config.DefaultHost, port)
		if portFlag == "" {
			addr = config.GetEnv(config.AddrEnvVar, addr)
		}
	}

	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return addr, nil
}
