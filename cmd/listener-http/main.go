// Command listener-http is a sample HTTP server built on the listener
// library.
//
// It binds a TLS listener through a capability channel, prints the
// host-assigned name, then accept-loops serving a tiny site:
//
//	GET /            302 redirect to /hello
//	GET /hello       200 greeting page
//	GET /favicon.ico 200 one-pixel icon
//
// Outside a real host the channel is backed by the live host simulator,
// which listens on a loopback TCP port (reported at startup) instead of
// the requested one.
//
// Usage:
//
//	listener-http [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-prefix string   Listener name prefix (default "www")
//	-port int        Requested TLS port (default 443)
//	-backlog int     Accept queue length (default 1)
//	-log-file string Protocol event log path (CBOR)
//	-verbose         Log protocol events to stderr
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/gate-protocol/listener-go/internal/testharness/hostsim"
	"github.com/gate-protocol/listener-go/pkg/listener"
	eventlog "github.com/gate-protocol/listener-go/pkg/log"
	"github.com/gate-protocol/listener-go/pkg/version"
)

// Config holds the sample server configuration.
type Config struct {
	// Prefix is the requested listener name prefix.
	Prefix string `yaml:"prefix"`

	// Port is the requested TLS port.
	Port uint16 `yaml:"port"`

	// Backlog is the accept queue length.
	Backlog int `yaml:"backlog"`

	// LogFile is the protocol event log path (empty = disabled).
	LogFile string `yaml:"logFile"`
}

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	config := Config{Prefix: "www", Port: 443, Backlog: 1}

	var configFile string
	var verbose bool
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.Prefix, "prefix", config.Prefix, "Listener name prefix")
	port := flag.Uint("port", uint(config.Port), "Requested TLS port")
	flag.IntVar(&config.Backlog, "backlog", config.Backlog, "Accept queue length")
	flag.StringVar(&config.LogFile, "log-file", config.LogFile, "Protocol event log path (CBOR)")
	flag.BoolVar(&verbose, "verbose", false, "Log protocol events to stderr")
	flag.Parse()
	config.Port = uint16(*port)

	if configFile != "" {
		if err := loadConfig(configFile, &config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	logger, cleanup, err := buildLogger(config, verbose)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer cleanup()

	log.Printf("Starting %s", version.UserAgent())

	// Stand-in for the real host capability channel.
	host := hostsim.NewLive()
	defer host.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lis, err := listener.Bind(ctx, host, listener.Config{
		Port:    config.Port,
		Prefix:  config.Prefix,
		Backlog: config.Backlog,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Bind failed: %v", err)
	}

	log.Printf("Host: %s", lis.Hostname())
	log.Printf("Serving on 127.0.0.1:%d", lis.Port())

	acceptor, closer, err := lis.Split()
	if err != nil {
		log.Fatalf("Split failed: %v", err)
	}

	// First SIGINT/SIGTERM closes the listener; the accept loop then
	// drains to its Closed result.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down")
		closer.Close()
	}()

	serve(ctx, acceptor)
}

// serve accept-loops until the listener is closed.
func serve(ctx context.Context, acceptor *listener.Acceptor) {
	for {
		conn, err := acceptor.Accept(ctx)
		if err != nil {
			if listener.IsClosed(err) {
				return
			}
			var acceptErr *listener.AcceptError
			if errors.As(err, &acceptErr) {
				log.Printf("Accept failed: %v (code %d)", acceptErr, acceptErr.Code)
				continue
			}
			log.Printf("Accept failed: %v", err)
			return
		}
		go handleConn(conn, acceptor.Hostname())
	}
}

func loadConfig(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

func buildLogger(config Config, verbose bool) (eventlog.Logger, func(), error) {
	var loggers []eventlog.Logger

	if verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, eventlog.NewSlogAdapter(slog.New(handler)))
	}

	cleanup := func() {}
	if config.LogFile != "" {
		fileLogger, err := eventlog.NewFileLogger(config.LogFile)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fileLogger)
		cleanup = func() { fileLogger.Close() }
	}

	switch len(loggers) {
	case 0:
		return eventlog.NoopLogger{}, cleanup, nil
	case 1:
		return loggers[0], cleanup, nil
	default:
		return eventlog.NewMultiLogger(loggers...), cleanup, nil
	}
}
