// Copyright 2026 The mcp-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command mcp-stdio-example is a minimal echo server wired over the C5
// stdio transport, demonstrating how a host process assembles
// internal/config, the root mcp.Server and internal/transport/stdio into
// a runnable binary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcpkit/mcp-go"
	"github.com/mcpkit/mcp-go/internal/config"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/protocol"
	"github.com/mcpkit/mcp-go/internal/transport/stdio"
	"github.com/mcpkit/mcp-go/internal/util"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML server config file (optional)")
	flag.Parse()

	cfg := config.ServerConfig{Transport: config.TransportStdio, LogFormat: "standard", LogLevel: "info"}
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			return fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		cfg, err = config.LoadServerConfig(f)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	logger, err := log.NewStdLogger(os.Stderr, os.Stderr, cfg.LogLevel.String())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		select {
		case <-ctx.Done():
			return
		case s := <-signals:
			logger.Info("received shutdown signal", "signal", s.String())
			cancel()
		}
	}()

	listChanged := true
	caps := protocol.ServerCapabilities{
		Tools: &protocol.ListChanged{ListChanged: &listChanged},
	}
	srv := mcp.NewServer("mcp-stdio-example", "0.1.0", caps, logger)
	srv.Handle("ping/echo", func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		if l, err := util.LoggerFromContext(ctx); err == nil {
			l.DebugContext(ctx, "handling ping/echo", "bytes", len(params))
		}
		return params, nil
	})

	tr := stdio.New(os.Stdin, os.Stdout)
	logger.Info("serving over stdio")
	return srv.Serve(ctx, tr)
}
