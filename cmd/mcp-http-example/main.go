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

// Command mcp-http-example is a minimal echo server exposed over the C6
// Streamable HTTP transport, demonstrating how a host process wires
// internal/config, the root mcp.Server/HTTPDispatch and
// internal/transport/httpmcp.Handler into a runnable listener.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcpkit/mcp-go"
	"github.com/mcpkit/mcp-go/internal/config"
	"github.com/mcpkit/mcp-go/internal/log"
	"github.com/mcpkit/mcp-go/internal/protocol"
	"github.com/mcpkit/mcp-go/internal/transport/httpmcp"
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

	cfg := config.ServerConfig{
		Transport:      config.TransportHTTP,
		Address:        "127.0.0.1",
		Port:           8080,
		LogFormat:      "standard",
		LogLevel:       "info",
		AllowedOrigins: []string{"http://localhost"},
	}
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

	logger, err := log.NewStdLogger(os.Stdout, os.Stderr, cfg.LogLevel.String())
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
	srv := mcp.NewServer("mcp-http-example", "0.1.0", caps, logger)
	srv.Handle("ping/echo", func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		if l, err := util.LoggerFromContext(ctx); err == nil {
			l.DebugContext(ctx, "handling ping/echo", "bytes", len(params))
		}
		return params, nil
	})

	dispatch := mcp.NewHTTPDispatch(srv)
	handler := httpmcp.NewHandler(dispatch.Dispatch, logger, cfg.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE streams hold the connection open indefinitely.
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving over streamable http", "address", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
