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

// Package config loads the small ambient configuration surface the two
// example binaries under cmd/ read at startup: transport selection,
// logging format/level and HTTP listen address. It follows the teacher's
// internal/server/config.go pattern of custom flag-value string enums
// validated through a strict YAML decoder, even though no cobra/viper CLI
// sits on top of it here.
package config

import (
	"fmt"
	"io"
	"strings"

	yaml "github.com/goccy/go-yaml"

	"github.com/mcpkit/mcp-go/internal/util"
)

// LogFormat names the log output format ("standard" or "json"), mirroring
// the teacher's logFormat. The example binaries always build the
// plain-text ValueTextHandler logger; no JSON handler reads this value.
type LogFormat string

// String is used by both fmt.Print and flag help text.
func (f *LogFormat) String() string {
	if string(*f) != "" {
		return strings.ToLower(string(*f))
	}
	return "standard"
}

// Set validates and assigns a log format value.
func (f *LogFormat) Set(v string) error {
	switch strings.ToLower(v) {
	case "standard", "json":
		*f = LogFormat(strings.ToLower(v))
		return nil
	default:
		return fmt.Errorf(`log format must be one of "standard", or "json"`)
	}
}

// Type names this flag value's type for help text.
func (f *LogFormat) Type() string { return "logFormat" }

// LogLevel is a validated string enum over slog's four levels, mirroring
// the teacher's StringLevel.
type LogLevel string

// String is used by both fmt.Print and flag help text.
func (l *LogLevel) String() string {
	if string(*l) != "" {
		return strings.ToLower(string(*l))
	}
	return "info"
}

// Set validates and assigns a log level value.
func (l *LogLevel) Set(v string) error {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		*l = LogLevel(strings.ToLower(v))
		return nil
	default:
		return fmt.Errorf(`log level must be one of "debug", "info", "warn", or "error"`)
	}
}

// Type names this flag value's type for help text.
func (l *LogLevel) Type() string { return "stringLevel" }

// TransportKind selects which C4 transport an example binary wires up.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
)

// ServerConfig is the ambient configuration a host process reads before
// constructing the library's server-side pieces (lifecycle machine,
// correlator, transport).
type ServerConfig struct {
	Transport TransportKind `yaml:"transport" validate:"required,oneof=stdio http"`
	Address   string        `yaml:"address"`
	Port      int           `yaml:"port" validate:"omitempty,min=1,max=65535"`
	LogFormat LogFormat     `yaml:"logFormat"`
	LogLevel  LogLevel      `yaml:"logLevel"`
	// AllowedOrigins is the HTTP transport's origin allow-list; empty means
	// deny-by-default per the spec.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// ClientConfig is the ambient configuration a host process reads before
// constructing the library's client-side pieces.
type ClientConfig struct {
	Transport TransportKind `yaml:"transport" validate:"required,oneof=stdio http"`
	ServerURL string        `yaml:"serverUrl" validate:"required_if=Transport http"`
	LogFormat LogFormat     `yaml:"logFormat"`
	LogLevel  LogLevel      `yaml:"logLevel"`
}

// defaultServerConfig seeds optional fields so zero-value YAML documents
// still decode to something usable.
func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Transport: TransportStdio,
		Port:      8080,
		LogFormat: "standard",
		LogLevel:  "info",
	}
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		Transport: TransportStdio,
		LogFormat: "standard",
		LogLevel:  "info",
	}
}

// LoadServerConfig strict-decodes a YAML document into a ServerConfig: the
// raw document is first parsed loosely, then re-decoded through
// util.NewStrictDecoder so unknown fields are rejected and the validate
// tags above are enforced, exactly as the teacher's source/tool config
// loading does it in two passes.
func LoadServerConfig(r io.Reader) (ServerConfig, error) {
	cfg := defaultServerConfig()
	raw, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return cfg, nil
	}
	var loose map[string]any
	if err := yaml.Unmarshal(raw, &loose); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	dec, err := util.NewStrictDecoder(loose)
	if err != nil {
		return cfg, fmt.Errorf("building config decoder: %w", err)
	}
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadClientConfig strict-decodes a YAML document into a ClientConfig,
// following the same two-pass decode as LoadServerConfig.
func LoadClientConfig(r io.Reader) (ClientConfig, error) {
	cfg := defaultClientConfig()
	raw, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return cfg, nil
	}
	var loose map[string]any
	if err := yaml.Unmarshal(raw, &loose); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	dec, err := util.NewStrictDecoder(loose)
	if err != nil {
		return cfg, fmt.Errorf("building config decoder: %w", err)
	}
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
