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

package config

import (
	"strings"
	"testing"
)

func TestLoadServerConfigDefaultsOnEmptyDocument(t *testing.T) {
	cfg, err := LoadServerConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport != TransportStdio || cfg.Port != 8080 || cfg.LogFormat != "standard" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadServerConfigParsesValidDocument(t *testing.T) {
	doc := "transport: http\naddress: 0.0.0.0\nport: 9090\nlogFormat: json\nlogLevel: debug\n"
	cfg, err := LoadServerConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport != TransportHTTP || cfg.Address != "0.0.0.0" || cfg.Port != 9090 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log settings: %+v", cfg)
	}
}

func TestLoadServerConfigRejectsUnknownField(t *testing.T) {
	doc := "transport: stdio\nbogusField: true\n"
	if _, err := LoadServerConfig(strings.NewReader(doc)); err == nil {
		t.Fatal("expected strict decode to reject unknown field")
	}
}

func TestLoadServerConfigRejectsInvalidTransport(t *testing.T) {
	doc := "transport: carrier-pigeon\n"
	if _, err := LoadServerConfig(strings.NewReader(doc)); err == nil {
		t.Fatal("expected validation error for unsupported transport")
	}
}

func TestLogFormatSetRejectsUnknownValue(t *testing.T) {
	var f LogFormat
	if err := f.Set("xml"); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestLogFormatStringDefaultsToStandard(t *testing.T) {
	var f LogFormat
	if f.String() != "standard" {
		t.Fatalf("got %q, want 'standard'", f.String())
	}
}

func TestLogLevelSetAcceptsKnownValues(t *testing.T) {
	var l LogLevel
	for _, v := range []string{"debug", "info", "warn", "error"} {
		if err := l.Set(v); err != nil {
			t.Fatalf("unexpected error for %q: %v", v, err)
		}
	}
}

func TestLoadClientConfigRequiresServerURLForHTTP(t *testing.T) {
	doc := "transport: http\n"
	if _, err := LoadClientConfig(strings.NewReader(doc)); err == nil {
		t.Fatal("expected validation error when serverUrl is missing for http transport")
	}
}

func TestLoadClientConfigAllowsStdioWithoutServerURL(t *testing.T) {
	doc := "transport: stdio\n"
	cfg, err := LoadClientConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport != TransportStdio {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
