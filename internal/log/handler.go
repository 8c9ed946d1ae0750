// Copyright 2024 Google LLC
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

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ValueTextHandler is a minimal slog.Handler that writes "LEVEL \"msg\" k=v ...\n"
// lines, matching the plain-text format used when LogFormat is "standard".
type ValueTextHandler struct {
	mu   *sync.Mutex
	w    io.Writer
	opts *slog.HandlerOptions
	attrs []slog.Attr
}

// NewValueTextHandler returns a ValueTextHandler writing to w.
func NewValueTextHandler(w io.Writer, opts *slog.HandlerOptions) *ValueTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ValueTextHandler{mu: &sync.Mutex{}, w: w, opts: opts}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ValueTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes the record as a single text line.
func (h *ValueTextHandler) Handle(_ context.Context, r slog.Record) error {
	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, a.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})

	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteString(fmt.Sprintf(" %q ", r.Message))
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a new handler with the given attributes appended.
func (h *ValueTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	na := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	na = append(na, h.attrs...)
	na = append(na, attrs...)
	return &ValueTextHandler{mu: h.mu, w: h.w, opts: h.opts, attrs: na}
}

// WithGroup is unsupported for this flat text format; it returns the handler unchanged.
func (h *ValueTextHandler) WithGroup(_ string) slog.Handler {
	return h
}
