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

// Package protocol implements the MCP version and capability registry
// (C2): parsing and total ordering of calendar-date protocol versions,
// negotiation, and the feature-gate table.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcpkit/mcp-go/internal/mcperr"
)

// Version is a calendar-date protocol version, e.g. "2025-06-18".
type Version struct {
	Year, Month, Day int
	raw              string
}

// Latest is the newest protocol version this library speaks.
const Latest = "2025-06-18"

// Supported lists every protocol version this library understands, latest
// first; this is the build-time "ordered list" named in §6.
var Supported = []string{"2025-06-18", "2024-11-05"}

// Parse validates and parses a calendar-date version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Version{}, mcperr.Newf(mcperr.KindInvalidVersion, "malformed protocol version %q", s)
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Version{}, mcperr.Newf(mcperr.KindInvalidVersion, "malformed protocol version %q", s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 2000 || year > 2100 {
		return Version{}, mcperr.Newf(mcperr.KindInvalidVersion, "protocol version %q out of sane range", s)
	}
	return Version{Year: year, Month: month, Day: day, raw: s}, nil
}

// String renders the version in its canonical YYYY-MM-DD form.
func (v Version) String() string {
	if v.raw != "" {
		return v.raw
	}
	return fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, v.Day)
}

// Less reports whether v sorts strictly before other, lexicographically
// over (year, month, day).
func (v Version) Less(other Version) bool {
	if v.Year != other.Year {
		return v.Year < other.Year
	}
	if v.Month != other.Month {
		return v.Month < other.Month
	}
	return v.Day < other.Day
}

// IsSupported reports whether s is one of the Supported versions.
func IsSupported(s string) bool {
	for _, v := range Supported {
		if v == s {
			return true
		}
	}
	return false
}

// Negotiate implements §4.2's pure negotiation function: if requested is
// supported, return it; otherwise return the highest supported version
// that is <= requested; otherwise return the latest supported version.
// Negotiate never fails — a malformed or unparseable request falls
// through to the latest version.
func Negotiate(requested string) string {
	if IsSupported(requested) {
		return requested
	}
	reqVer, err := Parse(requested)
	if err != nil {
		return Latest
	}
	var best string
	var bestVer Version
	haveBest := false
	for _, s := range Supported {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		if reqVer.Less(v) {
			continue // v > requested, not eligible
		}
		if !haveBest || bestVer.Less(v) {
			best, bestVer, haveBest = s, v, true
		}
	}
	if !haveBest {
		return Latest
	}
	return best
}
