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

package protocol

import "testing"

func TestNegotiateExactMatch(t *testing.T) {
	got := Negotiate("2024-11-05")
	if got != "2024-11-05" {
		t.Fatalf("negotiate exact match: got %q, want %q", got, "2024-11-05")
	}
}

func TestNegotiateBelowAllSupportedReturnsLatest(t *testing.T) {
	got := Negotiate("2023-01-01")
	if got != Latest {
		t.Fatalf("negotiate below all supported versions: got %q, want latest %q", got, Latest)
	}
}

func TestNegotiateBetweenSupportedVersions(t *testing.T) {
	// A requested date between the two supported versions should pick the
	// highest one that is <= requested.
	got := Negotiate("2025-01-01")
	if got != "2024-11-05" {
		t.Fatalf("negotiate between versions: got %q, want %q", got, "2024-11-05")
	}
}

func TestNegotiateMalformedReturnsLatest(t *testing.T) {
	got := Negotiate("not-a-version")
	if got != Latest {
		t.Fatalf("negotiate malformed: got %q, want latest %q", got, Latest)
	}
}

func TestNegotiateAlwaysSupported(t *testing.T) {
	for _, requested := range []string{"2025-06-18", "2024-11-05", "2099-12-31", "1999-01-01", "garbage"} {
		got := Negotiate(requested)
		if !IsSupported(got) {
			t.Fatalf("negotiate(%q) = %q is not a supported version", requested, got)
		}
	}
}

func TestSupportsMonotonicForGatedFeature(t *testing.T) {
	if Supports("2024-11-05", FeatureCancellation) {
		t.Fatalf("cancellation should not be supported before its introduction version")
	}
	if !Supports("2025-06-18", FeatureCancellation) {
		t.Fatalf("cancellation should be supported at its introduction version")
	}
}

func TestSupportsUngatedFeatureEverywhere(t *testing.T) {
	for _, v := range Supported {
		if !Supports(v, FeatureSampling) {
			t.Fatalf("ungated feature sampling should be supported in %q", v)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{"", "2025-06", "25-06-18", "2025-13-01", "abcd-ef-gh"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("Parse(%q) should have failed", c)
		}
	}
}
