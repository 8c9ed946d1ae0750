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

// Feature names gated by protocol version, per §3/§4.2. Features not
// listed in featureIntroducedIn are considered available in every
// supported version (unknown features default to true, matching the
// original implementation's table).
const (
	FeatureResourceSubscriptions = "resource_subscriptions"
	FeatureProgressTracking      = "progress_tracking"
	FeatureEnhancedErrorCodes    = "enhanced_error_codes"
	FeatureListChangedNotifs     = "list_changed_notifications"
	FeatureCancellation          = "cancellation"
	FeatureSampling              = "sampling"
	FeatureElicitation           = "elicitation"
	FeatureCompletion            = "completion"
	FeatureLogging               = "logging"
	FeatureTools                 = "tools"
	FeatureResources             = "resources"
	FeaturePrompts               = "prompts"
	FeatureRoots                 = "roots"
)

// featureIntroducedIn maps a feature to the earliest version it appeared
// in. All five of these were introduced together in 2025-06-18; the rest
// have been available since the oldest supported version.
var featureIntroducedIn = map[string]string{
	FeatureResourceSubscriptions: "2025-06-18",
	FeatureProgressTracking:      "2025-06-18",
	FeatureEnhancedErrorCodes:    "2025-06-18",
	FeatureListChangedNotifs:     "2025-06-18",
	FeatureCancellation:          "2025-06-18",
}

// Supports reports whether version v satisfies feature f. A feature with
// no recorded introduction version is treated as available everywhere.
func Supports(v string, f string) bool {
	introducedIn, gated := featureIntroducedIn[f]
	if !gated {
		return true
	}
	ver, err := Parse(v)
	if err != nil {
		return false
	}
	introVer, err := Parse(introducedIn)
	if err != nil {
		return false
	}
	return !ver.Less(introVer)
}

// ListChanged mirrors the optional "listChanged" feature block shared by
// tools/resources/prompts capability records.
type ListChanged struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

// ResourcesCapability additionally gates subscription support.
type ResourcesCapability struct {
	Subscribe   *bool `json:"subscribe,omitempty"`
	ListChanged *bool `json:"listChanged,omitempty"`
}

// ClientCapabilities is the capability block a client advertises during
// initialize.
type ClientCapabilities struct {
	Experimental map[string]any `json:"experimental,omitempty"`
	Roots        *ListChanged   `json:"roots,omitempty"`
	Sampling     *struct{}      `json:"sampling,omitempty"`
	Elicitation  *struct{}      `json:"elicitation,omitempty"`
}

// ServerCapabilities is the capability block a server advertises during
// initialize.
type ServerCapabilities struct {
	Experimental map[string]any       `json:"experimental,omitempty"`
	Tools        *ListChanged         `json:"tools,omitempty"`
	Resources    *ResourcesCapability `json:"resources,omitempty"`
	Prompts      *ListChanged         `json:"prompts,omitempty"`
	Logging      *struct{}            `json:"logging,omitempty"`
	Completion   *struct{}            `json:"completion,omitempty"`
}

// SupportsResourceSubscribe reports whether caps.resources.subscribe is
// advertised true, the gate C9's subscribe operation enforces.
func SupportsResourceSubscribe(caps *ServerCapabilities) bool {
	return caps != nil && caps.Resources != nil && caps.Resources.Subscribe != nil && *caps.Resources.Subscribe
}

// SupportsResourceListChanged reports whether resources.listChanged is advertised.
func SupportsResourceListChanged(caps *ServerCapabilities) bool {
	return caps != nil && caps.Resources != nil && caps.Resources.ListChanged != nil && *caps.Resources.ListChanged
}

// SupportsToolsListChanged reports whether tools.listChanged is advertised.
func SupportsToolsListChanged(caps *ServerCapabilities) bool {
	return caps != nil && caps.Tools != nil && caps.Tools.ListChanged != nil && *caps.Tools.ListChanged
}

// SupportsPromptsListChanged reports whether prompts.listChanged is advertised.
func SupportsPromptsListChanged(caps *ServerCapabilities) bool {
	return caps != nil && caps.Prompts != nil && caps.Prompts.ListChanged != nil && *caps.Prompts.ListChanged
}
