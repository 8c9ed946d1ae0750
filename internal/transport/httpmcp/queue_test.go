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

package httpmcp

import "testing"

func TestQueueSinceReplaysOnlyNewerMessages(t *testing.T) {
	q := newQueue()
	id1 := q.Enqueue([]byte(`"first"`))
	id2 := q.Enqueue([]byte(`"second"`))

	replay := q.Since(id1)
	if len(replay) != 1 || replay[0].EventID != id2 {
		t.Fatalf("got %v, want only the message after %s", replay, id1)
	}
}

func TestQueueSinceEmptyReturnsEverythingPending(t *testing.T) {
	q := newQueue()
	q.Enqueue([]byte(`"a"`))
	q.Enqueue([]byte(`"b"`))

	if got := q.Since(""); len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
}

func TestQueueAckRemovesFromPending(t *testing.T) {
	q := newQueue()
	id := q.Enqueue([]byte(`"x"`))
	q.Ack(id)

	if got := q.Pending(); len(got) != 0 {
		t.Fatalf("got %v, want no pending messages after ack", got)
	}
}

func TestQueueBumpRetryDropsAfterMaxRetries(t *testing.T) {
	q := newQueue()
	q.maxRetries = 3
	id := q.Enqueue([]byte(`"x"`))

	if dropped := q.BumpRetry(id); dropped {
		t.Fatal("expected not dropped on first retry")
	}
	if dropped := q.BumpRetry(id); dropped {
		t.Fatal("expected not dropped on second retry")
	}
	if dropped := q.BumpRetry(id); !dropped {
		t.Fatal("expected dropped once retries reach maxRetries")
	}
	if got := q.Pending(); len(got) != 0 {
		t.Fatalf("got %v, want dropped message removed from pending", got)
	}
}
