package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// Property: whatever sequence of records and queries runs against a single
// ledger instance, assigned IDs are strictly monotonically increasing and
// always formatted DEC-NNN.
func TestLedger_IDMonotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		l, err := New(ctx, NewMemoryStore(), zap.NewNop())
		if err != nil {
			t.Fatalf("new ledger: %v", err)
		}

		n := rapid.IntRange(1, 50).Draw(t, "records")
		prev := 0
		for i := 0; i < n; i++ {
			actor := rapid.SampledFrom([]string{"alice", "bob", "carol"}).Draw(t, "actor")
			d, err := l.RecordDecision(ctx, Decision{
				Actor: actor,
				Title: fmt.Sprintf("decision %d", i),
			})
			if err != nil {
				t.Fatalf("record: %v", err)
			}

			seq, ok := parseDecisionID(d.ID)
			if !ok {
				t.Fatalf("malformed id %q", d.ID)
			}
			if seq <= prev {
				t.Fatalf("id %q not strictly increasing after %d", d.ID, prev)
			}
			prev = seq
		}

		all, err := l.List(ctx, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != n {
			t.Fatalf("expected %d records, got %d", n, len(all))
		}
	})
}

func parseDecisionID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "DEC-")
	if !ok || len(rest) < 3 {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}
