package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// TraceSnapshot is the canonical-JSON form of a scenario run, the unit
// of golden file comparison.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Trace        []TickTrace `json:"trace"`
}

// toCanonicalMap converts the snapshot to plain maps and slices for
// canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	ticks := make([]any, len(s.Trace))
	for i, t := range s.Trace {
		tickMap := map[string]any{
			"tick":    t.Tick,
			"enabled": t.Enabled,
		}
		if len(t.Blocks) > 0 {
			blocks := make([]any, len(t.Blocks))
			for j, b := range t.Blocks {
				blockMap := map[string]any{"id": b.ID}
				if len(b.Outputs) > 0 {
					blockMap["outputs"] = anyMap(b.Outputs)
				}
				if b.Error != "" {
					blockMap["error"] = b.Error
				}
				blocks[j] = blockMap
			}
			tickMap["blocks"] = blocks
		}
		ticks[i] = tickMap
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         ticks,
	}
}

func anyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{ScenarioName: scenario.Name, Trace: result.Trace}
	traceJSON, err := graph.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return result, nil
}
