package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSense)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseThink)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseSense]; !ok {
		t.Error("expected sense phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseThink]; !ok {
		t.Error("expected think phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseEvolve]; ok {
		t.Error("evolve phase was never entered")
	}
}

func TestPerfCollector_PhasesAccumulate(t *testing.T) {
	pc := NewPerfCollector(10)

	// Phases interleave once per creature.
	pc.StartTick()
	for i := 0; i < 4; i++ {
		pc.StartPhase(PhaseSense)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseEat)
		time.Sleep(50 * time.Microsecond)
	}
	pc.EndTick()

	stats := pc.Stats()
	if stats.PhaseAvg[PhaseSense] < 200*time.Microsecond {
		t.Errorf("sense = %v, want >= 200us accumulated", stats.PhaseAvg[PhaseSense])
	}
	if stats.PhaseAvg[PhaseEat] < 200*time.Microsecond {
		t.Errorf("eat = %v, want >= 200us accumulated", stats.PhaseAvg[PhaseEat])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAct)
		pc.EndTick()
	}

	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want 5", pc.sampleCount)
	}
	stats := pc.Stats()
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 150 * time.Microsecond,
		PhasePct: map[string]float64{
			PhaseSense: 40,
			PhaseThink: 30,
			PhaseEat:   20,
		},
	}

	row := stats.ToCSV(7)
	if row.Generation != 7 || row.AvgTickUS != 150 {
		t.Errorf("row = %+v", row)
	}
	if row.SensePct != 40 || row.ThinkPct != 30 || row.EatPct != 20 || row.ActPct != 0 {
		t.Errorf("phase percentages not mapped: %+v", row)
	}
}
