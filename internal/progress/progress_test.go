package progress_test

import (
	"context"
	"testing"
	"time"

	"autoposter/internal/progress"
)

func TestPhaseThresholds(t *testing.T) {
	cases := map[int]int{0: 0, 10: 0, 19: 0, 20: 1, 39: 1, 40: 2, 60: 3, 80: 4, 99: 4, 100: 4}
	for percent, want := range cases {
		if got := progress.PhaseFor(percent); got != want {
			t.Fatalf("PhaseFor(%d) = %d, want %d", percent, got, want)
		}
	}
	if label := progress.At(45).Label; label != "content generation" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestSimulatorRunsToCompletion(t *testing.T) {
	sim := progress.New(time.Millisecond, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updates []progress.Update
	for update := range sim.Start(ctx) {
		updates = append(updates, update)
	}
	if len(updates) != 11 {
		t.Fatalf("expected 11 updates, got %d", len(updates))
	}
	if updates[0].Percent != 0 {
		t.Fatalf("expected first update at 0, got %d", updates[0].Percent)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].Percent <= updates[i-1].Percent {
			t.Fatalf("percent not strictly increasing at %d: %+v", i, updates)
		}
	}
	last := updates[len(updates)-1]
	if last.Percent != 100 || !last.Done || last.Phase != 4 {
		t.Fatalf("unexpected final update %+v", last)
	}
}

func TestSimulatorClampsUnevenSteps(t *testing.T) {
	sim := progress.New(time.Millisecond, 30)
	var percents []int
	for update := range sim.Start(context.Background()) {
		percents = append(percents, update.Percent)
	}
	want := []int{0, 30, 60, 90, 100}
	if len(percents) != len(want) {
		t.Fatalf("expected %v, got %v", want, percents)
	}
	for i := range want {
		if percents[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, percents)
		}
	}
}

func TestSimulatorStopsOnCancel(t *testing.T) {
	sim := progress.New(time.Hour, 10)
	ctx, cancel := context.WithCancel(context.Background())
	ch := sim.Start(ctx)
	first := <-ch
	if first.Percent != 0 {
		t.Fatalf("expected 0, got %d", first.Percent)
	}
	cancel()
	select {
	case update, ok := <-ch:
		if ok {
			t.Fatalf("received update after cancel: %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestEachRunRestartsAtZero(t *testing.T) {
	sim := progress.New(time.Millisecond, 50)
	for run := 0; run < 2; run++ {
		ch := sim.Start(context.Background())
		if first := <-ch; first.Percent != 0 {
			t.Fatalf("run %d started at %d", run, first.Percent)
		}
		for range ch {
		}
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	if progress.New(0, 0) == nil || progress.NewFromConfig(nil) == nil {
		t.Fatal("expected simulator")
	}
}

func TestSimulatorSendsNothingAfterCancel(t *testing.T) {
	sim := progress.New(time.Millisecond, 1)
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		updates := sim.Start(ctx)
		if first, ok := <-updates; !ok || first.Percent != 0 {
			cancel()
			t.Fatalf("run %d: expected 0%% first, got %+v ok=%v", i, first, ok)
		}
		cancel()
		// Let the ticker fire so both the tick and cancellation are ready.
		time.Sleep(3 * time.Millisecond)
		if update, ok := <-updates; ok {
			t.Fatalf("run %d: update %+v delivered after cancel", i, update)
		}
	}
}
