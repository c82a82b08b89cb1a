package playground

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeferred_CoalescesBurst(t *testing.T) {
	loop := NewLoop()
	var seen []string
	d := NewDeferred("", loop, func(v string) { seen = append(seen, v) })

	d.Set("a")
	d.Set("b")
	d.Set("c")
	if d.Latest() != "c" || d.Settled() != "" {
		t.Fatalf("before settle: latest=%q settled=%q", d.Latest(), d.Settled())
	}
	if !d.Pending() {
		t.Fatal("a settle should be pending")
	}

	if n := loop.RunPending(); n != 1 {
		t.Errorf("RunPending ran %d tasks, want one settle for the burst", n)
	}
	if diff := cmp.Diff([]string{"c"}, seen); diff != "" {
		t.Errorf("settled values (-want +got):\n%s", diff)
	}
	if d.Pending() {
		t.Error("nothing should be pending after the settle")
	}
}

func TestDeferred_NextBurst(t *testing.T) {
	loop := NewLoop()
	var seen []int
	d := NewDeferred(0, loop, func(v int) { seen = append(seen, v) })

	d.Set(1)
	loop.RunPending()
	d.Set(2)
	d.Set(3)
	loop.RunPending()

	if diff := cmp.Diff([]int{1, 3}, seen); diff != "" {
		t.Errorf("settled values (-want +got):\n%s", diff)
	}
}

func TestDeferred_ImmediateByDefault(t *testing.T) {
	d := NewDeferred("x", nil, nil)
	d.Set("y")
	if d.Settled() != "y" || d.Pending() {
		t.Errorf("nil scheduler should settle synchronously, got settled=%q pending=%v", d.Settled(), d.Pending())
	}
}

func TestLoop_UrgentBeforeIdle(t *testing.T) {
	loop := NewLoop()
	var order []string

	loop.Defer(func() { order = append(order, "idle1") })
	loop.Post(func() { order = append(order, "urgent1") })
	loop.Defer(func() {
		order = append(order, "idle2")
		loop.Post(func() { order = append(order, "urgent3") })
		loop.Defer(func() { order = append(order, "idle3") })
	})
	loop.Post(func() { order = append(order, "urgent2") })

	loop.RunPending()
	want := []string{"urgent1", "urgent2", "idle1", "idle2", "urgent3"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if loop.Idle() {
		t.Error("idle work queued during a quantum should wait for the next")
	}

	loop.RunPending()
	if order[len(order)-1] != "idle3" || !loop.Idle() {
		t.Errorf("second quantum should run idle3, got %v", order)
	}
}
