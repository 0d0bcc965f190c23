package syncx

import (
	"sync"
	"testing"
)

func TestGuardReadWrite(t *testing.T) {
	g := NewGuard(42)

	g.Read(func(v int) {
		if v != 42 {
			t.Errorf("Read() saw %d, want 42", v)
		}
	})

	g.Write(func(v *int) { *v = 100 })
	g.Read(func(v int) {
		if v != 100 {
			t.Errorf("Read() after Write saw %d, want 100", v)
		}
	})
}

func TestGuardConcurrentWrite(t *testing.T) {
	g := NewGuard(0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Write(func(v *int) { *v++ })
		}()
	}
	wg.Wait()

	g.Read(func(v int) {
		if v != 100 {
			t.Errorf("Read() saw %d, want 100", v)
		}
	})
}

func TestGateOpen(t *testing.T) {
	g := NewGate()
	if g.IsOpen() {
		t.Fatal("new gate should be closed")
	}

	g.Open()
	g.Open()

	if !g.IsOpen() {
		t.Fatal("gate should be open after Open")
	}
}

func TestGateConcurrentOpen(t *testing.T) {
	g := NewGate()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Open()
			_ = g.IsOpen()
		}()
	}
	wg.Wait()

	if !g.IsOpen() {
		t.Error("gate should be open")
	}
}
