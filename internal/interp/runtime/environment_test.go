package runtime

import "testing"

type testValue struct{ n int }

func (testValue) Type() string { return "test" }
func (testValue) Truthy() bool { return true }

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment()
	env.Define(1, testValue{n: 10})

	got := env.Get(1).(testValue)
	if got.n != 10 {
		t.Errorf("expected 10, got %d", got.n)
	}
}

func TestLookupWalksDownTheStack(t *testing.T) {
	env := NewEnvironment()
	env.Define(1, testValue{n: 1})
	env.Push()
	env.Push()

	if got := env.Get(1).(testValue); got.n != 1 {
		t.Errorf("expected outer binding, got %d", got.n)
	}
}

func TestShadowingInInnerLayer(t *testing.T) {
	env := NewEnvironment()
	env.Define(1, testValue{n: 1})
	env.Push()
	env.Define(1, testValue{n: 2})

	if got := env.Get(1).(testValue); got.n != 2 {
		t.Errorf("expected inner binding, got %d", got.n)
	}

	env.Pop()
	if got := env.Get(1).(testValue); got.n != 1 {
		t.Errorf("expected outer binding after pop, got %d", got.n)
	}
}

func TestAssignWritesNearestBinding(t *testing.T) {
	env := NewEnvironment()
	env.Define(1, testValue{n: 1})
	env.Push()

	env.Assign(1, testValue{n: 5})
	env.Pop()

	if got := env.Get(1).(testValue); got.n != 5 {
		t.Errorf("assignment did not reach the defining layer, got %d", got.n)
	}
}

func TestCloneSharesLayers(t *testing.T) {
	env := NewEnvironment()
	env.Define(1, testValue{n: 1})

	clone := env.Clone()
	clone.Assign(1, testValue{n: 9})

	if got := env.Get(1).(testValue); got.n != 9 {
		t.Errorf("mutation through clone invisible to original, got %d", got.n)
	}
}

func TestCloneNewLayersAreIndependent(t *testing.T) {
	env := NewEnvironment()
	clone := env.Clone()
	clone.Push()
	clone.Define(2, testValue{n: 2})

	if _, ok := env.Lookup(2); ok {
		t.Error("binding in clone's new layer leaked into the original")
	}
}

func TestGetPanicsOnUnresolvedId(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unresolved id")
		}
	}()
	NewEnvironment().Get(42)
}
