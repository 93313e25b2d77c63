package raidplan

import (
	"slices"
	"testing"
)

func TestEffectRegistry(t *testing.T) {
	r := NewEffectRegistry(BuiltinEffects()...)
	if got := r.IDs(); !slices.Equal(got, []string{"target-ring", "tether"}) {
		t.Errorf("IDs = %v", got)
	}
	if err := r.Register(TetherEffect()); err == nil {
		t.Error("duplicate Register succeeded")
	}
	if err := r.Register(EffectFactory{ID: "x"}); err == nil {
		t.Error("Register without Create succeeded")
	}

	inst, ok := r.NewEffectInstance("target-ring")
	if !ok || inst.FactoryID != "target-ring" || len(inst.Properties) != 3 {
		t.Errorf("NewEffectInstance = %+v, %v", inst, ok)
	}
	if _, ok := r.NewEffectInstance("nope"); ok {
		t.Error("unknown factory instance ok")
	}

	var nilReg *EffectRegistry
	if _, ok := nilReg.Lookup("tether"); ok {
		t.Error("nil registry lookup ok")
	}
}

func TestNewEffectRegistryPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewEffectRegistry(TetherEffect(), TetherEffect())
}

func TestReconcileEffectsKeepsInstances(t *testing.T) {
	r := NewEffectRegistry(BuiltinEffects()...)
	attached := []EffectInstance{
		{ID: "fx1", FactoryID: "target-ring"},
		{ID: "fx2", FactoryID: "unknown"},
	}
	slots := reconcileEffects(r, nil, attached, testSteps, "s1")
	if len(slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(slots))
	}
	if got := slots[0].props.Number("scale"); got != 1.25 {
		t.Errorf("scale = %v, want default 1.25", got)
	}

	attached[0].Properties = PropertyBag{"scale": Unkeyed[any](2.0)}
	next := reconcileEffects(r, slots, attached, testSteps, "s1")
	if next[0].instanceID != "fx1" || next[0].props.Number("scale") != 2 {
		t.Errorf("reconciled slot = %+v", next[0])
	}

	if got := reconcileEffects(r, next, nil, testSteps, "s1"); len(got) != 0 {
		t.Errorf("detached slots = %d, want 0", len(got))
	}
}
