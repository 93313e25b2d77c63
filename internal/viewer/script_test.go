package viewer

import "testing"

func TestLoadScript(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"valid", `{"steps":[{"action":"click","x":1,"y":2},{"action":"wait","frames":3}]}`, false},
		{"key", `{"steps":[{"action":"key","key":"undo"}]}`, false},
		{"empty", `{"steps":[]}`, true},
		{"malformed", `{"steps":`, true},
		{"unknown action", `{"steps":[{"action":"teleport"}]}`, true},
		{"key without name", `{"steps":[{"action":"key"}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadScript error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScriptClickThenDelete(t *testing.T) {
	v, ed, shapeID := newTestViewer(t)
	script, err := LoadScript([]byte(`{"steps":[
		{"action":"click","x":134,"y":134},
		{"action":"key","key":"delete"},
		{"action":"screenshot","label":"after delete"}
	]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	v.script = script

	runFrames(v, 20)

	if !script.Done() {
		t.Fatal("script not done")
	}
	if errs := script.Errors(); len(errs) != 0 {
		t.Errorf("script errors = %v", errs)
	}
	if _, ok := ed.State().Entities[shapeID]; ok {
		t.Error("shape still exists after scripted delete")
	}
	if len(v.shots) != 1 || v.shots[0] != "after delete" {
		t.Errorf("queued shots = %v, want [after delete]", v.shots)
	}
}

func TestScriptWait(t *testing.T) {
	v, _, _ := newTestViewer(t)
	script, err := LoadScript([]byte(`{"steps":[{"action":"wait","frames":3}]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	v.script = script

	frames := 0
	for !script.Done() && frames < 10 {
		v.tick(clock, nil)
		frames++
	}
	if frames != 4 {
		t.Errorf("wait 3 finished after %d frames, want 4", frames)
	}
}

func TestScriptKeyError(t *testing.T) {
	v, _, _ := newTestViewer(t)
	script, err := LoadScript([]byte(`{"steps":[{"action":"key","key":"explode"}]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	v.script = script
	runFrames(v, 5)
	if len(script.Errors()) != 1 {
		t.Errorf("Errors() = %v, want one error", script.Errors())
	}
}
