package main

import (
	"strings"
	"testing"
)

func TestConfirmFleetDestroyApprovedSkipsPrompt(t *testing.T) {
	var out strings.Builder
	if err := confirmFleetDestroy(strings.NewReader(""), &out, true, "prod", 3); err != nil {
		t.Fatalf("approved destroy refused: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("prompt printed despite approval: %q", out.String())
	}
}

func TestConfirmFleetDestroyNonInteractiveRefused(t *testing.T) {
	var out strings.Builder
	err := confirmFleetDestroy(strings.NewReader("y\n"), &out, false, "prod", 3)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("err=%v, want refusal pointing at --yes", err)
	}
}
