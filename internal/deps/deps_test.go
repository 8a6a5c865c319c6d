package deps_test

import (
	"strings"
	"testing"

	"mimic/internal/deps"
)

func TestCheckBinaries(t *testing.T) {
	requirements := []deps.Requirement{
		{Name: "Shell", Command: "sh", Description: "always present on linux"},
		{Name: "Ghost", Command: "definitely-not-a-real-binary-xyz"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	statuses := deps.CheckBinaries(requirements)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	if !statuses[0].Available {
		t.Fatalf("sh should resolve: %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("missing binary reported available: %+v", statuses[1])
	}
	if !strings.Contains(statuses[1].Detail, "not found") {
		t.Fatalf("unexpected detail %q", statuses[1].Detail)
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("blank command: %+v", statuses[2])
	}
	if !statuses[2].Optional {
		t.Fatal("optional flag should carry through")
	}
}
