package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCommandConfidentText(t *testing.T) {
	out, err := runCommand(t, "", "score", "We ship on Friday.")
	if err != nil {
		t.Fatalf("score command failed: %v", err)
	}

	if strings.TrimSpace(out) != "100.0" {
		t.Errorf("Expected score 100.0, got %q", out)
	}
}

func TestScoreCommandHedgedText(t *testing.T) {
	out, err := runCommand(t, "", "score", "I think that maybe this could possibly work.")
	if err != nil {
		t.Fatalf("score command failed: %v", err)
	}

	if strings.TrimSpace(out) == "100.0" {
		t.Error("Expected hedged text to score below 100")
	}
}

func TestRewriteCommandSummary(t *testing.T) {
	out, err := runCommand(t, "", "rewrite", "I think that we should just try it.")
	if err != nil {
		t.Fatalf("rewrite command failed: %v", err)
	}

	if !strings.Contains(out, "Confidence:") {
		t.Errorf("Expected summary output, got %q", out)
	}
	if !strings.Contains(out, "Before:") || !strings.Contains(out, "After:") {
		t.Errorf("Expected before/after lines, got %q", out)
	}
}

func TestRewriteCommandJSON(t *testing.T) {
	out, err := runCommand(t, "", "rewrite", "--json", "Maybe we could improve this.")
	if err != nil {
		t.Fatalf("rewrite command failed: %v", err)
	}

	var record struct {
		ConfidenceBefore float64 `json:"confidence_before"`
		ConfidenceAfter  float64 `json:"confidence_after"`
		Transformed      string  `json:"transformed"`
	}
	if err := json.Unmarshal([]byte(out), &record); err != nil {
		t.Fatalf("Expected valid JSON output, got %q: %v", out, err)
	}

	if record.ConfidenceAfter < record.ConfidenceBefore {
		t.Errorf("Expected confidence to not decrease: before=%.1f after=%.1f",
			record.ConfidenceBefore, record.ConfidenceAfter)
	}
}

func TestRewriteCommandDiff(t *testing.T) {
	out, err := runCommand(t, "", "rewrite", "--diff", "I think this works.")
	if err != nil {
		t.Fatalf("rewrite command failed: %v", err)
	}

	if !strings.Contains(out, "[-") {
		t.Errorf("Expected diff output with deletions, got %q", out)
	}
}

func TestRewriteCommandFromStdin(t *testing.T) {
	out, err := runCommand(t, "I guess that could work.\n", "rewrite")
	if err != nil {
		t.Fatalf("rewrite command failed: %v", err)
	}

	if !strings.Contains(out, "Confidence:") {
		t.Errorf("Expected summary output, got %q", out)
	}
}

func TestRewriteCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("Sorry to bother you, but maybe we could talk."), 0o644); err != nil {
		t.Fatalf("Failed to write input file: %v", err)
	}

	out, err := runCommand(t, "", "rewrite", "--file", path)
	if err != nil {
		t.Fatalf("rewrite command failed: %v", err)
	}

	if !strings.Contains(out, "Confidence:") {
		t.Errorf("Expected summary output, got %q", out)
	}
}

func TestRewriteCommandNoInput(t *testing.T) {
	_, err := runCommand(t, "", "rewrite")
	if err == nil {
		t.Error("Expected an error when no input is provided")
	}
}
