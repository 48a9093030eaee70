package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

func TestParseTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		wantName  string
		wantPhase string
		wantErr   error
	}{
		{"wordcount-map", "wordcount", "map", nil},
		{"wordcount-reduce", "wordcount", "reduce", nil},
		{"titleindex-reduce.exe", "titleindex", "reduce", nil},
		{"mrworker", "", "", execreduce.ErrUsage},
		{"wordcount-combine", "", "", execreduce.ErrUsage},
		{"nope-map", "", "", execreduce.ErrUnknownExecutor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseTask(tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseTask(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTask(%q) failed: %v", tt.name, err)
			}
			if got.name != tt.wantName || got.phase != tt.wantPhase {
				t.Errorf("parseTask(%q) = %s/%s, want %s/%s", tt.name, got.name, got.phase, tt.wantName, tt.wantPhase)
			}
		})
	}
}

func TestTaskName(t *testing.T) {
	t.Setenv(taskEnv, "")
	if got := taskName([]string{"/usr/local/bin/average-reduce"}); got != "average-reduce" {
		t.Errorf("taskName from argv = %q, want %q", got, "average-reduce")
	}

	t.Setenv(taskEnv, "maxvalue-map")
	if got := taskName([]string{"/usr/local/bin/average-reduce"}); got != "maxvalue-map" {
		t.Errorf("taskName from env = %q, want %q", got, "maxvalue-map")
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		task     string
		input    string
		want     string
		wantCode int
	}{
		{"wordcount-map", "1\ta b a\n", "a\t1\nb\t1\na\t1\n", exitOK},
		{"wordcount-reduce", "a\t1\na\t2\n", "a\t3\n", exitOK},
		{"actioncount-map", "7\tuser_1 did login\n", "login\t1\n", exitOK},
		{"wordcount-map", "no tab here\n", "", exitFailure},
		{"unknown-map", "a\t1\n", "", exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			code := run(tt.task, strings.NewReader(tt.input), &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("run(%q) = %d, want %d (stderr: %s)", tt.task, code, tt.wantCode, stderr.String())
			}
			if code == exitOK && stdout.String() != tt.want {
				t.Errorf("run(%q) output = %q, want %q", tt.task, stdout.String(), tt.want)
			}
			if code != exitOK && stderr.Len() == 0 {
				t.Error("expected a diagnostic on stderr")
			}
		})
	}
}
