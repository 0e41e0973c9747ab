package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()

	props := filepath.Join(dir, "props.csv")
	content := "בעלות,תיאור,שווי\n" +
		"ליאת נטוביץ,\"1. לביא 6, רמת גן\",1500000\n" +
		",\"2. מנדלי 7, תל אביב\",\"2,000,000\"\n"
	if err := os.WriteFile(props, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"version", []string{"--version"}, exitOK, "rentport dev\ncommit: none", ""},
		{"help", []string{"-h"}, exitOK, "--properties", ""},
		{"no input", nil, exitInvalidConfig, "", "no properties or leases input"},
		{"bad pivot", []string{"--properties", props, "--date.pivot", "120"}, exitInvalidConfig, "", "date pivot 120"},
		{"unknown flag", []string{"--nope"}, exitInvalidConfig, "", "unknown flag: --nope"},
		{"bad flag value", []string{"--date.pivot", "x"}, exitInvalidConfig, "", "date.pivot"},
		{"stray argument", []string{"file.xlsx"}, exitInvalidConfig, "", "file.xlsx"},
		{"interactive bad pivot", []string{"-i", "--date.pivot", "150"}, exitInvalidConfig, "", "date pivot 150"},
		{"interactive bad score", []string{"--interactive", "--match.minScore", "500"}, exitInvalidConfig, "", "match minimum score 500"},
		{"converts", []string{"--properties", props, "--out", out}, exitOK, "Conversion Complete", "properties converted"},
		{"nothing produced", []string{"--properties", empty, "--out", out}, exitNoRecords, "No records were produced", "source failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, stdout.String(), stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}

	if _, err := os.Stat(filepath.Join(out, "properties_from_excel.csv")); err != nil {
		t.Errorf("properties file not written: %v", err)
	}
}

func TestTermWidth(t *testing.T) {
	var buf bytes.Buffer
	if got := termWidth(&buf); got != defaultWidth {
		t.Errorf("termWidth(buffer) = %d, want %d", got, defaultWidth)
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := termWidth(f); got != defaultWidth {
		t.Errorf("termWidth(file) = %d, want %d", got, defaultWidth)
	}
}
