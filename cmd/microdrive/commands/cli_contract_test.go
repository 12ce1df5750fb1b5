package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestCLIContract(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}

	out := b.String()
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage info in root help")
	}

	for _, sub := range []string{"run", "boards", "doctor", "report", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected %q subcommand in root help", sub)
		}
	}
}

func TestCLICommandRunHelp(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"run", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("run help failed: %v", err)
	}

	out := b.String()
	for _, flag := range []string{"--board", "--hardware", "--tvmc", "--keep-scratch", "--fill-mode"} {
		if !strings.Contains(out, flag) {
			t.Errorf("expected %q flag in run help", flag)
		}
	}
}

func TestCLIVersion(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(b.String(), "microdrive version") {
		t.Errorf("expected version output, got %q", b.String())
	}
}
