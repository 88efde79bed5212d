package main

import "testing"

func TestRunNoArgs(t *testing.T) {
	if code := run([]string{"airraft"}); code != 1 {
		t.Errorf("no command should exit 1, got %d", code)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"airraft", "frobnicate"}); code != 1 {
		t.Errorf("unknown command should exit 1, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		if code := run([]string{"airraft", arg}); code != 0 {
			t.Errorf("%s should exit 0, got %d", arg, code)
		}
	}
}

func TestRunVersion(t *testing.T) {
	if code := run([]string{"airraft", "version"}); code != 0 {
		t.Errorf("version should exit 0, got %d", code)
	}
	if code := run([]string{"airraft", "version", "-short"}); code != 0 {
		t.Errorf("version -short should exit 0, got %d", code)
	}
}

func TestParsePNodes(t *testing.T) {
	values, err := parsePNodes("0.5, 0.8,1.0")
	if err != nil {
		t.Fatalf("parsePNodes failed: %v", err)
	}
	if len(values) != 3 || values[0] != 0.5 || values[2] != 1.0 {
		t.Errorf("parsed %v", values)
	}

	if _, err := parsePNodes("0.5,oops"); err == nil {
		t.Error("garbage value accepted")
	}
	if _, err := parsePNodes(" , "); err == nil {
		t.Error("empty list accepted")
	}
}

func TestGainCmdRequiresAction(t *testing.T) {
	if code := gainCmd([]string{}); code != 1 {
		t.Errorf("gain with no action should exit 1, got %d", code)
	}
}

func TestServeCmdRejectsBadConfig(t *testing.T) {
	if code := serveCmd([]string{"-config", "/nonexistent/path.yaml"}); code != 1 {
		t.Errorf("missing config file should exit 1, got %d", code)
	}
	if code := serveCmd([]string{"-id", "9"}); code != 1 {
		t.Errorf("id beyond cluster should fail validation, got %d", code)
	}
}
