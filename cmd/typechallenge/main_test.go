package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/verte-zerg/typechallenge/internal/config"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseLevelRef(t *testing.T) {
	catalog, err := levels.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	for _, ref := range []string{"easy/2", "Easy:2", "easy2"} {
		level, err := parseLevelRef(catalog, ref)
		if err != nil {
			t.Fatalf("%s: %v", ref, err)
		}
		if level.Difficulty != model.Easy || level.Number != 2 {
			t.Fatalf("%s: unexpected level %+v", ref, level)
		}
	}
	for _, ref := range []string{"", "2", "easy/x", "extreme/1", "hard/9"} {
		if _, err := parseLevelRef(catalog, ref); err == nil {
			t.Fatalf("%q: expected error", ref)
		}
	}
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false, "yes": true}
	for in, want := range cases {
		got, err := confirm(strings.NewReader(in), io.Discard, "? ")
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != config.Template {
		t.Fatalf("expected template contents")
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should parse: %v", err)
	}

	if err := os.WriteFile(path, []byte("[player]\nuser = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `user = "x"`) {
		t.Fatalf("existing config was overwritten")
	}
}

func TestLevelsCommand(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "", "levels")
	if err != nil {
		t.Fatalf("levels: %v", err)
	}
	if !strings.Contains(out, "Easy 1") || !strings.Contains(out, "Min WPM") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestAccountAndProgressCommands(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "", "register", "--name", "Ada Lovelace", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	username := regexp.MustCompile(`Username: (\S+)`).FindStringSubmatch(out)
	password := regexp.MustCompile(`Password: (\S+)`).FindStringSubmatch(out)
	if username == nil || password == nil {
		t.Fatalf("credentials not printed:\n%s", out)
	}

	if _, err := runCLI(t, "", "register", "--name", "Ada", "--email", "ada@example.com"); err == nil {
		t.Fatalf("expected duplicate e-mail error")
	}

	out, err = runCLI(t, password[1]+"\n", "login", "--user", "ada@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as Ada Lovelace ("+username[1]) {
		t.Fatalf("unexpected login output %q", out)
	}
	if _, err := runCLI(t, "", "login", "--user", username[1], "--password", "wrong"); err == nil {
		t.Fatalf("expected invalid credentials")
	}

	out, err = runCLI(t, "", "progress", "--user", username[1])
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !strings.Contains(out, "Completed: 0/10 (0%)") || !strings.Contains(out, "Impossible: locked") {
		t.Fatalf("unexpected progress output:\n%s", out)
	}

	out, err = runCLI(t, "n\n", "reset", "--user", username[1])
	if err != nil || strings.Contains(out, "Progress reset") {
		t.Fatalf("declined reset should do nothing: %v %q", err, out)
	}
	out, err = runCLI(t, "", "reset", "--user", username[1], "--yes")
	if err != nil || !strings.Contains(out, "Progress reset for "+username[1]) {
		t.Fatalf("reset: %v %q", err, out)
	}

	out, err = runCLI(t, "", "users")
	if err != nil || !strings.Contains(out, username[1]) {
		t.Fatalf("users: %v %q", err, out)
	}
	out, err = runCLI(t, "", "users", "delete", username[1], "--yes")
	if err != nil || !strings.Contains(out, "Deleted") {
		t.Fatalf("delete: %v %q", err, out)
	}
	out, err = runCLI(t, "", "users")
	if err != nil || !strings.Contains(out, "No registered users.") {
		t.Fatalf("users after delete: %v %q", err, out)
	}
}

func TestProgressRequiresUser(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "", "progress"); err == nil || !strings.Contains(err.Error(), "--user is required") {
		t.Fatalf("expected missing user error, got %v", err)
	}
}

func TestStoreFlagValidation(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "", "levels", "--store", "mongo"); err == nil {
		t.Fatalf("expected invalid --store error")
	}
}

// chdirForTest changes the working directory for the duration of the test,
// restoring the previous one on cleanup (equivalent to testing.T.Chdir).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
