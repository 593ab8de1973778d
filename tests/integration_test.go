package tests

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// binaryName returns the appropriate binary name for the current OS
func binaryName() string {
	if runtime.GOOS == "windows" {
		return "mwaw2md_test.exe"
	}
	return "mwaw2md_test"
}

// buildTestBinary builds the test binary and returns a cleanup function
func buildTestBinary(t *testing.T) (string, func()) {
	t.Helper()
	binName := binaryName()
	buildCmd := exec.Command("go", "build", "-o", binName, "../cmd/mwaw2md")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("failed to build binary: %v", err)
	}
	return binName, func() { os.Remove(binName) }
}

// command runs the binary with an isolated home directory so no user
// configuration is picked up.
func command(t *testing.T, binPath string, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("./"+binPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	return cmd
}

func TestConvertCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	dir := t.TempDir()
	sampleFile := filepath.Join(dir, "memo.wri")
	if err := os.WriteFile(sampleFile, writeDoc("Sample text\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	unsupported := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(unsupported, []byte("plain"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantOutput []string
	}{
		{
			name:       "basic convert",
			args:       []string{"convert", sampleFile},
			wantOutput: []string{"Sample text"},
		},
		{
			name:       "convert with verbose",
			args:       []string{"convert", sampleFile, "-v"},
			wantOutput: []string{"파일 형식: mswrite"},
		},
		{
			name:       "convert as json",
			args:       []string{"convert", sampleFile, "--format", "json"},
			wantOutput: []string{`"format": "mswrite"`},
		},
		{
			name:    "convert non-existent file",
			args:    []string{"convert", "nonexistent.wri"},
			wantErr: true,
		},
		{
			name:       "convert unsupported format",
			args:       []string{"convert", unsupported},
			wantErr:    true,
			wantOutput: []string{"지원하지 않는 파일 형식"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := command(t, binPath, tc.args...).CombinedOutput()

			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v\noutput: %s", err, output)
				}
			}

			for _, want := range tc.wantOutput {
				if !strings.Contains(string(output), want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestExtractCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	sampleFile := filepath.Join(t.TempDir(), "memo.wri")
	if err := os.WriteFile(sampleFile, writeDoc("Sample text\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantFormat string
	}{
		{
			name:       "extract as json",
			args:       []string{"extract", sampleFile},
			wantFormat: "json",
		},
		{
			name:       "extract as text",
			args:       []string{"extract", sampleFile, "--format", "text"},
			wantFormat: "text",
		},
		{
			name:    "extract non-existent file",
			args:    []string{"extract", "nonexistent.wri"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := command(t, binPath, tc.args...).CombinedOutput()

			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v\noutput: %s", err, output)
				}

				if tc.wantFormat == "json" && !strings.Contains(string(output), "{") {
					t.Errorf("expected JSON output, got: %s", output)
				}
				if tc.wantFormat == "text" && !strings.Contains(string(output), "형식: mswrite") {
					t.Errorf("expected text summary, got: %s", output)
				}
			}
		})
	}
}

func TestEntriesCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	sampleFile := filepath.Join(t.TempDir(), "memo.wri")
	if err := os.WriteFile(sampleFile, writeDoc("Sample text\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := command(t, binPath, "entries", sampleFile).CombinedOutput()
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, output)
	}
	for _, want := range []string{"형식: mswrite", "상태: done", `"TEXT"`, `"CHP "`, "consumed"} {
		if !strings.Contains(string(output), want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	output, err := command(t, binPath, "version").CombinedOutput()

	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}

	for _, want := range []string{"mwaw2md", "mswrite", "works", "mactext"} {
		if !strings.Contains(string(output), want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	t.Run("config show", func(t *testing.T) {
		output, err := command(t, binPath, "config", "show").CombinedOutput()

		if err != nil {
			t.Errorf("unexpected error: %v\noutput: %s", err, output)
		}

		if !strings.Contains(string(output), "default_encoding") {
			t.Errorf("output should contain 'default_encoding', got: %s", output)
		}
	})

	t.Run("config path", func(t *testing.T) {
		output, err := command(t, binPath, "config", "path").CombinedOutput()

		if err != nil {
			t.Errorf("unexpected error: %v\noutput: %s", err, output)
		}

		if !strings.Contains(string(output), "config.yaml") {
			t.Errorf("output should contain 'config.yaml', got: %s", output)
		}
	})

	t.Run("config set rejects bad values", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		output, err := command(t, binPath, "--config", cfgPath, "config", "set", "output.format", "html").CombinedOutput()
		if err == nil {
			t.Errorf("expected error, got: %s", output)
		}
	})
}

func TestHelpCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	output, err := command(t, binPath, "--help").CombinedOutput()

	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}

	expectedStrings := []string{"mwaw2md", "convert", "extract", "entries", "config"}
	for _, s := range expectedStrings {
		if !strings.Contains(string(output), s) {
			t.Errorf("output should contain %q, got: %s", s, output)
		}
	}
}
