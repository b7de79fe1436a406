package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestErrorFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "error.log")

	Init(Config{Level: "debug", ErrorFile: file})
	UpdatePrefix("petcoin-test")

	Println("normal output is not written to the error file")
	Errorf("lockUpRelease failed: %s", "reverted")
	Sync()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read error file: %v", err)
	}

	if !strings.Contains(string(content), "lockUpRelease failed: reverted") {
		t.Errorf("error line missing from error file: %q", content)
	}

	if strings.Contains(string(content), "normal output") {
		t.Errorf("normal line written to error file: %q", content)
	}

	if !strings.Contains(string(content), "petcoin-test") {
		t.Errorf("prefix missing from error file: %q", content)
	}
}
