// ABOUTME: Tests for the .env file loader that reads KEY=VALUE pairs into the process environment.
// ABOUTME: Covers plain values, quoted values, comments, and no-clobber behavior.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_A=hello\nexport TEST_DOTENV_B=world\n")
	t.Setenv("TEST_DOTENV_A", "")
	t.Setenv("TEST_DOTENV_B", "")
	os.Unsetenv("TEST_DOTENV_A")
	os.Unsetenv("TEST_DOTENV_B")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_A"); got != "hello" {
		t.Errorf("expected TEST_DOTENV_A=hello, got %q", got)
	}
	if got := os.Getenv("TEST_DOTENV_B"); got != "world" {
		t.Errorf("expected TEST_DOTENV_B=world, got %q", got)
	}
}

func TestLoadDotEnvQuotedValues(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_Q=\"quoted value\"\nTEST_DOTENV_S='single quoted'\n")
	for _, key := range []string{"TEST_DOTENV_Q", "TEST_DOTENV_S"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_Q"); got != "quoted value" {
		t.Errorf("expected TEST_DOTENV_Q='quoted value', got %q", got)
	}
	if got := os.Getenv("TEST_DOTENV_S"); got != "single quoted" {
		t.Errorf("expected TEST_DOTENV_S='single quoted', got %q", got)
	}
}

func TestLoadDotEnvSkipsCommentsAndBlanks(t *testing.T) {
	path := writeTempEnv(t, "# comment\n\nTEST_DOTENV_C=yes\n")
	t.Setenv("TEST_DOTENV_C", "")
	os.Unsetenv("TEST_DOTENV_C")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_C"); got != "yes" {
		t.Errorf("expected TEST_DOTENV_C=yes, got %q", got)
	}
}

func TestLoadDotEnvDoesNotClobber(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_K=from-file\n")
	t.Setenv("TEST_DOTENV_K", "from-env")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_K"); got != "from-env" {
		t.Errorf("expected existing value to win, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsSilent(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "no-such.env"))
}
