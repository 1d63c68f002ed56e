package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}

	return out.String()
}

func TestRoutesCommand(t *testing.T) {
	out := run(t, "routes")

	for _, want := range []string{"/articles", "/comments", "/images", "/stats", "/storage"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes doc missing %s", want)
		}
	}
}

func TestMigrateAndSeedCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "data", "blog.db")

	if out := run(t, "migrate", "--dsn", dsn); !strings.Contains(out, "Migrated") {
		t.Errorf("migrate output = %q", out)
	}

	out := run(t, "seed", "--dsn", dsn)
	if !strings.Contains(out, "Seeded 2 user(s), 3 article(s), 3 comment(s).") {
		t.Errorf("seed output = %q", out)
	}
}

func TestOpenFixturesMissingFile(t *testing.T) {
	if _, err := openFixtures(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing fixture file")
	}
}
