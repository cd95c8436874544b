//go:build mage

// Package main contains Mage build targets for nessie developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "nessie"
	cmdPkg  = "./cmd/nessie"
)

// sampleConfig is written by Init when no config.yml exists yet.
const sampleConfig = `# Each top-level key is a section: a local directory mirrored to a remote one.
lessons:
  local: /Volumes/Recorder/Lessons
  remote: nas.local:/volume1/archive/lessons
  convert_to_mp3: true
concerts:
  local: /Volumes/Recorder/Concerts
  remote: nas.local:/volume1/archive/concerts
  convert_to_mp3: false
`

// Init writes a sample config.yml if one does not exist.
func Init() error {
	const path = "config.yml"
	if _, err := os.Stat(path); err == nil {
		fmt.Println("config.yml already exists; leaving it alone.")
		return nil
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Println("Wrote sample config.yml.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + gitVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// All runs Lint and Test, then Build.
func All() {
	mg.SerialDeps(Lint, Test, Build)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(v) == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}
