package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"specmix/internal/fileutil"
	"specmix/internal/library"
	"specmix/internal/testsupport"
)

func TestIngestListShowRenameRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	raw := testsupport.WriteRawCSV(t, env.baseDir, "quartz-sample.csv",
		[]string{"Wavenumber", "Emissivity"}, syntheticGrid(quartzLike))

	out, _, err := runCLI(t, []string{"ingest", raw, "--kind", "endmember"}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Imported quartz-sample into the endmember library")
	requireContains(t, out, "synthesized")

	if _, _, err := runCLI(t, []string{"ingest", raw, "--kind", "endmember"}, env.configPath); !errors.Is(err, library.ErrExists) {
		t.Fatalf("expected ErrExists on duplicate import, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"ingest", raw, "--kind", "endmember", "--force"}, env.configPath); err != nil {
		t.Fatalf("ingest --force: %v", err)
	}

	out, _, err = runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listing map[string][]string
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if got := listing["endmember"]; len(got) != 1 || got[0] != "quartz-sample" {
		t.Fatalf("unexpected endmember listing: %v", listing)
	}
	if got := listing["mixed"]; len(got) != 0 {
		t.Fatalf("expected empty mixed listing, got %v", got)
	}

	out, _, err = runCLI(t, []string{"show", "endmember", "quartz-sample", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var summary spectrumSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if summary.Points != 81 || summary.MinWavenumber != 1000 || summary.MaxWavenumber != 1400 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	if summary.MaxWavelength != 10 {
		t.Fatalf("expected 10 µm max wavelength, got %v", summary.MaxWavelength)
	}

	if _, _, err := runCLI(t, []string{"rename", "endmember", "quartz-sample", "quartz"}, env.configPath); err != nil {
		t.Fatalf("rename: %v", err)
	}
	out, _, err = runCLI(t, []string{"list", "endmembers"}, env.configPath)
	if err != nil {
		t.Fatalf("list after rename: %v", err)
	}
	requireContains(t, out, "quartz")
	if strings.Contains(out, "quartz-sample") {
		t.Fatalf("expected old name to be gone, got %q", out)
	}

	if _, _, err := runCLI(t, []string{"remove", "endmember", "quartz"}, env.configPath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := runCLI(t, []string{"show", "endmember", "quartz"}, env.configPath); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestIngestMixedWithName(t *testing.T) {
	env := setupCLITestEnv(t)
	raw := testsupport.WriteRawCSV(t, env.baseDir, "scan-01.csv",
		[]string{"wavenumber", "emissivity", "uncertainty"}, syntheticGrid(olivineLike))

	out, _, err := runCLI(t, []string{"ingest", raw, "--kind", "mixed", "--name", "basalt", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	var payload struct {
		Name    string `json:"name"`
		Library string `json:"library"`
		Report  struct {
			Points int `json:"points"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode ingest output: %v", err)
	}
	if payload.Name != "basalt" || payload.Library != "mixed" || payload.Report.Points != 81 {
		t.Fatalf("unexpected ingest payload: %+v", payload)
	}
	if !fileutil.FileExists(filepath.Join(env.cfg.Paths.MixedDir, "basalt.txt")) {
		t.Fatal("expected canonical file in mixed directory")
	}
}

func TestInspectDoesNotImport(t *testing.T) {
	env := setupCLITestEnv(t)
	raw := testsupport.WriteRawCSV(t, env.baseDir, "preview.csv",
		[]string{"wavenumber", "emissivity"}, syntheticGrid(quartzLike))

	out, _, err := runCLI(t, []string{"inspect", raw}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "comma")
	requireContains(t, out, "wavenumber")

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No spectra stored")
}

func TestUnknownLibraryKind(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"list", "minerals"}, env.configPath); err == nil {
		t.Fatal("expected unknown library kind to fail")
	}
}
