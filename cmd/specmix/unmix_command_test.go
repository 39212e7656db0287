package main

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"specmix/internal/journal"
	"specmix/internal/testsupport"
	"specmix/internal/unmix"
)

func decodeUnmix(t *testing.T, out string) unmixOutput {
	t.Helper()
	var payload unmixOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode unmix output: %v\n%s", err, out)
	}
	if payload.Result == nil {
		t.Fatalf("missing result in %s", out)
	}
	return payload
}

func TestUnmixRecoversMixtureAndRecordsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibraries(t, env.cfg)

	out, _, err := runCLI(t, []string{
		"unmix", "--mixed", "basalt", "--endmember", "quartz", "--endmember", "olivine", "--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("unmix: %v", err)
	}
	payload := decodeUnmix(t, out)
	if payload.Channels != 81 {
		t.Fatalf("expected 81 channels, got %d", payload.Channels)
	}
	res := payload.Result
	if res.Algorithm != unmix.WLS {
		t.Fatalf("expected default WLS, got %q", res.Algorithm)
	}
	want := map[string]float64{"quartz": 0.6, "olivine": 0.4}
	for i, name := range res.Names {
		if math.Abs(res.Abundances[i]-want[name]) > 1e-6 {
			t.Fatalf("abundance for %s = %v, want %v", name, res.Abundances[i], want[name])
		}
	}
	if payload.RunID == "" {
		t.Fatal("expected run to be recorded")
	}

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, shortID(payload.RunID))
	requireContains(t, out, "basalt")

	out, _, err = runCLI(t, []string{"runs", "show", shortID(payload.RunID)}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, payload.RunID)
	requireContains(t, out, "0.6000")

	if _, _, err := runCLI(t, []string{"runs", "delete", payload.RunID}, env.configPath); err != nil {
		t.Fatalf("runs delete: %v", err)
	}
	if _, _, err := runCLI(t, []string{"runs", "show", payload.RunID}, env.configPath); err == nil {
		t.Fatal("expected deleted run to be missing")
	}
}

func TestUnmixSTOTextOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibraries(t, env.cfg)

	out, _, err := runCLI(t, []string{
		"unmix", "-m", "basalt", "-e", "quartz,olivine", "--algorithm", "sto", "--no-record",
	}, env.configPath)
	if err != nil {
		t.Fatalf("unmix: %v", err)
	}
	requireContains(t, out, "STO unmixing of basalt")
	requireContains(t, out, "Normalized")
	if strings.Contains(out, "Recorded run") {
		t.Fatalf("expected no run to be recorded, got %q", out)
	}

	store := testsupport.MustOpenJournal(t, env.cfg)
	runs, err := store.List(t.Context(), "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty journal with --no-record, got %d runs", len(runs))
	}
}

func TestUnmixRespectsRecordRunsSetting(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutRunRecording(), testsupport.WithAlgorithm("sto"))
	seedLibraries(t, env.cfg)

	out, _, err := runCLI(t, []string{"unmix", "-m", "basalt", "-e", "quartz", "-e", "olivine", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("unmix: %v", err)
	}
	payload := decodeUnmix(t, out)
	if payload.RunID != "" {
		t.Fatalf("expected no run id, got %q", payload.RunID)
	}
	if payload.Result.Algorithm != unmix.STO {
		t.Fatalf("expected configured STO, got %q", payload.Result.Algorithm)
	}
	var sum float64
	for _, a := range payload.Result.Abundances {
		sum += a
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected abundances to sum to one, got %v", sum)
	}
}

func TestUnmixValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibraries(t, env.cfg)

	cases := []struct {
		name string
		args []string
	}{
		{"missing mixed", []string{"unmix", "-e", "quartz"}},
		{"no end-members", []string{"unmix", "-m", "basalt"}},
		{"duplicate end-member", []string{"unmix", "-m", "basalt", "-e", "quartz", "-e", "quartz"}},
		{"unknown algorithm", []string{"unmix", "-m", "basalt", "-e", "quartz", "--algorithm", "ols"}},
		{"zero cutoff", []string{"unmix", "-m", "basalt", "-e", "quartz", "--max-wavelength", "0"}},
		{"unknown end-member", []string{"unmix", "-m", "basalt", "-e", "feldspar"}},
		{"unknown mixed", []string{"unmix", "-m", "andesite", "-e", "quartz"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tc.args, env.configPath); err == nil {
				t.Fatalf("expected %v to fail", tc.args)
			}
		})
	}

	_, _, err := runCLI(t, []string{"unmix", "-m", "basalt"}, env.configPath)
	if !errors.Is(err, unmix.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestRunsClearRequiresForce(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenJournal(t, env.cfg)
	if _, err := store.Record(t.Context(), &journal.Run{Algorithm: "wls", Mixed: "basalt", Selected: []string{"quartz"}}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, _, err := runCLI(t, []string{"runs", "clear"}, env.configPath); err == nil {
		t.Fatal("expected clear without --force to fail")
	}
	out, _, err := runCLI(t, []string{"runs", "clear", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("runs clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 runs")

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestNormalizeSelection(t *testing.T) {
	got, err := normalizeSelection([]string{"quartz, olivine", " BB "})
	if err != nil {
		t.Fatalf("normalizeSelection: %v", err)
	}
	if len(got) != 3 || got[0] != "quartz" || got[1] != "olivine" || got[2] != "BB" {
		t.Fatalf("unexpected selection: %v", got)
	}
}
