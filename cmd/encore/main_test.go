// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/recommend"
)

func TestParseSeedsFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantSeeds int
		wantTopN  int
		wantErr   bool
	}{
		{"array", `[{"id":"1"},{"title":"Song","artists":["Band"]}]`, 2, 0, false},
		{"request object", `{"seeds":[{"id":"1"}],"top_n":5}`, 1, 5, false},
		{"leading whitespace", "\n  [{\"id\":\"1\"}]", 1, 0, false},
		{"empty", "  ", 0, 0, true},
		{"unknown field", `{"seeds":[],"limit":3}`, 0, 0, true},
		{"malformed", `[{"id":`, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := parseSeedsFile([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSeedsFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(req.Seeds) != tt.wantSeeds {
				t.Errorf("seeds = %d, want %d", len(req.Seeds), tt.wantSeeds)
			}
			if req.TopN != tt.wantTopN {
				t.Errorf("TopN = %d, want %d", req.TopN, tt.wantTopN)
			}
		})
	}
}

func TestParseWeights(t *testing.T) {
	t.Parallel()

	got, err := parseWeights([]string{"Energy=2", " tempo = 0.5", "energy=3"})
	if err != nil {
		t.Fatalf("parseWeights() error = %v", err)
	}
	if got["energy"] != 3 || got["tempo"] != 0.5 || len(got) != 2 {
		t.Errorf("parseWeights() = %v", got)
	}

	for _, bad := range []string{"energy", "=1", "energy=high"} {
		if _, err := parseWeights([]string{bad}); err == nil {
			t.Errorf("parseWeights(%q) expected error", bad)
		}
	}
}

func TestParseYearRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    recommend.YearRange
		wantErr bool
	}{
		{"1990-1999", recommend.YearRange{1990, 1999}, false},
		{" 2001 ", recommend.YearRange{2001, 2001}, false},
		{"1990-", recommend.YearRange{}, true},
		{"nineties", recommend.YearRange{}, true},
	}
	for _, tt := range tests {
		got, err := parseYearRange(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseYearRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && *got != tt.want {
			t.Errorf("parseYearRange(%q) = %v, want %v", tt.in, *got, tt.want)
		}
	}
}

func TestApplyRequestFlags(t *testing.T) {
	t.Parallel()

	cmd := cmdRecommend()
	err := cmd.Flags().Parse([]string{
		"--seeds", "x.json", "--top-n", "7", "--min-popularity", "0",
		"--weight", "energy=2", "--years", "1980-1989", "--use-reduction",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	req := recommend.Request{TopN: 3, Weights: map[string]float64{"tempo": 0.5}}
	if err := applyRequestFlags(cmd, &req); err != nil {
		t.Fatalf("applyRequestFlags() error = %v", err)
	}
	if req.TopN != 7 {
		t.Errorf("TopN = %d, want 7", req.TopN)
	}
	if req.MinPopularity == nil || *req.MinPopularity != 0 {
		t.Errorf("MinPopularity = %v, want 0", req.MinPopularity)
	}
	if req.MaxPopularity != nil {
		t.Errorf("MaxPopularity = %v, want unset", *req.MaxPopularity)
	}
	if req.Weights["energy"] != 2 || req.Weights["tempo"] != 0.5 {
		t.Errorf("Weights = %v", req.Weights)
	}
	if req.YearRange == nil || *req.YearRange != (recommend.YearRange{1980, 1989}) {
		t.Errorf("YearRange = %v", req.YearRange)
	}
	if !req.UseReduction {
		t.Error("UseReduction not applied")
	}
}

// cli runs the command line in an isolated environment and returns the
// exit code with the captured output.
func cli(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// TestCLI exercises the commands end to end. Not parallel: it sets
// process environment.
func TestCLI(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))

	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	writeFile(t, a, "id,name,artists,duration_ms,popularity,energy,tempo\n"+
		"1,Song Title,Band,260000,40,0.5,120\n"+
		"2,Other Song,Someone,200000,70,0.9,90\n")
	writeFile(t, b, "track_id,track_name,artist_name,duration_ms,popularity,energy,tempo\n"+
		"1,Song Title,Band,260500,45,0.5,120\n"+
		"3,Third,Another,180000,60,0.1,60\n")
	common := []string{"--source", a, "--source", b, "--cache-dir", filepath.Join(dir, "cache"), "--log-level", "error"}

	t.Run("build", func(t *testing.T) {
		code, out, errOut := cli(t, append([]string{"build"}, common...)...)
		if code != 0 {
			t.Fatalf("exit = %d, stderr = %s", code, errOut)
		}
		var summary buildSummary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("decode output: %v\n%s", err, out)
		}
		if summary.Rows != 3 || summary.Fingerprint == "" {
			t.Errorf("summary = %+v", summary)
		}
	})

	t.Run("stats", func(t *testing.T) {
		code, out, errOut := cli(t, append([]string{"stats"}, common...)...)
		if code != 0 {
			t.Fatalf("exit = %d, stderr = %s", code, errOut)
		}
		if !strings.Contains(out, `"rows": 3`) {
			t.Errorf("stats output = %s", out)
		}
	})

	t.Run("overlap", func(t *testing.T) {
		code, out, errOut := cli(t, "overlap", a, b, "--log-level", "error")
		if code != 0 {
			t.Fatalf("exit = %d, stderr = %s", code, errOut)
		}
		if !strings.Contains(out, `"intersection": 1`) {
			t.Errorf("overlap output = %s", out)
		}
	})

	t.Run("recommend", func(t *testing.T) {
		seeds := filepath.Join(dir, "seeds.json")
		writeFile(t, seeds, `[{"id":"2"}]`)
		code, out, errOut := cli(t, append([]string{"recommend", "--seeds", seeds, "--min-popularity", "0"}, common...)...)
		if code != 0 {
			t.Fatalf("exit = %d, stderr = %s", code, errOut)
		}
		var resp recommend.Response
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("decode output: %v\n%s", err, out)
		}
		if resp.Matched != 1 || len(resp.Tracks) == 0 {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("no matching seeds", func(t *testing.T) {
		seeds := filepath.Join(dir, "unknown.json")
		writeFile(t, seeds, `[{"title":"Nothing Like It","artists":["Nobody"]}]`)
		code, _, errOut := cli(t, append([]string{"recommend", "--seeds", seeds}, common...)...)
		if code != exitNoSeeds {
			t.Errorf("exit = %d, want %d (stderr %s)", code, exitNoSeeds, errOut)
		}
	})

	t.Run("invalid request", func(t *testing.T) {
		seeds := filepath.Join(dir, "invalid.json")
		writeFile(t, seeds, `[]`)
		code, _, errOut := cli(t, append([]string{"recommend", "--seeds", seeds}, common...)...)
		if code != exitError {
			t.Errorf("exit = %d, want %d", code, exitError)
		}
		if !strings.Contains(errOut, "encore:") {
			t.Errorf("stderr = %q", errOut)
		}
	})
}
