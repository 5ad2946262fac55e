// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/rand"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

const testSecret = "00112233445566778899aabbccddeeff"

// Shares produced for testSecret by the deterministic source with
// --group-threshold 2 --groups 2-of-3,3-of-5.
var knownShares = [][]string{
	{
		"001111010000112233445566778899aabbccddeeff",
		"00111101010022446688aaccee0b294f6d83a1c7e5",
		"001111010200336655ccffaa9983b0e5d64f7c291a",
	},
	{
		"001111120011227744ddeebb88b2c1d4277e0d18eb",
		"001111120144bba15e956a708f27c3c210f61213c1",
		"001111120255aab04f847b619e16b2f3e1c7632230",
		"00111112030ba64ae78924c865e524a4bd67a6263f",
		"00111112041ab75bf69835d974d455954c56d717ce",
	},
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(
		WithIO(strings.NewReader(stdin), &out, &errOut),
		WithRandom(rand.NewDeterministic()),
		WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSplit_KnownVector(t *testing.T) {
	out, _, err := execute(t, "", "split",
		"--group-threshold", "2",
		"--groups", "2-of-3,3-of-5",
		"--secret", testSecret)
	require.NoError(t, err)

	assert.Contains(t, out, "Identifier: 0011\n")
	assert.Contains(t, out, "Groups required: 2 of 2\n")
	assert.Contains(t, out, "Group 0 (2-of-3):\n")
	assert.Contains(t, out, "Group 1 (3-of-5):\n")
	for _, group := range knownShares {
		for _, share := range group {
			assert.Contains(t, out, "  "+share+"\n")
		}
	}
	assert.NotContains(t, out, "Stored set")
}

func TestSplit_JSONFromStdin(t *testing.T) {
	out, _, err := execute(t, testSecret+"\n", "split", "-o", "json", "--groups", "1-of-1")
	require.NoError(t, err)

	var doc struct {
		Identifier     string `json:"identifier"`
		GroupThreshold int    `json:"group_threshold"`
		Groups         []struct {
			Threshold int      `json:"threshold"`
			Count     int      `json:"count"`
			Shares    []string `json:"shares"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "0011", doc.Identifier)
	assert.Equal(t, 1, doc.GroupThreshold)
	require.Len(t, doc.Groups, 1)
	require.Len(t, doc.Groups[0].Shares, 1)
	// 1-of-1 at both levels carries the secret in the clear
	assert.Equal(t, "0011000000"+testSecret, doc.Groups[0].Shares[0])
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
		msg  string
	}{
		{"bad groups syntax", []string{"split", "--groups", "two", "--secret", testSecret}, nil, "invalid group"},
		{"group threshold", []string{"split", "--group-threshold", "3", "--groups", "2-of-3", "--secret", testSecret}, sskr.ErrInvalidGroupSet, ""},
		{"member overflow", []string{"split", "--groups", "2-of-17", "--secret", testSecret}, sskr.ErrFieldOverflow, ""},
		{"bad secret", []string{"split", "--secret", "xyz"}, nil, "invalid encoded text"},
		{"extra args", []string{"split", "extra"}, nil, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	t.Run("args", func(t *testing.T) {
		out, _, err := execute(t, "", "combine",
			knownShares[0][0], knownShares[0][2],
			knownShares[1][1], knownShares[1][2], knownShares[1][4])
		require.NoError(t, err)
		assert.Equal(t, testSecret+"\n", out)
	})

	t.Run("stdin json with repeats", func(t *testing.T) {
		stdin := strings.Join([]string{
			"# friends",
			knownShares[0][0],
			knownShares[0][0],
			knownShares[0][1],
			"# family",
			knownShares[1][0],
			knownShares[1][3],
			knownShares[1][4],
			knownShares[1][4],
		}, "\n")
		out, _, err := execute(t, stdin, "combine", "-o", "json")
		require.NoError(t, err)

		var doc struct {
			Secret string `json:"secret"`
			Groups []int  `json:"groups"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, testSecret, doc.Secret)
		assert.Equal(t, []int{0, 1}, doc.Groups)
	})

	t.Run("insufficient groups", func(t *testing.T) {
		_, _, err := execute(t, "", "combine", knownShares[1][1], knownShares[1][2], knownShares[1][4])
		assert.ErrorIs(t, err, sskr.ErrInsufficientGroups)
	})

	t.Run("truncated share", func(t *testing.T) {
		_, _, err := execute(t, "", "combine", "0011110100")
		assert.ErrorIs(t, err, sskr.ErrTruncatedShare)
	})

	t.Run("set id with args", func(t *testing.T) {
		_, _, err := execute(t, "", "combine", "--set-id", "x", knownShares[0][0])
		assert.Error(t, err)
	})
}

func TestCount(t *testing.T) {
	out, _, err := execute(t, "", "count", "--group-threshold", "2", "--groups", "2-of-3,3-of-5")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)

	out, _, err = execute(t, "", "count", "-o", "json", "--groups", "1-of-1,16-of-16")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.EqualValues(t, 17, doc["shares"])

	_, _, err = execute(t, "", "count", "--groups", "2-of-17")
	assert.ErrorIs(t, err, sskr.ErrFieldOverflow)
}

func TestInspect(t *testing.T) {
	out, _, err := execute(t, "", "inspect", knownShares[1][4])
	require.NoError(t, err)
	assert.Contains(t, out, "Identifier: 0011")
	assert.Contains(t, out, "Groups:     2 required of 2")
	assert.Contains(t, out, "Group:      1")
	assert.Contains(t, out, "Member:     4 (3 required)")
	assert.Contains(t, out, "Length:     16 bytes")

	out, _, err = execute(t, "", "inspect", "-o", "json", knownShares[0][1])
	require.NoError(t, err)
	assert.Contains(t, out, `"share": "`+knownShares[0][1]+`"`)

	_, _, err = execute(t, "", "inspect", "0001120000ff")
	assert.ErrorIs(t, err, sskr.ErrInvalidShare)
}

func TestShamir(t *testing.T) {
	out, _, err := execute(t, "", "shamir", "split", "--threshold", "2", "--count", "3", "--secret", testSecret)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"0100000000000000000000000000000000",
		"0200336655ccffaa9983b0e5d64f7c291a",
		"030022446688aaccee0b294f6d83a1c7e5",
	}, "\n")+"\n", out)

	out, _, err = execute(t, "", "shamir", "combine",
		"0200336655ccffaa9983b0e5d64f7c291a",
		"030022446688aaccee0b294f6d83a1c7e5")
	require.NoError(t, err)
	assert.Equal(t, testSecret+"\n", out)

	_, _, err = execute(t, "", "shamir", "combine", "--threshold", "3",
		"0200336655ccffaa9983b0e5d64f7c291a",
		"030022446688aaccee0b294f6d83a1c7e5")
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientShares)

	_, _, err = execute(t, "", "shamir", "split", "--threshold", "4", "--count", "3", "--secret", testSecret)
	assert.ErrorIs(t, err, secretsharing.ErrInvalidThreshold)
}

func TestEncodingFromEnv(t *testing.T) {
	t.Setenv("SSKR_ENCODING", "base64")
	// base64 of 00112233445566778899aabbccddeeff
	out, _, err := execute(t, "", "shamir", "split", "--threshold", "1", "--count", "1",
		"--secret", "ABEiM0RVZneImaq7zN3u/w==")
	require.NoError(t, err)
	assert.Equal(t, "AQARIjNEVWZ3iJmqu8zd7v8=\n", out)
}

func TestStoredSets(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "", "split", "--storage-dir", dir, "--store", "--set-id", "vault",
		"--group-threshold", "2", "--groups", "2-of-3,3-of-5", "--secret", testSecret)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored set vault in "+dir)

	_, err = os.Stat(filepath.Join(dir, "vault", "manifest.yaml"))
	require.NoError(t, err)

	// Lose a share from each group; recovery still succeeds.
	require.NoError(t, os.Remove(filepath.Join(dir, "vault", "group-00", "member-00.share")))
	require.NoError(t, os.Remove(filepath.Join(dir, "vault", "group-01", "member-03.share")))

	out, errOut, err := execute(t, "", "combine", "--storage-dir", dir, "--set-id", "vault", "-v")
	require.NoError(t, err)
	assert.Equal(t, testSecret+"\n", out)
	assert.Contains(t, errOut, "vault/group-00/member-00.share is missing")

	out, _, err = execute(t, "", "sets", "list", "--storage-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "  - vault\n")

	_, _, err = execute(t, "", "split", "--storage-dir", dir, "--store", "--set-id", "vault", "--secret", testSecret)
	assert.Error(t, err)

	out, _, err = execute(t, "", "sets", "delete", "vault", "--storage-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted share set vault")

	out, _, err = execute(t, "", "sets", "list", "--storage-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No share sets found")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sskr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  format: json
defaults:
  group_threshold: 2
  groups: "1-of-1,2-of-3"
`), 0600))

	out, _, err := execute(t, "", "count", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"shares": 4`)

	// flags override the file
	out, _, err = execute(t, "", "count", "--config", path, "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	_, _, err = execute(t, "", "count", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sskr.prom")
	_, _, err := execute(t, "", "split", "--metrics-textfile", path, "--secret", testSecret)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sskr_operations_total")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, "", "count", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sskr version "+Version)

	out, _, err = execute(t, "", "version", "-o", "json")
	require.NoError(t, err)
	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, Version, doc["version"])
}

func TestPrinter_PrintError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter("json", "hex", &buf).PrintError(sskr.ErrNoShares))
	assert.Contains(t, buf.String(), `"status": "error"`)

	buf.Reset()
	require.NoError(t, NewPrinter("text", "hex", &buf).PrintError(sskr.ErrNoShares))
	assert.Equal(t, "Error: "+sskr.ErrNoShares.Error()+"\n", buf.String())
}

func TestDoctor(t *testing.T) {
	dir := t.TempDir()
	// the deterministic source repeats itself, which is reported but not fatal
	out, _, err := execute(t, "", "doctor", "--storage-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: degraded")
	assert.Contains(t, out, "self-test")
	assert.Contains(t, out, "storage")

	out, _, err = execute(t, "", "doctor", "--storage-dir", dir, "-o", "json")
	require.NoError(t, err)
	var doc struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "degraded", doc.Status)
	require.Len(t, doc.Checks, 3)
	assert.Equal(t, "healthy", doc.Checks[1].Status)
}
