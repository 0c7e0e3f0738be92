package selfupdate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetNameFor(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin amd64", "darwin", "amd64", "worksheet_Darwin_all.tar.gz", false},
		{"darwin arm64", "darwin", "arm64", "worksheet_Darwin_all.tar.gz", false},
		{"linux amd64", "linux", "amd64", "worksheet_Linux_x86_64.tar.gz", false},
		{"linux arm64", "linux", "arm64", "worksheet_Linux_arm64.tar.gz", false},
		{"linux 386", "linux", "386", "worksheet_Linux_i386.tar.gz", false},
		{"windows amd64", "windows", "amd64", "worksheet_Windows_x86_64.zip", false},
		{"windows arm64", "windows", "arm64", "worksheet_Windows_arm64.zip", false},
		{"unsupported os", "freebsd", "amd64", "", true},
		{"unsupported arch", "linux", "mips", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assetNameFor(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "normal",
			input: "abc123  worksheet_Darwin_all.tar.gz\ndef456  worksheet_Linux_x86_64.tar.gz\n",
			want: map[string]string{
				"worksheet_Darwin_all.tar.gz":    "abc123",
				"worksheet_Linux_x86_64.tar.gz": "def456",
			},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "malformed lines skipped",
			input: "abc123  file.tar.gz\nbadline\n  \nfoo  bar  baz\nghi789  other.tar.gz\n",
			want: map[string]string{
				"file.tar.gz":  "abc123",
				"other.tar.gz": "ghi789",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseChecksums([]byte(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("hello world")
	h := sha256.Sum256(data)
	correctHex := hex.EncodeToString(h[:])

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, verifyChecksum(data, correctHex))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := verifyChecksum(data, "0000000000000000000000000000000000000000000000000000000000000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestExtractBinary(t *testing.T) {
	binaryContent := []byte("#!/bin/sh\necho worksheet")

	t.Run("tar.gz", func(t *testing.T) {
		archive := buildTarGz(t, "worksheet", binaryContent)
		got, err := extractBinary(archive, "worksheet_Darwin_all.tar.gz")
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		archive := buildTarGz(t, "other-file", binaryContent)
		_, err := extractBinary(archive, "worksheet_Darwin_all.tar.gz")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestApplyUpdate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "worksheet")

	// Create original binary with 0755 permissions.
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))

	newData := []byte("new-binary-content")
	h := sha256.Sum256(newData)

	require.NoError(t, applyUpdate(newData, target, h[:]))

	// Verify content replaced.
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, newData, got)

	// Verify permissions preserved.
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

// assetReleaseServer fakes the GitHub API and download host. latest is served as
// the newest tag; files maps a download path under the release to its body.
func assetReleaseServer(t *testing.T, latest string, files map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/abhisek/worksheet/releases/latest" {
			fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, latest, latest)
			return
		}
		body, ok := files[strings.TrimPrefix(r.URL.Path, "/abhisek/worksheet/releases/download/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func fakeExecutable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worksheet")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0755))
	return path
}

func TestUpdate(t *testing.T) {
	binaryContent := []byte("new-worksheet-binary")
	archive := buildTarGz(t, "worksheet", binaryContent)
	sum := sha256.Sum256(archive)
	archiveHex := hex.EncodeToString(sum[:])

	asset, err := assetNameFor(runtime.GOOS, runtime.GOARCH)
	if err != nil || strings.HasSuffix(asset, ".zip") {
		t.Skip("tar.gz release archive not available for this platform")
	}
	checksums := func(tag, digest string) map[string][]byte {
		return map[string][]byte{
			tag + "/" + asset:      archive,
			tag + "/checksums.txt": []byte(fmt.Sprintf("%s  %s\n", digest, asset)),
		}
	}
	newChecker := func(server *httptest.Server, execPath string) *Checker {
		return NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			WithRetry(1, time.Millisecond),
			withExecPath(func() (string, error) { return execPath, nil }),
		)
	}

	t.Run("happy path", func(t *testing.T) {
		execPath := fakeExecutable(t)
		server := assetReleaseServer(t, "v2.0.0", checksums("v2.0.0", archiveHex))

		var stages []Stage
		err := newChecker(server, execPath).Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
		assert.Equal(t, []Stage{StageCheck, StageDownload, StageVerify, StageExtract, StageApply, StageDone}, stages)
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, nil)
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := assetReleaseServer(t, "v1.0.0", nil)
		err := newChecker(server, fakeExecutable(t)).Update(context.Background(), &UpdateInput{CurrentVersion: "1.0.0"}, nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch leaves binary alone", func(t *testing.T) {
		execPath := fakeExecutable(t)
		server := assetReleaseServer(t, "v2.0.0", checksums("v2.0.0", strings.Repeat("0", 64)))

		err := newChecker(server, execPath).Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, nil)
		assert.ErrorIs(t, err, ErrChecksum)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, []byte("old"), got)
	})

	t.Run("download failure", func(t *testing.T) {
		server := assetReleaseServer(t, "v2.0.0", nil)
		err := newChecker(server, fakeExecutable(t)).Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})

	t.Run("pinned target skips lookup", func(t *testing.T) {
		execPath := fakeExecutable(t)
		// The latest tag is older than the pin; a lookup would report no update.
		server := assetReleaseServer(t, "v1.0.0", checksums("v1.5.0", archiveHex))

		err := newChecker(server, execPath).Update(context.Background(), &UpdateInput{CurrentVersion: "v2.0.0", TargetVersion: "1.5.0"}, nil)
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("pinned target validation", func(t *testing.T) {
		c := NewChecker()
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0", TargetVersion: "latest-ish"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid target version")

		err = c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0", TargetVersion: "1.0.0"}, nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})
}

// buildTarGz creates a tar.gz archive containing a single file.
func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name,
		Size: int64(len(content)),
		Mode: 0755,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}
