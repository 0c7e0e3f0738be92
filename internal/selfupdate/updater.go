package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// Stage names a step of an update run.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageApply    Stage = "apply"
	StageDone     Stage = "done"
)

// UpdateInput selects the update. An empty TargetVersion means the latest
// release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

type UpdateProgress struct {
	Stage   Stage
	Message string
}

// releaseFiles are the download locations of one tagged release.
type releaseFiles struct {
	tag       string
	asset     string
	archive   string
	checksums string
}

func (c *Checker) releaseFiles(tag, asset string) releaseFiles {
	prefix := fmt.Sprintf("%s/%s/%s/releases/download/%s",
		strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag)
	return releaseFiles{
		tag:       tag,
		asset:     asset,
		archive:   prefix + "/" + asset,
		checksums: prefix + "/checksums.txt",
	}
}

// Update downloads, verifies and installs a release over the running
// executable. progress may be nil.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	report := func(stage Stage, format string, args ...any) {
		if progress != nil {
			progress(UpdateProgress{Stage: stage, Message: fmt.Sprintf(format, args...)})
		}
	}

	current := canonical(input.CurrentVersion)
	if !semver.IsValid(current) {
		return ErrDevBuild
	}

	tag, err := c.resolveTag(ctx, current, input.TargetVersion, report)
	if err != nil {
		return err
	}

	asset, err := assetNameFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	files := c.releaseFiles(tag, asset)

	report(StageDownload, "Downloading %s...", tag)
	archive, err := c.get(ctx, files.archive, "application/octet-stream")
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report(StageVerify, "Verifying checksum...")
	if err := c.verifyRelease(ctx, files, archive); err != nil {
		return err
	}

	report(StageExtract, "Extracting binary...")
	binary, err := extractBinary(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report(StageApply, "Applying update...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	sum := sha256.Sum256(binary)
	if err := applyUpdate(binary, target, sum[:]); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	report(StageDone, "Updated to %s", tag)
	return nil
}

// resolveTag returns the release tag to install. A pinned target skips the
// release lookup but must still be a valid version different from current.
func (c *Checker) resolveTag(ctx context.Context, current, target string, report func(Stage, string, ...any)) (string, error) {
	if target != "" {
		tag := canonical(target)
		if !semver.IsValid(tag) {
			return "", fmt.Errorf("invalid target version %q", target)
		}
		if semver.Compare(tag, current) == 0 {
			return "", ErrAlreadyLatest
		}
		return tag, nil
	}

	report(StageCheck, "Checking for latest version...")
	result, err := c.Check(ctx, &CheckInput{Version: current})
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}
	if !result.UpdateAvailable {
		return "", ErrAlreadyLatest
	}
	return result.LatestVersion, nil
}

func (c *Checker) verifyRelease(ctx context.Context, files releaseFiles, archive []byte) error {
	data, err := c.get(ctx, files.checksums, "text/plain")
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(data)[files.asset]
	if !ok {
		return fmt.Errorf("no checksum for %s in %s checksums.txt", files.asset, files.tag)
	}
	return verifyChecksum(archive, want)
}

// releaseArch maps GOARCH to the architecture label used in archive names.
var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// assetNameFor returns the archive published for a platform. macOS ships a
// single universal archive.
func assetNameFor(goos, goarch string) (string, error) {
	if goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}

	var osLabel, ext string
	switch goos {
	case "linux":
		osLabel, ext = "Linux", ".tar.gz"
	case "windows":
		osLabel, ext = "Windows", ".zip"
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
	return binaryName + "_" + osLabel + "_" + arch + ext, nil
}

// parseChecksums reads a sha256sum style listing into asset -> hex digest.
// Lines that are not exactly "<digest> <name>" are ignored.
func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			sums[fields[1]] = fields[0]
		}
	}
	return sums
}

func verifyChecksum(data []byte, wantHex string) error {
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, wantHex) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, wantHex, got)
	}
	return nil
}

// extractBinary pulls the executable out of a release archive.
func extractBinary(archive []byte, asset string) ([]byte, error) {
	var (
		data  []byte
		found bool
		err   error
	)
	if strings.HasSuffix(asset, ".zip") {
		data, found, err = fromZip(archive, binaryName+".exe")
	} else {
		data, found, err = fromTarGz(archive, binaryName)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("binary %q not found in %s", binaryName, asset)
	}
	return data, nil
}

func fromTarGz(archive []byte, name string) ([]byte, bool, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, false, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != name {
			continue
		}
		data, err := io.ReadAll(tr)
		return data, true, err
	}
}

func fromZip(archive []byte, name string) ([]byte, bool, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, false, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || filepath.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false, err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		return data, true, err
	}
	return nil, false, nil
}

// applyUpdate writes binary next to target and renames it into place, so
// target is either the old or the new executable. The staged copy is read
// back and compared with wantSum before the rename.
func applyUpdate(binary []byte, target string, wantSum []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	staged := tmp.Name()
	defer func() { _ = os.Remove(staged) }()

	if _, err := tmp.Write(binary); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	written, err := os.ReadFile(staged)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	if sum := sha256.Sum256(written); !bytes.Equal(sum[:], wantSum) {
		return fmt.Errorf("%w: staged binary does not match", ErrChecksum)
	}

	if err := os.Chmod(staged, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(staged, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
