// Where: internal/infra/archive/archive.go
// What: Deployable zip creation with native and in-process strategies.
// Why: The native archiver preserves file modes; the fallback stays portable.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/skiffhq/skiff-cli/internal/infra/execx"
	"github.com/skiffhq/skiff-cli/internal/infra/fileops"
)

// Builder serializes a staged tree into a single zip payload.
type Builder struct {
	Runner execx.CommandRunner

	lookPath func(string) (string, error)
}

// ReadExisting returns the bytes of an already-built payload. A missing
// path is a cache miss, not an error: callers fall through to a fresh
// build. A path that exists but cannot be read is an error.
func ReadExisting(path string) ([]byte, bool, error) {
	if path == "" || !fileops.FileOrDirExists(path) {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read archive %s: %w", path, err)
	}
	return data, true, nil
}

// Create archives every non-directory file under stagedDir into outPath
// with entry paths relative to the staging root, and returns the bytes.
// The platform-native archiver is preferred when available; otherwise an
// in-process writer produces an equivalent archive.
func (b Builder) Create(ctx context.Context, stagedDir, outPath string) ([]byte, error) {
	if stagedDir == "" || outPath == "" {
		return nil, fmt.Errorf("archive requires staged and output paths")
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return nil, fmt.Errorf("resolve archive path: %w", err)
	}
	if err := fileops.EnsureDir(filepath.Dir(absOut)); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.RemoveAll(absOut); err != nil {
		return nil, fmt.Errorf("clear previous archive: %w", err)
	}

	if b.nativeAvailable() {
		if err := b.createNative(ctx, stagedDir, absOut); err != nil {
			return nil, err
		}
	} else if err := createInProcess(stagedDir, absOut); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absOut)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", absOut, err)
	}
	return data, nil
}

func (b Builder) nativeAvailable() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	lookPath := b.lookPath
	if lookPath == nil {
		lookPath = execx.LookPath
	}
	_, err := lookPath("zip")
	return err == nil
}

func (b Builder) createNative(ctx context.Context, stagedDir, absOut string) error {
	if b.Runner == nil {
		return fmt.Errorf("native archiver requires a command runner")
	}
	output, err := b.Runner.RunOutput(ctx, stagedDir, "zip", "-q", "-r", "-X", absOut, ".")
	if err != nil {
		return fmt.Errorf("archive staged tree: %w\n%s", err, output)
	}
	return nil
}

func createInProcess(stagedDir, absOut string) error {
	out, err := os.Create(absOut)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	writer := zip.NewWriter(out)

	err = filepath.WalkDir(stagedDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(stagedDir, path)
		if err != nil {
			return err
		}
		return addEntry(writer, path, filepath.ToSlash(rel), entry)
	})
	if err != nil {
		writer.Close()
		out.Close()
		return fmt.Errorf("archive staged tree: %w", err)
	}

	if err := writer.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}
	return out.Close()
}

func addEntry(writer *zip.Writer, path, name string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}
	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	header.SetMode(info.Mode())

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
