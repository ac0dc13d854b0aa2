package fileutil

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest streams r through BLAKE3 and returns the hex digest and byte count.
func Digest(r io.Reader) (string, int64, error) {
	hasher := blake3.New()
	n, err := io.Copy(hasher, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}

// DigestFile returns the BLAKE3 hex digest and size of the file at path.
func DigestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	return Digest(f)
}

// CopyFileVerified copies src to dst through a ".partial" sibling, reads the
// copy back to compare BLAKE3 digests, and only then renames it into place.
// The source permission bits are preserved. On any failure dst is left
// untouched and the partial file is removed.
func CopyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	partial := dst + ".partial"
	sum, written, err := writeHashed(partial, in, info.Mode().Perm())
	if err != nil {
		_ = os.Remove(partial)
		return err
	}
	if written != info.Size() {
		_ = os.Remove(partial)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}

	copied, _, err := DigestFile(partial)
	if err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("verify copy: %w", err)
	}
	if copied != sum {
		_ = os.Remove(partial)
		return fmt.Errorf("copy digest mismatch for %s", dst)
	}

	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return err
	}
	return nil
}

// writeHashed writes r to path, hashing the bytes as they are read.
func writeHashed(path string, r io.Reader, perm os.FileMode) (string, int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return "", 0, err
	}
	hasher := blake3.New()
	written, err := io.Copy(out, io.TeeReader(r, hasher))
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", written, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), written, nil
}
