package fileutil

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CRC32File computes the IEEE CRC32 checksum of the file at path by
// streaming it, so arbitrarily large outputs can be stamped without
// loading them into memory.
func CRC32File(path string) (uint32, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open for checksum: %w", err)
	}
	defer in.Close()

	hasher := crc32.NewIEEE()
	if _, err := io.Copy(hasher, in); err != nil {
		return 0, fmt.Errorf("checksum %s: %w", path, err)
	}
	return hasher.Sum32(), nil
}
