package miniufs

import (
	"path/filepath"
	"testing"
)

// newTestImage creates a fresh image in a temp file with blockSize bytes
// per block and room for at least blockCount blocks.
func newTestImage(t *testing.T, blockSize uint32, blockCount int) *Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.bin")
	img, err := CreateImage(path, int64(blockSize)*int64(blockCount), WithBlockSize(blockSize))
	if err != nil {
		t.Fatalf("CreateImage: %s", err)
	}
	t.Cleanup(func() { img.Close() })
	return img
}
