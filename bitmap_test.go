package miniufs

import (
	"errors"
	"testing"
)

func TestAllocateReleaseRoundTrip(t *testing.T) {
	img := newTestImage(t, 64, 4)

	before := img.sb.FreeCount
	blk, err := img.allocateBlock()
	if err != nil {
		t.Fatalf("allocateBlock: %s", err)
	}
	if img.sb.FreeCount != before-1 {
		t.Errorf("FreeCount after allocate = %d, want %d", img.sb.FreeCount, before-1)
	}

	bm, err := img.readBitmap()
	if err != nil {
		t.Fatalf("readBitmap: %s", err)
	}
	if !bm.Get(int(blk)) {
		t.Errorf("bitmap bit %d not set after allocate", blk)
	}

	if err := img.releaseBlock(blk); err != nil {
		t.Fatalf("releaseBlock: %s", err)
	}
	if img.sb.FreeCount != before {
		t.Errorf("FreeCount after release = %d, want %d", img.sb.FreeCount, before)
	}

	bm, err = img.readBitmap()
	if err != nil {
		t.Fatalf("readBitmap: %s", err)
	}
	if bm.Get(int(blk)) {
		t.Errorf("bitmap bit %d still set after release", blk)
	}

	data := make([]byte, img.sb.BlockSize)
	if err := img.readAt(img.blockOffset(blk), data); err != nil {
		t.Fatalf("read block after release: %s", err)
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("released block not zero-filled at byte %d", i)
		}
	}
}

func TestAllocateOutOfSpace(t *testing.T) {
	img := newTestImage(t, 64, 2)

	// The root directory's "." and ".." records already occupy one block,
	// so only the remaining block is free to start.
	allocated := 0
	for {
		if _, err := img.allocateBlock(); err != nil {
			if !errors.Is(err, ErrOutOfSpace) {
				t.Fatalf("allocateBlock: err = %v, want ErrOutOfSpace", err)
			}
			break
		}
		allocated++
		if allocated > 100 {
			t.Fatal("allocateBlock never ran out of space")
		}
	}
	if allocated != int(img.sb.BlockCount)-1 {
		t.Errorf("allocated %d blocks before ErrOutOfSpace, want %d", allocated, img.sb.BlockCount-1)
	}
}
