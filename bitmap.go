package miniufs

import (
	"github.com/boljen/go-bitmap"
)

// readBitmap loads the full block-allocation bitmap from the backing store.
func (img *Image) readBitmap() (bitmap.Bitmap, error) {
	buf := make([]byte, img.bitmapSize)
	if err := img.readAt(img.bitmapOffset, buf); err != nil {
		return nil, err
	}
	return bitmap.Bitmap(buf), nil
}

func (img *Image) writeBitmap(bm bitmap.Bitmap) error {
	return img.writeAt(img.bitmapOffset, []byte(bm))
}

// findUnusedBlock scans the bitmap ascending and returns the first clear bit.
func (img *Image) findUnusedBlock() (uint32, error) {
	bm, err := img.readBitmap()
	if err != nil {
		return 0, err
	}
	for i := uint32(0); i < img.sb.BlockCount; i++ {
		if !bm.Get(int(i)) {
			return i, nil
		}
	}
	return 0, ErrOutOfSpace
}

// allocateBlock finds a free block, marks it used in the bitmap, updates the
// superblock's usage counters, and returns the new block's index. Newly
// allocated blocks are not zeroed.
func (img *Image) allocateBlock() (uint32, error) {
	bm, err := img.readBitmap()
	if err != nil {
		return 0, err
	}

	idx := uint32(0)
	found := false
	for i := uint32(0); i < img.sb.BlockCount; i++ {
		if !bm.Get(int(i)) {
			idx, found = i, true
			break
		}
	}
	if !found {
		return 0, ErrOutOfSpace
	}

	bm.Set(int(idx), true)
	if err := img.writeBitmap(bm); err != nil {
		return 0, err
	}

	img.sb.OccupiedCnt++
	img.sb.FreeCount--
	if err := img.writeSuperblock(); err != nil {
		return 0, err
	}

	return idx, nil
}

// releaseBlock clears the bitmap bit for index, zero-fills the physical
// block, and updates the superblock's usage counters.
func (img *Image) releaseBlock(index uint32) error {
	bm, err := img.readBitmap()
	if err != nil {
		return err
	}
	bm.Set(int(index), false)
	if err := img.writeBitmap(bm); err != nil {
		return err
	}

	zero := make([]byte, img.sb.BlockSize)
	if err := img.writeAt(img.blockOffset(index), zero); err != nil {
		return err
	}

	img.sb.OccupiedCnt--
	img.sb.FreeCount++
	return img.writeSuperblock()
}

// blockOffset computes the absolute backing-store offset of data block index.
func (img *Image) blockOffset(index uint32) uint64 {
	return img.blocksOffset + uint64(index)*uint64(img.sb.BlockSize)
}
