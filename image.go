package miniufs

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Image is the single in-memory handle to a backing store: the host file
// holding the superblock, inode table, bitmap and data blocks described in
// the package doc. All higher-level operations (namespace, directory,
// file read/write, resize) go through an *Image.
//
// An Image is single-threaded and synchronous: there is no internal
// locking, and callers must not use the same Image concurrently from
// multiple goroutines.
type Image struct {
	store *os.File
	order binary.ByteOrder

	sb Superblock

	inodesOffset uint64
	bitmapOffset uint64
	blocksOffset uint64
	bitmapSize   uint32
}

// CreateImage creates (or truncates) the host file at path, sized to hold
// at least sizeBytes of data blocks, and initializes a fresh image: a
// superblock, a zeroed inode table of MaxFileCount inodes, a zeroed bitmap,
// BlockCount zeroed data blocks, and a root directory inode.
func CreateImage(path string, sizeBytes int64, opts ...Option) (*Image, error) {
	params := &creationParams{blockSize: DefaultBlockSize}
	for _, opt := range opts {
		if err := opt(params); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("miniufs: create image %s: %w", path, err)
	}

	blockSize := params.blockSize
	blockCount := uint32((sizeBytes + int64(blockSize) - 1) / int64(blockSize))
	bitmapSize := (blockCount + 7) / 8

	img := &Image{
		store:      f,
		order:      binary.LittleEndian,
		bitmapSize: bitmapSize,
	}
	img.sb = Superblock{
		Magic:        MagicID,
		LastModified: time.Now().Unix(),
		BlockCount:   blockCount,
		OccupiedCnt:  0,
		FreeCount:    blockCount,
		BlockSize:    uint16(blockSize),
		MaxFileCnt:   MaxFileCount,
		FileCount:    0,
	}

	img.inodesOffset = superblockSize
	img.bitmapOffset = img.inodesOffset + MaxFileCount*inodeSize
	img.blocksOffset = img.bitmapOffset + uint64(bitmapSize)

	log.Printf("miniufs: creating image %s, %d blocks of %d bytes (inodes@%d bitmap@%d blocks@%d)",
		path, blockCount, blockSize, img.inodesOffset, img.bitmapOffset, img.blocksOffset)

	if err := img.initDrive(); err != nil {
		f.Close()
		return nil, err
	}
	if err := img.createRoot(); err != nil {
		f.Close()
		return nil, err
	}

	return img, nil
}

// OpenImage opens an existing image file and parses its superblock.
func OpenImage(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("miniufs: open image %s: %w", path, err)
	}

	img := &Image{store: f, order: binary.LittleEndian}
	if err := img.readSuperblock(); err != nil {
		f.Close()
		return nil, err
	}

	img.inodesOffset = superblockSize
	img.bitmapOffset = img.inodesOffset + uint64(img.sb.MaxFileCnt)*inodeSize
	img.bitmapSize = (img.sb.BlockCount + 7) / 8
	img.blocksOffset = img.bitmapOffset + uint64(img.bitmapSize)

	return img, nil
}

// Close releases the backing store. It is safe to call once, on every exit
// path from whatever constructed the Image.
func (img *Image) Close() error {
	return img.store.Close()
}

// readAt performs a positioned read of exactly len(buf) bytes.
func (img *Image) readAt(off uint64, buf []byte) error {
	n, err := img.store.ReadAt(buf, int64(off))
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short read at offset %d (%d/%d bytes)", ErrIO, off, n, len(buf))
	}
	return nil
}

// writeAt performs a positioned write of exactly len(buf) bytes.
func (img *Image) writeAt(off uint64, buf []byte) error {
	n, err := img.store.WriteAt(buf, int64(off))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short write at offset %d (%d/%d bytes)", ErrIO, off, n, len(buf))
	}
	return nil
}

func (img *Image) initDrive() error {
	if err := img.writeSuperblock(); err != nil {
		return err
	}

	zeroInode := make([]byte, inodeSize)
	for i := 0; i < int(img.sb.MaxFileCnt); i++ {
		if err := img.writeAt(img.inodesOffset+uint64(i)*inodeSize, zeroInode); err != nil {
			return err
		}
	}

	zeroBitmap := make([]byte, img.bitmapSize)
	if err := img.writeAt(img.bitmapOffset, zeroBitmap); err != nil {
		return err
	}

	zeroBlock := make([]byte, img.sb.BlockSize)
	for i := uint32(0); i < img.sb.BlockCount; i++ {
		if err := img.writeAt(img.blocksOffset+uint64(i)*uint64(img.sb.BlockSize), zeroBlock); err != nil {
			return err
		}
	}

	return nil
}
