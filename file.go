package miniufs

import "time"

// readFile reads size bytes from inode index starting at pos. A zero-size
// read is a no-op and never fails, even on an empty file. If pos+size would
// cross the end of the file, it fails with ErrReadOutOfBounds and performs
// no I/O.
func (img *Image) readFile(index int, pos, size uint64) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	ino, err := img.readInode(index)
	if err != nil {
		return nil, err
	}
	if pos+size > ino.Size {
		return nil, ErrReadOutOfBounds
	}

	out := make([]byte, size)
	if err := img.scanBlocks(&ino, pos, size, func(physical uint32, start, n int, dst []byte) error {
		return img.readAt(img.blockOffset(physical)+uint64(start), dst[:n])
	}, out); err != nil {
		return nil, err
	}

	return out, nil
}

// writeFile writes data to inode index at byte offset pos. A zero-length
// write is a no-op. If the write extends past the current size, the file
// is grown first to cover max(currentSize, pos+len(data)); there is no
// sparse/hole support, every intervening block is physically allocated.
func (img *Image) writeFile(index int, pos uint64, data []byte) error {
	size := uint64(len(data))
	if size == 0 {
		return nil
	}

	ino, err := img.readInode(index)
	if err != nil {
		return err
	}

	resultSize := ino.Size
	if want := pos + size; want > resultSize {
		resultSize = want
	}

	if resultSize > ino.Size {
		if err := img.resizeFile(index, resultSize); err != nil {
			return err
		}
		ino, err = img.readInode(index)
		if err != nil {
			return err
		}
	}

	if err := img.scanBlocks(&ino, pos, size, func(physical uint32, start, n int, src []byte) error {
		return img.writeAt(img.blockOffset(physical)+uint64(start), src[:n])
	}, data); err != nil {
		return err
	}

	now := time.Now().Unix()
	ino.Size = resultSize
	ino.LastModified = now
	if err := img.writeInode(index, &ino); err != nil {
		return err
	}
	img.sb.LastModified = now
	return img.writeSuperblock()
}

// scanBlocks walks the logical blocks spanned by [pos, pos+size) and
// invokes fn once per block with the resolved physical block id, the
// sub-range [start, start+n) to touch within it, and the matching slice of
// buf to read from or write into. Both readFile and writeFile share this
// traversal; only the per-block I/O direction differs.
func (img *Image) scanBlocks(ino *Inode, pos, size uint64, fn func(physical uint32, start, n int, buf []byte) error, buf []byte) error {
	bs := uint64(img.sb.BlockSize)
	firstBlock := pos / bs
	firstOffset := int(pos % bs)
	lastBlock := (pos + size - 1) / bs
	lastOffset := int((pos + size - 1) % bs)

	consumed := 0
	for block := firstBlock; block <= lastBlock; block++ {
		start := 0
		if block == firstBlock {
			start = firstOffset
		}
		end := int(bs) - 1
		if block == lastBlock {
			end = lastOffset
		}
		n := end - start + 1

		physical, err := img.resolveBlock(ino, block)
		if err != nil {
			return err
		}
		if err := fn(physical, start, n, buf[consumed:consumed+n]); err != nil {
			return err
		}
		consumed += n
	}
	return nil
}
