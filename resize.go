package miniufs

import "time"

// dataBlockCount returns ceil(size / block size).
func (img *Image) dataBlockCount(size uint64) uint64 {
	bs := uint64(img.sb.BlockSize)
	return (size + bs - 1) / bs
}

// realBlockCount returns the number of physical blocks a file of the given
// size actually occupies, including indirect table blocks: the data blocks
// themselves, plus one single-indirect table block once the file spans
// past the direct region, plus one double-indirect top-level block and one
// leaf table block per ptrsPerBlock data blocks spanned beyond the
// single-indirect region.
//
// The double-indirect leaf count divides by ptrsPerBlock, the number of
// pointers an indirect block holds, not by the block size in bytes: each
// leaf table holds ptrsPerBlock pointers regardless of how many bytes a
// data block holds.
func (img *Image) realBlockCount(size uint64) uint64 {
	p := img.ptrsPerBlock()
	dataBlocks := img.dataBlockCount(size)
	result := dataBlocks

	if dataBlocks > InodePrimaryTableSize {
		result++
	}
	if dataBlocks > InodePrimaryTableSize+p {
		beyond := dataBlocks - InodePrimaryTableSize - p
		leaves := (beyond + p - 1) / p
		result += 1 + leaves
	}
	return result
}

// resizeFile grows or shrinks inode index to exactly newSize bytes,
// allocating or releasing physical blocks and indirect-table blocks so the
// inode's block map stays consistent with its declared size. On
// ErrFileTooLarge no state is changed.
func (img *Image) resizeFile(index int, newSize uint64) error {
	ino, err := img.readInode(index)
	if err != nil {
		return err
	}

	if img.realBlockCount(newSize) > img.maxBlockCount() {
		return ErrFileTooLarge
	}

	oldDataBlocks := img.dataBlockCount(ino.Size)
	newDataBlocks := img.dataBlockCount(newSize)

	switch {
	case newDataBlocks > oldDataBlocks:
		if err := img.growBlocks(&ino, oldDataBlocks, newDataBlocks); err != nil {
			return err
		}
	case newDataBlocks < oldDataBlocks:
		if err := img.shrinkBlocks(&ino, oldDataBlocks, newDataBlocks); err != nil {
			return err
		}
	}

	now := time.Now().Unix()
	ino.Size = newSize
	ino.LastModified = now
	if err := img.writeInode(index, &ino); err != nil {
		return err
	}
	img.sb.LastModified = now
	return img.writeSuperblock()
}

// growBlocks allocates physical blocks (and any indirect tables they
// require) for logical block indices [oldCount, newCount).
func (img *Image) growBlocks(ino *Inode, oldCount, newCount uint64) error {
	ptrsPerBlock := img.ptrsPerBlock()
	for k := oldCount; k < newCount; k++ {
		r := classifyBlock(k, ptrsPerBlock)
		switch {
		case r.direct:
			blk, err := img.allocateBlock()
			if err != nil {
				return err
			}
			ino.Direct[r.slot] = blk

		case r.single:
			if k == InodePrimaryTableSize {
				tbl, err := img.allocateBlock()
				if err != nil {
					return err
				}
				ino.SingleIndirect = tbl
			}
			blk, err := img.allocateBlock()
			if err != nil {
				return err
			}
			if err := img.writePointer(ino.SingleIndirect, r.slot, blk); err != nil {
				return err
			}

		case r.double:
			if k == InodePrimaryTableSize+ptrsPerBlock {
				tbl, err := img.allocateBlock()
				if err != nil {
					return err
				}
				ino.DoubleIndirect = tbl
			}
			if r.leaf == 0 {
				leaf, err := img.allocateBlock()
				if err != nil {
					return err
				}
				if err := img.writePointer(ino.DoubleIndirect, r.top, leaf); err != nil {
					return err
				}
			}
			leafTable, err := img.readPointer(ino.DoubleIndirect, r.top)
			if err != nil {
				return err
			}
			blk, err := img.allocateBlock()
			if err != nil {
				return err
			}
			if err := img.writePointer(leafTable, r.leaf, blk); err != nil {
				return err
			}
		}
	}
	return nil
}

// shrinkBlocks releases physical blocks (and any indirect tables that
// become empty) for logical block indices [newCount, oldCount), visited
// in descending order.
func (img *Image) shrinkBlocks(ino *Inode, oldCount, newCount uint64) error {
	ptrsPerBlock := img.ptrsPerBlock()
	for k := oldCount; k > newCount; k-- {
		kIdx := k - 1
		r := classifyBlock(kIdx, ptrsPerBlock)
		switch {
		case r.direct:
			if err := img.releaseBlock(ino.Direct[r.slot]); err != nil {
				return err
			}
			ino.Direct[r.slot] = 0

		case r.single:
			blk, err := img.readPointer(ino.SingleIndirect, r.slot)
			if err != nil {
				return err
			}
			if err := img.releaseBlock(blk); err != nil {
				return err
			}
			if r.slot == 0 {
				if err := img.releaseBlock(ino.SingleIndirect); err != nil {
					return err
				}
				ino.SingleIndirect = 0
			}

		case r.double:
			leafTable, err := img.readPointer(ino.DoubleIndirect, r.top)
			if err != nil {
				return err
			}
			blk, err := img.readPointer(leafTable, r.leaf)
			if err != nil {
				return err
			}
			if err := img.releaseBlock(blk); err != nil {
				return err
			}
			if r.leaf == 0 {
				if err := img.releaseBlock(leafTable); err != nil {
					return err
				}
			}
			// Release the top-level table once the whole double-indirect
			// region has emptied, i.e. once we've released the first block
			// it ever addressed, rather than trusting a zero leaf pointer.
			if kIdx == InodePrimaryTableSize+ptrsPerBlock {
				if err := img.releaseBlock(ino.DoubleIndirect); err != nil {
					return err
				}
				ino.DoubleIndirect = 0
			}
		}
	}
	return nil
}
