package miniufs

// blockRegion classifies a logical block index within a file's address
// space into one of the three addressing tiers. resize, read, and write
// all share this classifier so the three stay in lockstep.
type blockRegion struct {
	direct      bool
	slot        int // valid when direct, or single-indirect slot
	single      bool
	double      bool
	top, leaf   int // valid when double
}

// classifyBlock maps a logical block index k to the tier that addresses it.
// ptrsPerTable is the number of pointers that fit in one indirect block,
// i.e. the image's block size divided by 4 ((*Image).ptrsPerBlock) — it is
// 1024 (InodeBlockPointerTableSize) at the default block size, but every
// caller must pass the actual value for the image in hand, since a
// non-default block size changes how many pointers an indirect block holds.
func classifyBlock(k uint64, ptrsPerTable uint64) blockRegion {
	switch {
	case k < InodePrimaryTableSize:
		return blockRegion{direct: true, slot: int(k)}
	case k < InodePrimaryTableSize+ptrsPerTable:
		return blockRegion{single: true, slot: int(k - InodePrimaryTableSize)}
	default:
		j := k - InodePrimaryTableSize - ptrsPerTable
		return blockRegion{
			double: true,
			top:    int(j / ptrsPerTable),
			leaf:   int(j % ptrsPerTable),
		}
	}
}

// ptrsPerBlock returns the number of 32-bit pointers that fit in one
// indirect table block for this image: its block size divided by 4.
func (img *Image) ptrsPerBlock() uint64 {
	return uint64(img.sb.BlockSize) / 4
}

// maxBlockCount returns the largest logical block index (exclusive) this
// image's inodes can address: 15 direct + p single-indirect + p*p
// double-indirect, where p is ptrsPerBlock.
func (img *Image) maxBlockCount() uint64 {
	p := img.ptrsPerBlock()
	return InodePrimaryTableSize + p*(p+1)
}

// readPointer reads the 32-bit little-endian pointer at slot within the
// indirect table living in block tableBlock.
func (img *Image) readPointer(tableBlock uint32, slot int) (uint32, error) {
	buf := make([]byte, 4)
	off := img.blockOffset(tableBlock) + uint64(slot)*4
	if err := img.readAt(off, buf); err != nil {
		return 0, err
	}
	return img.order.Uint32(buf), nil
}

// writePointer writes a 32-bit little-endian pointer at slot within the
// indirect table living in block tableBlock.
func (img *Image) writePointer(tableBlock uint32, slot int, value uint32) error {
	buf := make([]byte, 4)
	img.order.PutUint32(buf, value)
	off := img.blockOffset(tableBlock) + uint64(slot)*4
	return img.writeAt(off, buf)
}

// resolveBlock translates logical block index k of inode ino into a
// physical data block id, following the direct/single-indirect/
// double-indirect tables as needed.
func (img *Image) resolveBlock(ino *Inode, k uint64) (uint32, error) {
	r := classifyBlock(k, img.ptrsPerBlock())
	switch {
	case r.direct:
		return ino.Direct[r.slot], nil
	case r.single:
		return img.readPointer(ino.SingleIndirect, r.slot)
	default:
		leafTable, err := img.readPointer(ino.DoubleIndirect, r.top)
		if err != nil {
			return 0, err
		}
		return img.readPointer(leafTable, r.leaf)
	}
}
