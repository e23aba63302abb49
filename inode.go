package miniufs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Inode is the fixed-size record describing one file, directory, or link:
// timestamps, byte size, block map, reference count, and type/in-use flags.
type Inode struct {
	CreationTime   int64
	LastModified   int64
	Size           uint64
	Direct         [InodePrimaryTableSize]uint32
	SingleIndirect uint32
	DoubleIndirect uint32
	RefCount       uint16
	Flags          uint8
}

func (ino *Inode) inUse() bool {
	return ino.Flags&flagUsed != 0
}

func (ino *Inode) fileType() FileType {
	return FileType((ino.Flags & flagTypeMask) >> flagTypeBit)
}

func (ino *Inode) setType(t FileType, used bool) {
	ino.Flags = uint8(t) << flagTypeBit
	if used {
		ino.Flags |= flagUsed
	}
}

func (ino *Inode) marshalBinary() []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, ino.CreationTime)
	binary.Write(buf, binary.LittleEndian, ino.LastModified)
	binary.Write(buf, binary.LittleEndian, ino.Size)
	binary.Write(buf, binary.LittleEndian, ino.Direct)
	binary.Write(buf, binary.LittleEndian, ino.SingleIndirect)
	binary.Write(buf, binary.LittleEndian, ino.DoubleIndirect)
	binary.Write(buf, binary.LittleEndian, ino.RefCount)
	binary.Write(buf, binary.LittleEndian, ino.Flags)
	return buf.Bytes()
}

func (ino *Inode) unmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	for _, field := range []any{
		&ino.CreationTime, &ino.LastModified, &ino.Size, &ino.Direct,
		&ino.SingleIndirect, &ino.DoubleIndirect, &ino.RefCount, &ino.Flags,
	} {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("%w: decode inode: %s", ErrIO, err)
		}
	}
	return nil
}

// inodeOffset computes the absolute backing-store offset of inode index.
func (img *Image) inodeOffset(index int) uint64 {
	return img.inodesOffset + uint64(index)*inodeSize
}

// readInode reads the fixed-size inode record at index.
func (img *Image) readInode(index int) (Inode, error) {
	buf := make([]byte, inodeSize)
	if err := img.readAt(img.inodeOffset(index), buf); err != nil {
		return Inode{}, err
	}
	var ino Inode
	if err := ino.unmarshalBinary(buf); err != nil {
		return Inode{}, err
	}
	return ino, nil
}

// writeInode persists the fixed-size inode record at index.
func (img *Image) writeInode(index int, ino *Inode) error {
	return img.writeAt(img.inodeOffset(index), ino.marshalBinary())
}

// findUnusedInode scans the inode table ascending from index 0 and returns
// the first index whose in-use bit is clear. Index 0 is never returned by
// this scan in practice since the root inode always occupies it once the
// image is initialized.
func (img *Image) findUnusedInode() (int, error) {
	for i := 0; i < int(img.sb.MaxFileCnt); i++ {
		ino, err := img.readInode(i)
		if err != nil {
			return 0, err
		}
		if !ino.inUse() {
			return i, nil
		}
	}
	return 0, ErrNoFreeInode
}
