// Package miniufs implements a miniature Unix-style filesystem image packed
// into a single host file: a superblock, a fixed-size inode table, a
// block-allocation bitmap, and a pool of fixed-size data blocks, with inodes
// addressed through a classical direct/single-indirect/double-indirect
// pointer scheme.
package miniufs

// Binary-format-critical constants. Changing any of these changes the wire
// layout of existing images.
const (
	// MagicID identifies a valid image at offset 0.
	MagicID uint64 = 0x00BEAFEDDEADBEEF

	// DefaultBlockSize is the size in bytes of one data block.
	DefaultBlockSize = 4096

	// MaxFileCount is the fixed number of inode slots in the inode table.
	MaxFileCount = 256

	// MaxNameLength is the longest directory-entry name, in bytes.
	MaxNameLength = 256

	// InodePrimaryTableSize is the number of direct block pointers held inline in an inode.
	InodePrimaryTableSize = 15

	// InodeBlockPointerTableSize is the number of 32-bit pointers that fit in
	// one indirect block at the default block size (BlockSize / 4). Images
	// created with a non-default block size use ptrsPerBlock (blockmap.go)
	// instead, since an indirect table always holds exactly BlockSize/4
	// pointers, whatever BlockSize that image was created with.
	InodeBlockPointerTableSize = DefaultBlockSize / 4

	// MaxInodeBlockCount is the largest logical block index addressable by an
	// inode at the default block size: 15 direct + 1024 single-indirect +
	// 1024*1024 double-indirect. See (*Image).maxBlockCount for the general,
	// block-size-dependent form.
	MaxInodeBlockCount = InodePrimaryTableSize +
		InodeBlockPointerTableSize*(InodeBlockPointerTableSize+1)

	// RootInodeIndex is the inode index of the filesystem root, always a directory.
	RootInodeIndex = 0

	// superblockSize is the on-disk byte size of a Superblock record.
	superblockSize = 8 + 8 + 4 + 4 + 4 + 2 + 2 + 2

	// inodeSize is the on-disk byte size of an Inode record.
	inodeSize = 8 + 8 + 8 + InodePrimaryTableSize*4 + 4 + 4 + 2 + 1
)

// FileType identifies what kind of object an inode represents, stored in
// bits 6-5 of the inode's flag byte.
type FileType uint8

const (
	TypeDir  FileType = 0b01
	TypeFile FileType = 0b10
	TypeLink FileType = 0b11
)

func (t FileType) String() string {
	switch t {
	case TypeDir:
		return "D"
	case TypeFile:
		return "F"
	case TypeLink:
		return "L"
	default:
		return "?"
	}
}

// Flag byte layout, high bit to low bit: U M M S T s t 0
//   - bit 7 (flagUsed): inode is in use
//   - bits 6-5 (flagTypeMask): FileType
//   - remaining bits reserved, always zero
const (
	flagUsed     = 0b1000_0000
	flagTypeMask = 0b0110_0000
	flagTypeBit  = 5
)
