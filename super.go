package miniufs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"time"
)

// Superblock is the fixed-size image header at offset 0. It is the
// authoritative source for block/inode accounting; every mutation that
// changes a counter rewrites it in full.
type Superblock struct {
	Magic        uint64
	LastModified int64
	BlockCount   uint32
	OccupiedCnt  uint32
	FreeCount    uint32
	BlockSize    uint16
	MaxFileCnt   uint16
	FileCount    uint16
}

// marshalBinary encodes the superblock fields in declared order, little-endian.
func (sb *Superblock) marshalBinary() []byte {
	buf := &bytes.Buffer{}
	v := reflect.ValueOf(sb).Elem()
	for i := 0; i < v.NumField(); i++ {
		binary.Write(buf, binary.LittleEndian, v.Field(i).Interface())
	}
	return buf.Bytes()
}

// unmarshalBinary decodes a superblock record previously produced by marshalBinary.
func (sb *Superblock) unmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	v := reflect.ValueOf(sb).Elem()
	for i := 0; i < v.NumField(); i++ {
		if err := binary.Read(r, binary.LittleEndian, v.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("%w: decode superblock field %s: %s", ErrIO, v.Type().Field(i).Name, err)
		}
	}
	if sb.Magic != MagicID {
		return ErrInvalidImage
	}
	return nil
}

func (img *Image) readSuperblock() error {
	buf := make([]byte, superblockSize)
	if err := img.readAt(0, buf); err != nil {
		return err
	}
	return img.sb.unmarshalBinary(buf)
}

// writeSuperblock persists the full superblock. Called whenever any counter
// (occupied/free block count, file count) or the last-modified timestamp changes.
func (img *Image) writeSuperblock() error {
	return img.writeAt(0, img.sb.marshalBinary())
}

// touch refreshes LastModified to now and persists the superblock.
func (img *Image) touch() error {
	img.sb.LastModified = time.Now().Unix()
	return img.writeSuperblock()
}

// Usage reports the current block and inode accounting.
type Usage struct {
	BlockCount    uint32
	BlocksUsed    uint32
	BlocksFree    uint32
	MaxFileCount  uint16
	FilesInUse    uint16
}

// Usage returns a snapshot of the superblock's usage counters.
func (img *Image) Usage() Usage {
	return Usage{
		BlockCount:   img.sb.BlockCount,
		BlocksUsed:   img.sb.OccupiedCnt,
		BlocksFree:   img.sb.FreeCount,
		MaxFileCount: img.sb.MaxFileCnt,
		FilesInUse:   img.sb.FileCount,
	}
}
