package miniufs

// Directory payload format: a packed sequence of variable-length records,
// each uint32 child inode id || uint32 name length || name length bytes of
// name, in insertion order. Records may span block boundaries; they are
// read and written through the positioned file I/O in file.go, never by
// touching whole blocks directly.
const dirRecordHeaderSize = 8

// appendDirEntry appends a (childID, name) record at the current end of
// the directory file. Callers are responsible for checking uniqueness
// first; this never checks for duplicates.
func (img *Image) appendDirEntry(dirIndex int, childID uint32, name string) error {
	ino, err := img.readInode(dirIndex)
	if err != nil {
		return err
	}

	record := make([]byte, dirRecordHeaderSize+len(name))
	img.order.PutUint32(record[0:4], childID)
	img.order.PutUint32(record[4:8], uint32(len(name)))
	copy(record[8:], name)

	return img.writeFile(dirIndex, ino.Size, record)
}

// lookupDirEntry scans the directory's records from the start, comparing
// byte-for-byte, and returns the child inode id of the first match. A
// lookup inside a non-directory inode fails with ErrNotFound.
func (img *Image) lookupDirEntry(dirIndex int, name string) (uint32, error) {
	ino, err := img.readInode(dirIndex)
	if err != nil {
		return 0, err
	}
	if ino.fileType() != TypeDir {
		return 0, ErrNotFound
	}

	pos := uint64(0)
	for pos < ino.Size {
		childID, nameLen, err := img.readDirHeader(dirIndex, pos)
		if err != nil {
			return 0, err
		}
		entryName, err := img.readFile(dirIndex, pos+dirRecordHeaderSize, uint64(nameLen))
		if err != nil {
			return 0, err
		}
		if string(entryName) == name {
			return childID, nil
		}
		pos += dirRecordHeaderSize + uint64(nameLen)
	}
	return 0, ErrNotFound
}

// isNameUnique reports whether no record in the directory bears name.
func (img *Image) isNameUnique(dirIndex int, name string) (bool, error) {
	_, err := img.lookupDirEntry(dirIndex, name)
	switch err {
	case nil:
		return false, nil
	case ErrNotFound:
		return true, nil
	default:
		return false, err
	}
}

// removeDirEntry removes the first record whose child inode id matches
// childID, shifting the remaining tail of the directory payload down to
// fill the gap and shrinking the directory's size accordingly. It is a
// no-op if no matching record exists.
func (img *Image) removeDirEntry(dirIndex int, childID uint32) error {
	ino, err := img.readInode(dirIndex)
	if err != nil {
		return err
	}

	pos := uint64(0)
	for pos < ino.Size {
		cid, nameLen, err := img.readDirHeader(dirIndex, pos)
		if err != nil {
			return err
		}
		recordLen := dirRecordHeaderSize + uint64(nameLen)

		if cid == childID {
			tailStart := pos + recordLen
			tailLen := ino.Size - tailStart
			if tailLen > 0 {
				tail, err := img.readFile(dirIndex, tailStart, tailLen)
				if err != nil {
					return err
				}
				if err := img.writeFile(dirIndex, pos, tail); err != nil {
					return err
				}
			}
			return img.resizeFile(dirIndex, ino.Size-recordLen)
		}

		pos += recordLen
	}
	return nil
}

// readDirHeader reads the (childID, nameLen) header of the record at pos.
func (img *Image) readDirHeader(dirIndex int, pos uint64) (childID uint32, nameLen uint32, err error) {
	header, err := img.readFile(dirIndex, pos, dirRecordHeaderSize)
	if err != nil {
		return 0, 0, err
	}
	return img.order.Uint32(header[0:4]), img.order.Uint32(header[4:8]), nil
}

// DirEntry describes one record in a directory listing.
type DirEntry struct {
	Name string
	Ino  uint32
	Type FileType
	Size uint64
}

// readDir returns every record in the directory at dirIndex, in storage order.
func (img *Image) readDir(dirIndex int) ([]DirEntry, error) {
	ino, err := img.readInode(dirIndex)
	if err != nil {
		return nil, err
	}

	var entries []DirEntry
	pos := uint64(0)
	for pos < ino.Size {
		childID, nameLen, err := img.readDirHeader(dirIndex, pos)
		if err != nil {
			return nil, err
		}
		nameBuf, err := img.readFile(dirIndex, pos+dirRecordHeaderSize, uint64(nameLen))
		if err != nil {
			return nil, err
		}
		child, err := img.readInode(int(childID))
		if err != nil {
			return nil, err
		}
		entries = append(entries, DirEntry{
			Name: string(nameBuf),
			Ino:  childID,
			Type: child.fileType(),
			Size: child.Size,
		})
		pos += dirRecordHeaderSize + uint64(nameLen)
	}
	return entries, nil
}
