package miniufs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// createRoot initializes inode 0 as the filesystem root: a directory whose
// first two entries are "." and ".." both pointing back at itself.
func (img *Image) createRoot() error {
	now := time.Now().Unix()
	root := Inode{CreationTime: now, LastModified: now, RefCount: 1}
	root.setType(TypeDir, true)

	if err := img.writeInode(RootInodeIndex, &root); err != nil {
		return err
	}
	if err := img.appendDirEntry(RootInodeIndex, RootInodeIndex, "."); err != nil {
		return err
	}
	if err := img.appendDirEntry(RootInodeIndex, RootInodeIndex, ".."); err != nil {
		return err
	}

	img.sb.FileCount++
	return img.writeSuperblock()
}

// createAt creates a new inode of the given type named name inside the
// directory at parentPath. The new inode starts empty (size 0); its data
// blocks are allocated lazily by the first write that needs them. (The
// source this package is modeled on pre-allocates one block and sets
// size = 1 at this point, a byte that is never meaningful and, for a new
// directory, shifts every subsequent "." / ".." record one byte off of
// where directory scans expect it to start. We allocate lazily instead,
// matching the same end-state block accounting once a first write lands.)
func (img *Image) createAt(name, parentPath string, t FileType) (int, error) {
	parentIdx, err := img.resolvePath(ensureLeadingSlash(parentPath))
	if err != nil {
		return 0, err
	}

	parent, err := img.readInode(parentIdx)
	if err != nil {
		return 0, err
	}
	if parent.fileType() != TypeDir {
		return 0, ErrNotADirectory
	}

	unique, err := img.isNameUnique(parentIdx, name)
	if err != nil {
		return 0, err
	}
	if !unique {
		return 0, ErrNameExists
	}

	childIdx, err := img.findUnusedInode()
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	child := Inode{CreationTime: now, LastModified: now, RefCount: 1}
	child.setType(t, true)
	if err := img.writeInode(childIdx, &child); err != nil {
		return 0, err
	}

	if t == TypeDir {
		if err := img.appendDirEntry(childIdx, uint32(childIdx), "."); err != nil {
			return 0, err
		}
		if err := img.appendDirEntry(childIdx, uint32(parentIdx), ".."); err != nil {
			return 0, err
		}
	}

	img.sb.FileCount++
	if err := img.writeSuperblock(); err != nil {
		return 0, err
	}

	if err := img.appendDirEntry(parentIdx, uint32(childIdx), name); err != nil {
		return 0, err
	}

	return childIdx, nil
}

// CreateFile creates a new inode of type t at path, splitting path into
// its parent directory and basename.
func (img *Image) CreateFile(path string, t FileType) (int, error) {
	path = ensureLeadingSlash(path)
	parent, name := splitParentAndName(path)
	return img.createAt(name, parent, t)
}

// Mkdir ensures every prefix of path exists, creating each missing segment
// as a directory in order. Running Mkdir on the same path twice is a no-op
// the second time.
func (img *Image) Mkdir(path string) error {
	path = ensureLeadingSlash(path)
	if path == "/" {
		return nil
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	parent := "/"
	for _, seg := range segs {
		candidate := parent
		if !strings.HasSuffix(candidate, "/") {
			candidate += "/"
		}
		candidate += seg

		if _, err := img.resolvePath(candidate); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			if _, err := img.createAt(seg, parent, TypeDir); err != nil {
				return err
			}
		}
		parent = candidate + "/"
	}
	return nil
}

// Link adds a second directory entry named linkName for the inode at
// targetPath, incrementing its reference count. Following the reference
// implementation, the new record is appended to the target's own parent
// directory (linkName supplies only the record's name, not a destination
// directory).
func (img *Image) Link(linkName, targetPath string) error {
	targetPath = ensureLeadingSlash(targetPath)
	targetIdx, err := img.resolvePath(targetPath)
	if err != nil {
		return err
	}

	parentPath, _ := splitParentAndName(targetPath)
	parentIdx, err := img.resolvePath(parentPath)
	if err != nil {
		return err
	}

	if err := img.appendDirEntry(parentIdx, uint32(targetIdx), linkName); err != nil {
		return err
	}

	target, err := img.readInode(targetIdx)
	if err != nil {
		return err
	}
	target.RefCount++
	return img.writeInode(targetIdx, &target)
}

// Remove decrements the reference count of the regular file at path,
// releasing its inode and blocks once the count reaches zero. It fails
// with ErrNotAFile if path names a directory.
func (img *Image) Remove(path string) error {
	path = ensureLeadingSlash(path)
	idx, err := img.resolvePath(path)
	if err != nil {
		return err
	}

	ino, err := img.readInode(idx)
	if err != nil {
		return err
	}
	if ino.fileType() == TypeDir {
		return ErrNotAFile
	}

	parentPath, _ := splitParentAndName(path)
	parentIdx, err := img.resolvePath(parentPath)
	if err != nil {
		return err
	}

	ino.RefCount--
	if ino.RefCount == 0 {
		if err := img.resizeFile(idx, 0); err != nil {
			return err
		}
		if ino, err = img.readInode(idx); err != nil {
			return err
		}
		if err := img.removeDirEntry(parentIdx, uint32(idx)); err != nil {
			return err
		}
		ino.Flags = 0
		ino.CreationTime = 0
		img.sb.FileCount--
	}

	if err := img.writeInode(idx, &ino); err != nil {
		return err
	}
	return img.touch()
}

// Extend grows the regular file at path by n bytes.
func (img *Image) Extend(path string, n uint64) error {
	idx, ino, err := img.resolveFile(path)
	if err != nil {
		return err
	}
	return img.resizeFile(idx, ino.Size+n)
}

// Truncate shrinks the regular file at path by n bytes. Truncating by more
// than the current size empties the file rather than underflowing.
func (img *Image) Truncate(path string, n uint64) error {
	idx, ino, err := img.resolveFile(path)
	if err != nil {
		return err
	}
	newSize := uint64(0)
	if n < ino.Size {
		newSize = ino.Size - n
	}
	return img.resizeFile(idx, newSize)
}

// resolveFile resolves path and requires it to name a regular file.
func (img *Image) resolveFile(path string) (int, Inode, error) {
	idx, err := img.resolvePath(ensureLeadingSlash(path))
	if err != nil {
		return 0, Inode{}, err
	}
	ino, err := img.readInode(idx)
	if err != nil {
		return 0, Inode{}, err
	}
	if ino.fileType() != TypeFile {
		return 0, Inode{}, ErrNotAFile
	}
	return idx, ino, nil
}

// Ls returns a listing of the directory at path: a header line
// "<path> size: <bytes>" followed by one line per record, "<T> <name>[/]
// <size>" where T is F, D, or L. An empty path means "/".
func (img *Image) Ls(path string) (string, error) {
	display := path
	if display == "" {
		display = "/"
	}

	idx, err := img.resolvePath(ensureLeadingSlash(display))
	if err != nil {
		return "", err
	}
	ino, err := img.readInode(idx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s size: %d\n", display, ino.Size)

	entries, err := img.readDir(idx)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		suffix := ""
		if e.Type == TypeDir {
			suffix = "/"
		}
		fmt.Fprintf(&b, "%s %s%s %d\n", e.Type, e.Name, suffix, e.Size)
	}
	return b.String(), nil
}

// Df reports block and inode usage.
func (img *Image) Df() string {
	u := img.Usage()
	return fmt.Sprintf(
		"Block count (used/free): %d (%d / %d).\nInode count: %d (used: %d).\n",
		u.BlockCount, u.BlocksUsed, u.BlocksFree, u.MaxFileCount, u.FilesInUse)
}

// Upload reads hostPath in full and creates a regular file at virtualPath
// holding its contents.
func (img *Image) Upload(hostPath, virtualPath string) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}

	virtualPath = ensureLeadingSlash(virtualPath)
	if _, err := img.CreateFile(virtualPath, TypeFile); err != nil {
		return err
	}
	idx, err := img.resolvePath(virtualPath)
	if err != nil {
		return err
	}
	return img.writeFile(idx, 0, data)
}

// Extract reads the entire regular file at virtualPath and writes it to
// hostPath, truncating any existing contents.
func (img *Image) Extract(virtualPath, hostPath string) error {
	idx, ino, err := img.resolveFile(virtualPath)
	if err != nil {
		return err
	}
	data, err := img.readFile(idx, 0, ino.Size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(hostPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}
