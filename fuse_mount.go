//go:build fuse

package miniufs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// node is a read-only FUSE view of one inode. Mounting an Image only
// exposes it for browsing and extraction through the kernel's VFS;
// mutation still goes through the Image's own namespace operations.
type node struct {
	fs.Inode
	img   *Image
	index int
}

var (
	_ fs.NodeLookuper  = (*node)(nil)
	_ fs.NodeReaddirer = (*node)(nil)
	_ fs.NodeOpener    = (*node)(nil)
	_ fs.NodeReader    = (*node)(nil)
	_ fs.NodeGetattrer = (*node)(nil)
)

func (n *node) attr(ino *Inode, out *fuse.Attr) {
	out.Size = ino.Size
	out.Mtime = uint64(ino.LastModified)
	out.Ctime = uint64(ino.CreationTime)
	out.Nlink = uint32(ino.RefCount)
	if ino.fileType() == TypeDir {
		out.Mode = syscall.S_IFDIR | 0o755
	} else {
		out.Mode = syscall.S_IFREG | 0o644
	}
}

func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	ino, err := n.img.readInode(n.index)
	if err != nil {
		return syscall.EIO
	}
	n.attr(&ino, &out.Attr)
	return 0
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childID, err := n.img.lookupDirEntry(n.index, name)
	if err != nil {
		return nil, syscall.ENOENT
	}

	ino, err := n.img.readInode(int(childID))
	if err != nil {
		return nil, syscall.EIO
	}
	n.attr(&ino, &out.Attr)

	child := &node{img: n.img, index: int(childID)}
	mode := uint32(fuse.S_IFREG)
	if ino.fileType() == TypeDir {
		mode = fuse.S_IFDIR
	}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: mode, Ino: uint64(childID)}), 0
}

type dirStream struct {
	entries []DirEntry
	pos     int
}

func (d *dirStream) HasNext() bool { return d.pos < len(d.entries) }

func (d *dirStream) Next() (fuse.DirEntry, syscall.Errno) {
	e := d.entries[d.pos]
	d.pos++
	mode := uint32(fuse.S_IFREG)
	if e.Type == TypeDir {
		mode = fuse.S_IFDIR
	}
	return fuse.DirEntry{Name: e.Name, Ino: uint64(e.Ino), Mode: mode}, 0
}

func (d *dirStream) Close() {}

func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.img.readDir(n.index)
	if err != nil {
		return nil, syscall.EIO
	}
	return &dirStream{entries: entries}, 0
}

func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	ino, err := n.img.readInode(n.index)
	if err != nil {
		return nil, syscall.EIO
	}

	size := uint64(len(dest))
	if uint64(off) >= ino.Size {
		return fuse.ReadResultData(nil), 0
	}
	if uint64(off)+size > ino.Size {
		size = ino.Size - uint64(off)
	}

	data, err := n.img.readFile(n.index, uint64(off), size)
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(data), 0
}

// Mount exposes img as a read-only FUSE filesystem at mountpoint. The
// returned server must be Unmounted (or Wait()ed on after an external
// unmount) by the caller.
func Mount(img *Image, mountpoint string) (*fuse.Server, error) {
	root := &node{img: img, index: RootInodeIndex}
	opts := &fs.Options{
		MountOptions: fuse.MountOptions{FsName: "miniufs", Name: "miniufs", ReadOnly: true},
	}
	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	return server, nil
}
