package miniufs

import "testing"

func TestInodeRoundTrip(t *testing.T) {
	img := newTestImage(t, 64, 8)

	ino := Inode{
		CreationTime:   1000,
		LastModified:   2000,
		Size:           1234,
		SingleIndirect: 7,
		DoubleIndirect: 9,
		RefCount:       3,
	}
	ino.Direct[0] = 11
	ino.Direct[14] = 22
	ino.setType(TypeFile, true)

	const idx = 5
	if err := img.writeInode(idx, &ino); err != nil {
		t.Fatalf("writeInode: %s", err)
	}

	got, err := img.readInode(idx)
	if err != nil {
		t.Fatalf("readInode: %s", err)
	}
	if got != ino {
		t.Errorf("readInode round trip = %+v, want %+v", got, ino)
	}
	if !got.inUse() {
		t.Error("inUse() = false, want true")
	}
	if got.fileType() != TypeFile {
		t.Errorf("fileType() = %v, want TypeFile", got.fileType())
	}
}

func TestFindUnusedInode(t *testing.T) {
	img := newTestImage(t, 64, 8)

	idx, err := img.findUnusedInode()
	if err != nil {
		t.Fatalf("findUnusedInode: %s", err)
	}
	if idx == RootInodeIndex {
		t.Fatalf("findUnusedInode returned root index %d, root is already in use", RootInodeIndex)
	}

	var used Inode
	used.setType(TypeFile, true)
	if err := img.writeInode(idx, &used); err != nil {
		t.Fatalf("writeInode: %s", err)
	}

	next, err := img.findUnusedInode()
	if err != nil {
		t.Fatalf("findUnusedInode: %s", err)
	}
	if next == idx {
		t.Errorf("findUnusedInode returned the same in-use index %d twice", idx)
	}
}
