package miniufs

import "testing"

func TestAppendLookupDirEntry(t *testing.T) {
	img := newTestImage(t, DefaultBlockSize, 8)
	dirIdx, err := img.createAt("d", "/", TypeDir)
	if err != nil {
		t.Fatalf("createAt: %s", err)
	}

	if err := img.appendDirEntry(dirIdx, 42, "child"); err != nil {
		t.Fatalf("appendDirEntry: %s", err)
	}

	got, err := img.lookupDirEntry(dirIdx, "child")
	if err != nil {
		t.Fatalf("lookupDirEntry: %s", err)
	}
	if got != 42 {
		t.Errorf("lookupDirEntry = %d, want 42", got)
	}

	if _, err := img.lookupDirEntry(dirIdx, "missing"); err != ErrNotFound {
		t.Fatalf("lookupDirEntry(missing): err = %v, want ErrNotFound", err)
	}
}

func TestIsNameUnique(t *testing.T) {
	img := newTestImage(t, DefaultBlockSize, 8)
	dirIdx, err := img.createAt("d", "/", TypeDir)
	if err != nil {
		t.Fatalf("createAt: %s", err)
	}

	unique, err := img.isNameUnique(dirIdx, "x")
	if err != nil {
		t.Fatalf("isNameUnique: %s", err)
	}
	if !unique {
		t.Error("isNameUnique(x) = false on empty-of-x dir, want true")
	}

	if err := img.appendDirEntry(dirIdx, 7, "x"); err != nil {
		t.Fatalf("appendDirEntry: %s", err)
	}

	unique, err = img.isNameUnique(dirIdx, "x")
	if err != nil {
		t.Fatalf("isNameUnique: %s", err)
	}
	if unique {
		t.Error("isNameUnique(x) = true after inserting x, want false")
	}
}

func TestRemoveDirEntryShiftsTail(t *testing.T) {
	img := newTestImage(t, DefaultBlockSize, 8)
	dirIdx, err := img.createAt("d", "/", TypeDir)
	if err != nil {
		t.Fatalf("createAt: %s", err)
	}

	if err := img.appendDirEntry(dirIdx, 1, "first"); err != nil {
		t.Fatalf("appendDirEntry(first): %s", err)
	}
	if err := img.appendDirEntry(dirIdx, 2, "second"); err != nil {
		t.Fatalf("appendDirEntry(second): %s", err)
	}
	if err := img.appendDirEntry(dirIdx, 3, "third"); err != nil {
		t.Fatalf("appendDirEntry(third): %s", err)
	}

	if err := img.removeDirEntry(dirIdx, 2); err != nil {
		t.Fatalf("removeDirEntry: %s", err)
	}

	entries, err := img.readDir(dirIdx)
	if err != nil {
		t.Fatalf("readDir: %s", err)
	}
	// ".", "..", then the two surviving appended records.
	if len(entries) != 4 {
		t.Fatalf("readDir after remove returned %d entries, want 4", len(entries))
	}
	if entries[2].Name != "first" || entries[2].Ino != 1 {
		t.Errorf("entries[2] = %+v, want first/1", entries[2])
	}
	if entries[3].Name != "third" || entries[3].Ino != 3 {
		t.Errorf("entries[3] = %+v, want third/3", entries[3])
	}

	// The removed name is available for reuse.
	unique, err := img.isNameUnique(dirIdx, "second")
	if err != nil {
		t.Fatalf("isNameUnique: %s", err)
	}
	if !unique {
		t.Error("isNameUnique(second) after removal = false, want true")
	}
}

func TestRemoveDirEntryNoMatchIsNoop(t *testing.T) {
	img := newTestImage(t, DefaultBlockSize, 8)
	dirIdx, err := img.createAt("d", "/", TypeDir)
	if err != nil {
		t.Fatalf("createAt: %s", err)
	}
	if err := img.appendDirEntry(dirIdx, 1, "only"); err != nil {
		t.Fatalf("appendDirEntry: %s", err)
	}

	if err := img.removeDirEntry(dirIdx, 999); err != nil {
		t.Fatalf("removeDirEntry(no match): %s", err)
	}

	entries, err := img.readDir(dirIdx)
	if err != nil {
		t.Fatalf("readDir: %s", err)
	}
	if len(entries) != 3 || entries[2].Name != "only" {
		t.Errorf("readDir after no-op remove = %+v, want [. .. only]", entries)
	}
}

func TestReadDirReflectsChildMetadata(t *testing.T) {
	img := newTestImage(t, DefaultBlockSize, 8)

	if err := img.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}
	if _, err := img.CreateFile("/note", TypeFile); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	if err := img.writeFile(mustResolveFile(t, img, "/note"), 0, []byte("hi")); err != nil {
		t.Fatalf("writeFile: %s", err)
	}

	entries, err := img.readDir(RootInodeIndex)
	if err != nil {
		t.Fatalf("readDir(root): %s", err)
	}

	var sawDir, sawFile bool
	for _, e := range entries {
		switch e.Name {
		case "sub":
			sawDir = true
			if e.Type != TypeDir {
				t.Errorf("sub entry type = %v, want TypeDir", e.Type)
			}
		case "note":
			sawFile = true
			if e.Type != TypeFile {
				t.Errorf("note entry type = %v, want TypeFile", e.Type)
			}
			if e.Size != 2 {
				t.Errorf("note entry size = %d, want 2", e.Size)
			}
		}
	}
	if !sawDir || !sawFile {
		t.Fatalf("readDir(root) = %+v, missing sub and/or note", entries)
	}
}

func mustResolveFile(t *testing.T, img *Image, path string) int {
	t.Helper()
	idx, err := img.resolvePath(path)
	if err != nil {
		t.Fatalf("resolvePath(%s): %s", path, err)
	}
	return idx
}
