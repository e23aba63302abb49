package miniufs

import "testing"

func TestClassifyBlock(t *testing.T) {
	const p = 1024

	cases := []struct {
		k    uint64
		want blockRegion
	}{
		{0, blockRegion{direct: true, slot: 0}},
		{14, blockRegion{direct: true, slot: 14}},
		{15, blockRegion{single: true, slot: 0}},
		{15 + 1023, blockRegion{single: true, slot: 1023}},
		{15 + 1024, blockRegion{double: true, top: 0, leaf: 0}},
		{15 + 1024 + 1023, blockRegion{double: true, top: 0, leaf: 1023}},
		{15 + 1024 + 1024, blockRegion{double: true, top: 1, leaf: 0}},
	}

	for _, c := range cases {
		got := classifyBlock(c.k, p)
		if got != c.want {
			t.Errorf("classifyBlock(%d) = %+v, want %+v", c.k, got, c.want)
		}
	}
}

func TestResolveBlockAcrossTiers(t *testing.T) {
	// A tiny block size (4 pointers per indirect table) keeps the address
	// space small: 15 direct + 4 single-indirect + 4*4 double-indirect = 35
	// logical blocks. resizeFile counts table blocks against that same
	// limit, so the largest file it accepts has 30 data blocks (30 + 1
	// single-indirect table + 1 top-level table + 3 leaf tables = 35): 15
	// direct, 4 single-indirect and 11 double-indirect over three leaves.
	img := newTestImage(t, 16, 64)
	const dataBlocks = 30
	idx, err := img.CreateFile("/f", TypeFile)
	if err != nil {
		t.Fatalf("CreateFile: %s", err)
	}

	size := dataBlocks * uint64(img.sb.BlockSize)
	if err := img.resizeFile(idx, size); err != nil {
		t.Fatalf("resizeFile: %s", err)
	}

	ino, err := img.readInode(idx)
	if err != nil {
		t.Fatalf("readInode: %s", err)
	}

	seen := map[uint32]bool{}
	for k := uint64(0); k < dataBlocks; k++ {
		blk, err := img.resolveBlock(&ino, k)
		if err != nil {
			t.Fatalf("resolveBlock(%d): %s", k, err)
		}
		if seen[blk] {
			t.Fatalf("resolveBlock(%d) returned block %d, already seen", k, blk)
		}
		seen[blk] = true
	}
}
