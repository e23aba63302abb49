package miniufs

import "strings"

// resolvePath walks path, slash-delimited, from the root inode, looking up
// each segment in the current directory. It returns inode 0 for the
// literal "/" and fails with ErrNotFound at the first missing segment.
// Paths are expected to start with "/"; callers (fs.go) prepend one
// if the caller-supplied path lacks it. resolvePath does not itself verify
// that intermediate inodes are directories: lookupDirEntry finds no name
// inside a non-directory inode, and that surfaces as ErrNotFound the same
// as a missing segment would.
func (img *Image) resolvePath(path string) (int, error) {
	if path == "/" {
		return RootInodeIndex, nil
	}

	segs := strings.Split(path, "/")
	if len(segs) > 0 && segs[0] == "" {
		segs = segs[1:]
	}

	cur := RootInodeIndex
	for _, seg := range segs {
		if seg == "" {
			continue
		}
		childID, err := img.lookupDirEntry(cur, seg)
		if err != nil {
			return 0, err
		}
		cur = int(childID)
	}
	return cur, nil
}

// splitParentAndName splits a path into its parent directory path and its
// final path component, e.g. "/a/b/c" -> ("/a/b/", "c").
func splitParentAndName(path string) (parent, name string) {
	path = strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(path, "/")
	return path[:idx+1], path[idx+1:]
}

// ensureLeadingSlash prepends "/" to path if it doesn't already start with one.
func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
