package transfer

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// NativeFS is a billy.Filesystem that resolves paths exactly like the os
// package, including relative paths against the working directory.
type NativeFS struct {
	osfs.ChrootOS
}

// Chroot returns a filesystem rooted at path.
func (n *NativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns "/".
func (n *NativeFS) Root() string {
	return "/"
}
