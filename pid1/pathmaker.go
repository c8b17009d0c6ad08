package pid1

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// entryKind selects what EnsureTarget should materialize at a path.
type entryKind int

const (
	kindDirectory entryKind = iota
	kindRegularFile
)

// dirPerm/filePerm match the original's CreateTarget: parent directories get
// 0755, regular files get 0666 via an exclusive create.
const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o666
)

// IsDirectory stats path and reports whether it is a directory. A missing
// path is a setup error: the caller is expected to already know the path
// should exist (spec §4.2).
func IsDirectory(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		dieErr(err, "stat(%s)", path)
	}
	return st.Mode&unix.S_IFMT == unix.S_IFDIR
}

// EnsureTarget idempotently materializes path as either a directory or an
// empty regular file, recursively creating parent directories as needed
// (spec §4.2, CreateTarget). If the final component already exists with the
// requested kind, it succeeds; with the wrong kind, it dies with EEXIST or
// ENOTDIR exactly as the original does.
func EnsureTarget(path string, kind entryKind) {
	debugf("EnsureTarget(%s, %v)", path, kind)

	var st unix.Stat_t
	err := unix.Stat(path, &st)
	if err == nil {
		isDir := st.Mode&unix.S_IFMT == unix.S_IFDIR
		isReg := st.Mode&unix.S_IFMT == unix.S_IFREG
		switch {
		case kind == kindDirectory && isDir:
			return
		case kind == kindRegularFile && isReg:
			return
		case kind == kindDirectory:
			dieErr(unix.ENOTDIR, "EnsureTarget(%s): exists and is not a directory", path)
		default:
			dieErr(unix.EEXIST, "EnsureTarget(%s): exists and is not a regular file", path)
		}
	} else if !errors.Is(err, unix.ENOENT) {
		dieErr(err, "stat(%s)", path)
	}

	parent := filepath.Dir(path)
	EnsureTarget(parent, kindDirectory)

	if kind == kindDirectory {
		if err := unix.Mkdir(path, uint32(dirPerm)); err != nil {
			dieErr(err, "mkdir(%s, 0755)", path)
		}
		return
	}

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_WRONLY|unix.O_EXCL, uint32(filePerm))
	if err != nil {
		dieErr(err, "open(%s, O_CREAT|O_WRONLY|O_EXCL, 0666)", path)
	}
	if err := unix.Close(fd); err != nil {
		dieErr(err, "close(%s)", path)
	}
}

// EnsureDirectory is EnsureTarget(path, directory).
func EnsureDirectory(path string) { EnsureTarget(path, kindDirectory) }

// EnsureFile is EnsureTarget(path, regular-file).
func EnsureFile(path string) { EnsureTarget(path, kindRegularFile) }

// copyBufSize matches the original's 8 KiB buffer.
const copyBufSize = 8192

// CopyFile streams src into a freshly (exclusively) created dst, retrying
// reads on EINTR (spec §4.2, §7 kind 3). It is used for the /etc/hosts
// special case in FilesystemAssembly, never for bulk data.
func CopyFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		dieErr(err, "open(%s, O_RDONLY)", src)
	}
	defer func() {
		if err := in.Close(); err != nil {
			dieErr(err, "close(%s)", src)
		}
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, filePerm)
	if err != nil {
		dieErr(err, "open(%s, O_CREAT|O_WRONLY|O_EXCL, 0666)", dst)
	}

	buf := make([]byte, copyBufSize)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			w, werr := out.Write(buf[:n])
			if werr != nil {
				dieErr(werr, "write for %s -> %s", src, dst)
			}
			if w != n {
				die("short write for %s -> %s: wrote %d of %d bytes", src, dst, w, n)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if errors.Is(rerr, unix.EINTR) {
				continue
			}
			dieErr(rerr, "read(%s) for %s -> %s", src, src, dst)
		}
	}

	if err := out.Close(); err != nil {
		dieErr(err, "close(%s)", dst)
	}
}
