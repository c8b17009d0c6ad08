package pid1

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// mountEntry is one parsed line of /proc/self/mounts, in mntent(3) order:
// device, mount point, fstype, options, dump freq, pass number. Only
// mountPoint and options matter to the read-only remount pass.
type mountEntry struct {
	device     string
	mountPoint string
	fsType     string
	options    string
}

// readMountTable parses /proc/self/mounts. Fields can contain octal escapes
// (\040 for space, etc.) exactly as fstab/mtab entries do; mountinfo-style
// unescaping is applied to device and mountPoint.
func readMountTable() []mountEntry {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		dieErr(err, "setmntent(/proc/self/mounts)")
	}
	defer f.Close()

	var entries []mountEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		entries = append(entries, mountEntry{
			device:     unescapeMountField(fields[0]),
			mountPoint: unescapeMountField(fields[1]),
			fsType:     fields[2],
			options:    fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		dieErr(err, "reading /proc/self/mounts")
	}
	return entries
}

func unescapeMountField(s string) string {
	replacer := strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)
	return replacer.Replace(s)
}

// shouldBeWritable implements ShouldBeWritable (spec §4.5): true iff
// mountPoint is exactly working_dir, or it sits under sandbox_root_dir and
// its tail (relative to sandbox_root_dir) is the sandbox root itself, a
// writable_file, or a tmpfs_dir.
func shouldBeWritable(st *pipelineState, mountPoint string) bool {
	if mountPoint == st.opt.WorkingDir {
		return true
	}
	if !strings.HasPrefix(mountPoint, st.sandboxRootDir) {
		return false
	}
	tail := strings.TrimPrefix(mountPoint, st.sandboxRootDir)
	if tail == "" {
		return true
	}
	for _, w := range st.opt.WritableFiles {
		if tail == w {
			return true
		}
	}
	for _, t := range st.opt.TmpfsDirs {
		if tail == t {
			return true
		}
	}
	return false
}

// whitelistedRemountErrors are the errno values a failed remount should
// silently skip (spec §7 kind 2): inaccessible mounts, mounts shadowed by a
// later one, and broken NFS mounts.
var whitelistedRemountErrors = []error{
	unix.EACCES, unix.EPERM, unix.EINVAL, unix.ENOENT, unix.ESTALE,
}

func isWhitelistedRemountError(err error) bool {
	for _, e := range whitelistedRemountErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// makeFilesystemMostlyReadOnly implements MakeFilesystemMostlyReadOnly (spec
// §4.5): every mount under sandbox_root_dir is remounted read-only unless
// shouldBeWritable says otherwise, preserving whichever of the six
// recognized flags it already had.
func makeFilesystemMostlyReadOnly(st *pipelineState) {
	for _, ent := range readMountTable() {
		if !strings.HasPrefix(ent.mountPoint, st.sandboxRootDir) {
			continue
		}

		flags := uintptr(unix.MS_BIND | unix.MS_REMOUNT)
		flags |= parseMountOptionFlags(ent.options)
		if !shouldBeWritable(st, ent.mountPoint) {
			flags |= unix.MS_RDONLY
		}

		debugf("remount %s: %s", readOnlyLabel(flags), ent.mountPoint)
		if err := unix.Mount("", ent.mountPoint, "", flags, ""); err != nil {
			if isWhitelistedRemountError(err) {
				continue
			}
			dieErr(err, "remount(nil, %s, nil, %d, nil)", ent.mountPoint, flags)
		}
	}
}

func readOnlyLabel(flags uintptr) string {
	if flags&unix.MS_RDONLY != 0 {
		return "ro"
	}
	return "rw"
}
