package pid1

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// setupMountNamespace fully isolates our mount namespace from outside events
// (spec §4.4), so that mounts made in the host environment after this point
// never propagate in, and nothing we do here propagates out.
func setupMountNamespace() {
	if err := unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		dieErr(err, "mount(nil, /, nil, MS_REC|MS_PRIVATE, nil)")
	}
}

// writeProcFile writes a single string verbatim to a /proc/self file, dying
// on any failure - used for setgroups/uid_map/gid_map, none of which permit
// partial or buffered writes.
func writeProcFile(path, content string) {
	// O_WRONLY, no O_CREAT/O_TRUNC: these are kernel-provided files.
	fd, err := unix.Open(path, unix.O_WRONLY, 0)
	if err != nil {
		dieErr(err, "open(%s)", path)
	}
	defer func() {
		if cerr := unix.Close(fd); cerr != nil {
			dieErr(cerr, "close(%s)", path)
		}
	}()
	if _, err := unix.Write(fd, []byte(content)); err != nil {
		dieErr(err, "write(%s)", path)
	}
}

// setupUserNamespace computes and writes the inner/outer uid and gid
// mappings (spec §4.4). If fake_root was requested the inner identity is
// (0,0); else if fake_username was requested it is the `nobody` passwd
// entry; otherwise the outer identity is preserved unchanged.
func setupUserNamespace(opt *Options) {
	if _, err := os.Stat("/proc/self/setgroups"); err == nil {
		writeProcFile("/proc/self/setgroups", "deny")
	} else if !errors.Is(err, os.ErrNotExist) {
		dieErr(err, "stat(/proc/self/setgroups)")
	}

	var innerUID, innerGID int
	switch {
	case opt.FakeRoot:
		innerUID, innerGID = 0, 0
	case opt.FakeUsername:
		u, err := user.Lookup("nobody")
		if err != nil {
			dieErr(err, "unable to find passwd entry for user nobody")
		}
		innerUID, err = strconv.Atoi(u.Uid)
		if err != nil {
			dieErr(err, "passwd entry for nobody has non-numeric uid %s", u.Uid)
		}
		innerGID, err = strconv.Atoi(u.Gid)
		if err != nil {
			dieErr(err, "passwd entry for nobody has non-numeric gid %s", u.Gid)
		}
	default:
		innerUID, innerGID = opt.GlobalOuterUID, opt.GlobalOuterGID
	}

	writeProcFile("/proc/self/uid_map", fmt.Sprintf("%d %d 1\n", innerUID, opt.GlobalOuterUID))
	writeProcFile("/proc/self/gid_map", fmt.Sprintf("%d %d 1\n", innerGID, opt.GlobalOuterGID))
}

// setupUtsNamespace sets the host and domain name (spec §4.4, only called
// when fake_hostname is requested).
//
// Open question preserved from spec §9: sethostname("localhost", 9) passes a
// length matching the string, not counting the NUL. Some environments expect
// the NUL to be counted; we do not silently "fix" this.
func setupUtsNamespace() {
	if err := unix.Sethostname([]byte("localhost")); err != nil {
		dieErr(err, "sethostname")
	}
	if err := unix.Setdomainname([]byte("localdomain")); err != nil {
		dieErr(err, "setdomainname")
	}
}
