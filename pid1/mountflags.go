package pid1

import (
	"strings"

	"golang.org/x/sys/unix"
)

// mountOption is one recognized token from the options field of
// /proc/self/mounts, paired with the mount(2) flag it corresponds to.
//
// Modeled on faketree's MountOptions table, narrowed to the closed set of six
// tokens the read-only remount pass (spec §4.5, §9) is required to recognize:
// nodev, noexec, nosuid, noatime, nodiratime, relatime. Tokens must be
// matched whole, never as substrings.
type mountOption struct {
	name string
	flag uintptr
}

var knownRemountOptions = []mountOption{
	{"nodev", unix.MS_NODEV},
	{"noexec", unix.MS_NOEXEC},
	{"nosuid", unix.MS_NOSUID},
	{"noatime", unix.MS_NOATIME},
	{"nodiratime", unix.MS_NODIRATIME},
	{"relatime", unix.MS_RELATIME},
}

// parseMountOptionFlags reconstructs the mount(2) flag bitmask from the
// comma-separated options field of a /proc/self/mounts entry, recognizing
// only the closed token set above and ignoring everything else (filesystem
// type annotations, "rw"/"ro", superblock-specific options, ...).
func parseMountOptionFlags(options string) uintptr {
	var flags uintptr
	fields := strings.Split(options, ",")
	for _, field := range fields {
		field = strings.TrimSpace(field)
		for _, opt := range knownRemountOptions {
			if field == opt.name {
				flags |= opt.flag
			}
		}
	}
	return flags
}
