package main

import (
	"fmt"
	"strings"

	"github.com/linuxsandbox/pid1/pid1"
	"github.com/spf13/pflag"
)

// driverFlags is the out-of-core-scope CLI surface spec.md §1 describes as
// "the outer driver" - option parsing, usage text, and CLI assembly. It
// exists only so this repository is runnable end to end; none of the
// interesting pipeline logic lives here.
type driverFlags struct {
	workingDir   string
	bindMounts   []string
	tmpfsDirs    []string
	writable     []string
	fakeRoot     bool
	fakeUser     bool
	fakeHostname bool
	createNetNS  bool
}

// parseBindMount splits a bind-mount spec of the form "source:target", the
// same colon-delimited shape faketree.go's --mount flag uses.
func parseBindMount(spec string) (source, target string, err error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid bind mount %q: expected source:target", spec)
	}
	return parts[0], parts[1], nil
}

func (f *driverFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.workingDir, "working-dir", "", "absolute path inside the sandbox to chdir into before running the command")
	fs.StringArrayVar(&f.bindMounts, "bind-mount", nil, "source:target pair to bind-mount into the sandbox; may be repeated")
	fs.StringArrayVar(&f.tmpfsDirs, "tmpfs", nil, "absolute in-sandbox path to cover with a fresh tmpfs; may be repeated")
	fs.StringArrayVar(&f.writable, "writable", nil, "absolute in-sandbox path that stays writable after the read-only remount pass; may be repeated")
	fs.BoolVar(&f.fakeRoot, "fake-root", false, "make the sandbox believe it is running as root")
	fs.BoolVar(&f.fakeUser, "fake-username", false, "make the sandbox believe it is running as nobody")
	fs.BoolVar(&f.fakeHostname, "fake-hostname", false, "set hostname/domainname to localhost/localdomain inside the sandbox")
	fs.BoolVar(&f.createNetNS, "create-netns", false, "bring up loopback in a fresh network namespace")
}

// toOptions builds a pid1.Options from parsed flags and the remaining
// (non-flag) arguments, which become the child's argv.
func (f *driverFlags) toOptions(outerUID, outerGID int, args []string) (*pid1.Options, error) {
	opt := &pid1.Options{
		WorkingDir:     f.workingDir,
		TmpfsDirs:      f.tmpfsDirs,
		WritableFiles:  f.writable,
		FakeRoot:       f.fakeRoot,
		FakeUsername:   f.fakeUser,
		FakeHostname:   f.fakeHostname,
		CreateNetNS:    f.createNetNS,
		Args:           args,
		GlobalOuterUID: outerUID,
		GlobalOuterGID: outerGID,
	}

	for _, spec := range f.bindMounts {
		source, target, err := parseBindMount(spec)
		if err != nil {
			return nil, err
		}
		opt.BindMountSources = append(opt.BindMountSources, source)
		opt.BindMountTargets = append(opt.BindMountTargets, target)
	}

	return opt, opt.Validate()
}
