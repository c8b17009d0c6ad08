package pid1

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// pipelineState is the process-wide, pipeline-owned state spec §3 calls
// "core state": sandbox_root_dir, rootfs, and (later) global_child_pid. It is
// constructed once by setupFilesystem and threaded explicitly through the
// remaining components instead of living in package-level globals.
type pipelineState struct {
	opt *Options

	// sandboxRootDir is the absolute path of the sandbox root, computed only
	// when rootfs is true; empty otherwise. Invariant: rootfs == (sandboxRootDir != "").
	sandboxRootDir string
	rootfs         bool

	// childPID is set by the supervisor once the child has been spawned and
	// is read by the signal-forwarding handler. It must only be written
	// after the handler installs, per spec §5's ordering guarantee.
	childPID atomicPID
}

// computeSandboxRootDir derives sandbox_root_dir from working_dir (spec
// §4.5): working_dir is of the form .../<session>/execroot/<workspace>, and
// the sandbox root sits at .../<session>/root, i.e. two path components
// above working_dir with "root" appended.
func computeSandboxRootDir(workingDir string) string {
	grandparent := filepath.Dir(filepath.Dir(workingDir))
	return filepath.Join(grandparent, "root")
}

// relative strips the leading "/" from an absolute path, for use against the
// current directory after FilesystemAssembly has chdir'd into the sandbox
// root - mirroring the original's `path.c_str() + 1` idiom.
func relative(absPath string) string {
	return strings.TrimPrefix(absPath, "/")
}

// setupFilesystem implements FilesystemAssembly (spec §4.5): it detects the
// rootfs layout, lays down tmpfs mounts (including the /dev/shm self-overlap
// case), ensures working_dir is a mount point, performs the bind mounts and
// writable carve-outs, and returns the pipeline state needed by later steps.
func setupFilesystem(opt *Options) *pipelineState {
	st := &pipelineState{opt: opt}
	st.rootfs = opt.hasRootfsLayout()

	if st.rootfs {
		st.sandboxRootDir = computeSandboxRootDir(opt.WorkingDir)
		debugf("sandbox root dir: %s", st.sandboxRootDir)

		EnsureDirectory(st.sandboxRootDir)
		// Bind-mount the sandbox root onto itself to make it a mount point,
		// which pivot_root later requires of both the old and new root.
		if err := unix.Mount(st.sandboxRootDir, st.sandboxRootDir, "", unix.MS_BIND|unix.MS_NOSUID, ""); err != nil {
			dieErr(err, "mount(%s, %s, nil, MS_BIND|MS_NOSUID, nil)", st.sandboxRootDir, st.sandboxRootDir)
		}
	}

	if err := os.Chdir(st.sandboxRootDir + "/"); err != nil {
		dieErr(err, "chdir(%s)", st.sandboxRootDir+"/")
	}

	for _, tmpfsDir := range opt.TmpfsDirs {
		st.mountTmpfsDir(tmpfsDir)
	}

	// Make sure working_dir is itself a mount point.
	debugf("working dir: %s", opt.WorkingDir)
	rel := relative(opt.WorkingDir)
	EnsureDirectory(rel)
	if err := unix.Mount(opt.WorkingDir, rel, "", unix.MS_BIND, ""); err != nil {
		dieErr(err, "mount(%s, %s, nil, MS_BIND, nil)", opt.WorkingDir, rel)
	}

	for i := range opt.BindMountSources {
		st.bindMount(opt.BindMountSources[i], opt.BindMountTargets[i])
	}

	for _, writable := range opt.WritableFiles {
		debugf("writable: %s", writable)
		rel := relative(writable)
		EnsureTarget(rel, kindOf(writable))
		if err := unix.Mount(writable, rel, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
			dieErr(err, "mount(%s, %s, nil, MS_BIND|MS_REC, nil)", writable, rel)
		}
	}

	return st
}

// tmpfsOverlapsSandboxRoot reports whether sandboxRootDir lives inside
// tmpfsDir, i.e. tmpfsDir is about to be replaced with an empty tmpfs out
// from under the sandbox root itself (e.g. tmpfsDir=/dev/shm,
// sandboxRootDir=/dev/shm/bazel-sandbox/1234/root).
func tmpfsOverlapsSandboxRoot(sandboxRootDir, tmpfsDir string) bool {
	return sandboxRootDir != "" && strings.HasPrefix(sandboxRootDir, tmpfsDir)
}

// mountTmpfsDir handles a single entry of tmpfs_dirs, including the special
// case where sandbox_root_dir lives inside the directory that is about to be
// replaced with tmpfs (e.g. /dev/shm) - spec §4.5 and the Open Question in
// §9 about the dual /dev/shm mounts that must both exist immediately before
// pivot.
func (st *pipelineState) mountTmpfsDir(tmpfsDir string) {
	if tmpfsOverlapsSandboxRoot(st.sandboxRootDir, tmpfsDir) {
		debugf("tmpfs overlaps with working dir: %s", tmpfsDir)

		// Preserve the current sandbox root by bind-mounting the host
		// tmpfs_dir onto its relative path inside the current directory
		// before the fresh tmpfs shadows the host path.
		rel := relative(tmpfsDir)
		EnsureDirectory(rel)
		if err := unix.Mount(tmpfsDir, rel, "", unix.MS_BIND, ""); err != nil {
			dieErr(err, "mount(%s, %s, nil, MS_BIND, nil)", tmpfsDir, rel)
		}

		debugf("tmpfs: %s", tmpfsDir)
		EnsureDirectory(tmpfsDir)
		if err := unix.Mount("tmpfs", tmpfsDir, "tmpfs", unix.MS_NOSUID|unix.MS_NODEV|unix.MS_NOATIME, ""); err != nil {
			dieErr(err, "mount(tmpfs, %s, tmpfs, MS_NOSUID|MS_NODEV|MS_NOATIME, nil)", tmpfsDir)
		}

		EnsureDirectory(st.opt.WorkingDir)
		relWorkingDir := relative(st.opt.WorkingDir)
		if err := unix.Mount(relWorkingDir, st.opt.WorkingDir, "", unix.MS_BIND, ""); err != nil {
			dieErr(err, "mount(%s, %s, nil, MS_BIND, nil)", relWorkingDir, st.opt.WorkingDir)
		}
		return
	}

	debugf("tmpfs: %s", tmpfsDir)
	EnsureDirectory(tmpfsDir)
	if err := unix.Mount("tmpfs", tmpfsDir, "tmpfs", unix.MS_NOSUID|unix.MS_NODEV|unix.MS_NOATIME, ""); err != nil {
		dieErr(err, "mount(tmpfs, %s, tmpfs, MS_NOSUID|MS_NODEV|MS_NOATIME, nil)", tmpfsDir)
	}
}

// bindMount implements one (source, target) pair from bind_mount_sources/
// bind_mount_targets, including the /etc/hosts copy-not-mount special case
// (spec §4.5, scenario 4 of §8).
func (st *pipelineState) bindMount(source, target string) {
	if target == "/etc/hosts" {
		debugf("copy: %s -> %s", source, relative(target))
		CopyFile(source, relative(target))
		return
	}

	rel := relative(target)
	EnsureTarget(rel, kindOf(source))
	debugf("bind mount: %s -> %s", source, target)
	// Recursive: source may itself contain further mounts (e.g. another
	// tool bind-mounting things into its own workspace beneath source).
	if err := unix.Mount(source, rel, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		dieErr(err, "mount(%s, %s, nil, MS_BIND|MS_REC, nil)", source, target)
	}
}

// kindOf reports the EnsureTarget kind matching the filesystem type of an
// existing path.
func kindOf(path string) entryKind {
	if IsDirectory(path) {
		return kindDirectory
	}
	return kindRegularFile
}
