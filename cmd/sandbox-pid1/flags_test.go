package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/linuxsandbox/pid1/pid1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBindMount(t *testing.T) {
	source, target, err := parseBindMount("/var/log:/tmp/log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log", source)
	assert.Equal(t, "/tmp/log", target)
}

func TestParseBindMountRejectsMissingColon(t *testing.T) {
	_, _, err := parseBindMount("/var/log")
	assert.Error(t, err)
}

func TestParseBindMountAllowsColonInTarget(t *testing.T) {
	// SplitN(2) keeps everything after the first colon together.
	source, target, err := parseBindMount("/var/log:/tmp/a:b")
	require.NoError(t, err)
	assert.Equal(t, "/var/log", source)
	assert.Equal(t, "/tmp/a:b", target)
}

func TestDriverFlagsToOptions(t *testing.T) {
	f := &driverFlags{
		workingDir: "/sandbox/work",
		bindMounts: []string{"/usr:/usr", "/lib:/lib"},
		tmpfsDirs:  []string{"/tmp"},
		fakeRoot:   true,
	}

	opt, err := f.toOptions(1000, 1000, []string{"/bin/sh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr", "/lib"}, opt.BindMountSources)
	assert.Equal(t, []string{"/usr", "/lib"}, opt.BindMountTargets)
	assert.True(t, opt.FakeRoot)
	assert.Equal(t, 1000, opt.GlobalOuterUID)
}

func TestDriverFlagsToOptionsStructure(t *testing.T) {
	f := &driverFlags{
		workingDir:   "/sandbox/work",
		bindMounts:   []string{"/etc/resolv.conf:/etc/resolv.conf"},
		writable:     []string{"/tmp/scratch"},
		fakeHostname: true,
		createNetNS:  true,
	}

	got, err := f.toOptions(2000, 2000, []string{"/bin/sh", "-c", "true"})
	require.NoError(t, err)

	want := &pid1.Options{
		WorkingDir:       "/sandbox/work",
		BindMountSources: []string{"/etc/resolv.conf"},
		BindMountTargets: []string{"/etc/resolv.conf"},
		WritableFiles:    []string{"/tmp/scratch"},
		FakeHostname:     true,
		CreateNetNS:      true,
		Args:             []string{"/bin/sh", "-c", "true"},
		GlobalOuterUID:   2000,
		GlobalOuterGID:   2000,
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("toOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestDriverFlagsToOptionsRejectsBadBindMount(t *testing.T) {
	f := &driverFlags{
		workingDir: "/sandbox/work",
		bindMounts: []string{"no-colon-here"},
	}
	_, err := f.toOptions(0, 0, []string{"/bin/sh"})
	assert.Error(t, err)
}
