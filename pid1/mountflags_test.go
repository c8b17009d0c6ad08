package pid1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestParseMountOptionFlagsRecognizesEachToken(t *testing.T) {
	assert.Equal(t, uintptr(unix.MS_NODEV), parseMountOptionFlags("nodev"))
	assert.Equal(t, uintptr(unix.MS_NOEXEC), parseMountOptionFlags("noexec"))
	assert.Equal(t, uintptr(unix.MS_NOSUID), parseMountOptionFlags("nosuid"))
	assert.Equal(t, uintptr(unix.MS_NOATIME), parseMountOptionFlags("noatime"))
	assert.Equal(t, uintptr(unix.MS_NODIRATIME), parseMountOptionFlags("nodiratime"))
	assert.Equal(t, uintptr(unix.MS_RELATIME), parseMountOptionFlags("relatime"))
}

func TestParseMountOptionFlagsCombines(t *testing.T) {
	got := parseMountOptionFlags("rw,nosuid,nodev,noexec,relatime")
	want := uintptr(unix.MS_NOSUID | unix.MS_NODEV | unix.MS_NOEXEC | unix.MS_RELATIME)
	assert.Equal(t, want, got)
}

func TestParseMountOptionFlagsIgnoresUnknownAndSubstrings(t *testing.T) {
	assert.Equal(t, uintptr(0), parseMountOptionFlags("rw,seclabel,acl"))
	// "noexecstack" must not be mistaken for "noexec": whole-token match only.
	assert.Equal(t, uintptr(0), parseMountOptionFlags("noexecstack"))
}

func TestParseMountOptionFlagsEmpty(t *testing.T) {
	assert.Equal(t, uintptr(0), parseMountOptionFlags(""))
}
