package pid1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsMismatchedBindMounts(t *testing.T) {
	opt := &Options{
		BindMountSources: []string{"/a", "/b"},
		BindMountTargets: []string{"/a"},
		Args:             []string{"/bin/true"},
		WorkingDir:       "/",
	}
	assert.Error(t, opt.Validate())
}

func TestValidateRejectsEmptyArgs(t *testing.T) {
	opt := &Options{WorkingDir: "/"}
	assert.Error(t, opt.Validate())
}

func TestValidateRejectsEmptyWorkingDir(t *testing.T) {
	opt := &Options{Args: []string{"/bin/true"}}
	assert.Error(t, opt.Validate())
}

func TestValidateAcceptsMinimalOptions(t *testing.T) {
	opt := &Options{
		Args:       []string{"/bin/true"},
		WorkingDir: "/",
	}
	assert.NoError(t, opt.Validate())
}

func TestHasRootfsLayout(t *testing.T) {
	assert.True(t, (&Options{BindMountTargets: []string{"/lib", "/usr", "/bin"}}).hasRootfsLayout())
	assert.False(t, (&Options{BindMountTargets: []string{"/lib", "/bin"}}).hasRootfsLayout())
	assert.False(t, (&Options{}).hasRootfsLayout())
}
