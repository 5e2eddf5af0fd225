//go:build !windows

package childsig

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runChild(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 0")
	require.NoError(t, cmd.Run())
}

func received(ch <-chan os.Signal) bool {
	select {
	case <-ch:
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

func drain(ch <-chan os.Signal) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestGuardRefCount(t *testing.T) {
	m := &Manager{}

	g1 := m.Acquire()
	g2 := m.Acquire()
	assert.Equal(t, 2, m.Refs())

	g1.Release()
	g1.Release()
	assert.Equal(t, 1, m.Refs())

	g2.Release()
	assert.Equal(t, 0, m.Refs())
}

func TestGuardSuspendsHandler(t *testing.T) {
	m := &Manager{}
	ch := make(chan os.Signal, 16)
	m.Handle(ch)
	defer m.Unhandle()

	runChild(t)
	assert.True(t, received(ch), "handler did not see SIGCHLD")

	g1 := m.Acquire()
	g2 := m.Acquire()
	drain(ch)

	runChild(t)
	assert.False(t, received(ch), "handler saw SIGCHLD while suspended")

	g1.Release()
	runChild(t)
	assert.False(t, received(ch), "handler restored before the last release")

	g2.Release()
	runChild(t)
	assert.True(t, received(ch), "handler not restored after the last release")
}
