package node

import (
	"ixichain/cfg"
	"ixichain/util/log"

	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeStartStop(t *testing.T) {
	config := cfg.ResetTestRoot("node_test")

	n, err := NewNode(config, log.NewNopLogger())
	require.NoError(t, err, "expected no err on NewNode")

	require.NoError(t, n.Start())
	assert.True(t, n.IsRunning())

	assert.NotNil(t, n.BlockStore())
	assert.NotEmpty(t, n.Identity().Address)

	done := make(chan struct{})
	go func() {
		n.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}

	assert.False(t, n.IsRunning())
}
