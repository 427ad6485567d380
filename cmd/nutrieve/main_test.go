package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteList(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"route:list"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "METHOD")
	assert.Regexp(t, `POST\s+/api/orders/create\s+orders.store`, out.String())
	assert.Regexp(t, `DELETE\s+/api/cart/clear\s+cart.clear`, out.String())
	assert.Regexp(t, `GET\s+/health\s+health`, out.String())
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "migrate:rollback", "migrate:status", "seed", "route:list"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}
