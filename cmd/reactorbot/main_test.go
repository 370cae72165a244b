package main

import (
	"context"
	"testing"

	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "worker", "sweep"})
}

func TestSweepCmd_RejectsMalformedRepository(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"sweep", "not-a-repo"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected owner/name")
}

func TestSweepCmd_RequiresRepository(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"sweep"})
	assert.Error(t, root.Execute())
}

func TestContextFields(t *testing.T) {
	assert.Empty(t, contextFields(context.Background()))

	ctx := kernel.WithRequestID(context.Background(), "req-1")
	ctx = kernel.WithDeliveryID(ctx, kernel.DeliveryID("d-1"))
	assert.Equal(t, logx.Fields{"request_id": "req-1", "delivery_id": "d-1"}, contextFields(ctx))
}
