package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/config"
	"github.com/crillab/panoramyx/transport/factory"
)

func TestNewThreadGroupBuildsLinkedTransports(t *testing.T) {
	group := factory.NewThreadGroup(3)
	require.Len(t, group, 3)
	for i, tr := range group {
		assert.Equal(t, i, tr.ID())
		assert.Equal(t, 3, tr.Size())
	}
}

func TestNewRejectsThreadKindAsSingleton(t *testing.T) {
	_, err := factory.New(config.TransportConfig{Kind: "thread"}, 0)
	assert.ErrorIs(t, err, factory.ErrThreadRequiresGroup)
}

func TestNewBuildsGrpcHubAndSpoke(t *testing.T) {
	cfg := config.TransportConfig{Kind: "grpc", WorkerCount: 2, HubAddr: "127.0.0.1:0"}

	hub, err := factory.New(cfg, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, hub.ID())

	spoke, err := factory.New(cfg, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, spoke.ID())
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := factory.New(config.TransportConfig{Kind: "carrier-pigeon"}, 0)
	assert.Error(t, err)
}
