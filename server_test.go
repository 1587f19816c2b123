package voxelize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerBuilder_Build_RequiresRegistry(t *testing.T) {
	require.PanicsWithValue(t, "voxelize: Server requires a Registry", func() {
		NewServerBuilder().Port(4000).Build()
	})
}

func TestServerBuilder_Build(t *testing.T) {
	registry := NewRegistry()
	server := NewServerBuilder().Port(4000).Registry(registry).Build()
	assert.Equal(t, 4000, server.port)
	assert.Same(t, registry, server.registry)
	assert.Empty(t, server.worlds)
}

func TestServer_AddWorld_DuplicateName(t *testing.T) {
	registry := NewRegistry()
	server := NewServerBuilder().Registry(registry).Build()

	config := NewWorldConfig().Build()
	w1 := NewWorld("world1", config, registry, NewPipeline())
	require.NoError(t, server.AddWorld(w1))

	w2 := NewWorld("world1", config, registry, NewPipeline())
	err := server.AddWorld(w2)
	require.Error(t, err)
	assert.Same(t, w1, server.GetWorld("world1"), "the first registration should win")
}

func TestServer_CreateWorld(t *testing.T) {
	registry := NewRegistry()
	server := NewServerBuilder().Registry(registry).Build()

	config := NewWorldConfig().MinChunk([2]int32{-1, -1}).MaxChunk([2]int32{1, 1}).PreloadRadius(1).Build()
	w, err := server.CreateWorld("world1", config, NewPipeline())
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Same(t, w, server.GetWorld("world1"))

	_, err = server.CreateWorld("world1", config, NewPipeline())
	assert.Error(t, err, "duplicate world name should fail")
}

func TestServer_GetWorld_Unknown(t *testing.T) {
	registry := NewRegistry()
	server := NewServerBuilder().Registry(registry).Build()
	assert.Nil(t, server.GetWorld("nope"))
}
