package voxelize

// AirID is the reserved block id for empty space.
const AirID uint32 = 0

// Block is an immutable block definition keyed by a small integer id.
type Block struct {
	ID            uint32
	Name          string
	Faces         []string
	IsLight       bool
	LightLevel    uint32
	IsFluid       bool
	IsTransparent bool
}

// BlockBuilder builds a Block with a fluent API, mirroring the registration
// style used by pipeline stages and server bootstrap code.
type BlockBuilder struct {
	block Block
}

// NewBlock starts a block definition under the given name.
func NewBlock(name string) *BlockBuilder {
	return &BlockBuilder{block: Block{Name: name}}
}

func (b *BlockBuilder) ID(id uint32) *BlockBuilder {
	b.block.ID = id
	return b
}

func (b *BlockBuilder) Faces(faces ...string) *BlockBuilder {
	b.block.Faces = faces
	return b
}

func (b *BlockBuilder) Light(level uint32) *BlockBuilder {
	b.block.IsLight = true
	b.block.LightLevel = level
	return b
}

func (b *BlockBuilder) Fluid() *BlockBuilder {
	b.block.IsFluid = true
	return b
}

func (b *BlockBuilder) Transparent() *BlockBuilder {
	b.block.IsTransparent = true
	return b
}

func (b *BlockBuilder) Build() Block {
	return b.block
}

// Registry is a shared-immutable lookup of block definitions by id and name,
// owned by the server and referenced by every world.
type Registry struct {
	byID   map[uint32]Block
	byName map[string]Block
}

// NewRegistry returns a registry pre-seeded with the reserved "Air" block.
func NewRegistry() *Registry {
	r := &Registry{
		byID:   make(map[uint32]Block),
		byName: make(map[string]Block),
	}
	r.Register(Block{ID: AirID, Name: "Air", IsTransparent: true})
	return r
}

// Register adds (or replaces) a block definition.
func (r *Registry) Register(b Block) {
	r.byID[b.ID] = b
	r.byName[b.Name] = b
}

// GetBlockByID looks up a block by id, returning Air if unknown.
func (r *Registry) GetBlockByID(id uint32) Block {
	if b, ok := r.byID[id]; ok {
		return b
	}
	return r.byID[AirID]
}

// GetBlockByName looks up a block by name; ok is false if not registered.
func (r *Registry) GetBlockByName(name string) (Block, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// IsFluid reports whether the given block id is a fluid block.
func (r *Registry) IsFluid(id uint32) bool {
	return r.GetBlockByID(id).IsFluid
}

// IsAir reports whether the given id is the reserved air id.
func IsAir(id uint32) bool {
	return id == AirID
}

// IsSolid reports whether a block blocks motion: not air and not fluid.
func (r *Registry) IsSolid(id uint32) bool {
	if IsAir(id) {
		return false
	}
	return !r.IsFluid(id)
}
