package voxelize

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Server owns a named set of worlds and the shared registry they all
// reference. Run ticks each world on its own configured interval in a
// goroutine of its own, so ticks of different worlds can run at the same
// time; inside one world's tick, body integration is also spread across
// goroutines.
type Server struct {
	port     int
	registry *Registry
	logger   Logger

	mu     sync.RWMutex
	worlds map[string]*World
}

// ServerBuilder is the fluent construction surface:
// NewServerBuilder().Port(p).Registry(r).Build().
type ServerBuilder struct {
	port     int
	registry *Registry
	logger   Logger
}

func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{logger: NewDefaultLogger("voxelize", false)}
}

func (b *ServerBuilder) Port(port int) *ServerBuilder {
	b.port = port
	return b
}

func (b *ServerBuilder) Registry(registry *Registry) *ServerBuilder {
	b.registry = registry
	return b
}

func (b *ServerBuilder) Logger(logger Logger) *ServerBuilder {
	b.logger = logger
	return b
}

// Build panics if no registry was given — a server with no block
// definitions can't generate a single chunk.
func (b *ServerBuilder) Build() *Server {
	if b.registry == nil {
		panic("voxelize: Server requires a Registry")
	}
	return &Server{
		port:     b.port,
		registry: b.registry,
		logger:   b.logger,
		worlds:   make(map[string]*World),
	}
}

// AddWorld registers an already-constructed world under its own name.
// Returns an error if a world with that name already exists.
func (s *Server) AddWorld(w *World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.worlds[w.Name]; exists {
		return fmt.Errorf("voxelize: world %q already exists", w.Name)
	}
	s.worlds[w.Name] = w
	return nil
}

// CreateWorld builds a world from config + pipeline under name and
// registers it, warming up chunks within the world's preload radius
// around the origin before returning.
func (s *Server) CreateWorld(name string, config *WorldConfig, pipeline *Pipeline) (*World, error) {
	s.mu.RLock()
	_, exists := s.worlds[name]
	s.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("voxelize: world %q already exists", name)
	}

	w := NewWorld(name, config, s.registry, pipeline)
	s.preload(w)

	if err := s.AddWorld(w); err != nil {
		return nil, err
	}
	return w, nil
}

// preload warms up every chunk within the world's configured preload
// radius of the origin, advancing the pipeline on them until no pair is
// eligible before the world is exposed to ticking — so the first entities
// to spawn don't see half-generated terrain underfoot. Only chunks inside
// the radius are created, so a chunk whose next stage needs in-bounds
// neighbours outside the radius stays before that stage.
func (s *Server) preload(w *World) {
	radius := int32(w.Config.PreloadRadius)
	var candidates []*Chunk
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			c := w.Chunks.GetChunk(ChunkCoordinate{X: dx, Z: dz})
			if c != nil {
				candidates = append(candidates, c)
			}
		}
	}

	budget := len(candidates) * w.Pipeline.Len()
	for budget > 0 {
		n := w.Pipeline.Advance(w.Chunks, w.Registry, w.Config, candidates, len(candidates), s.logger)
		if n == 0 {
			break
		}
		budget -= n
	}
}

// GetWorld returns a registered world by name, or nil if none exists.
func (s *Server) GetWorld(name string) *World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worlds[name]
}

// Run drives every registered world on its own configured tick interval
// until the process receives SIGINT/SIGTERM, at which point it prints a
// shutdown notice and returns; the caller is expected to os.Exit(0)
// immediately after (mirroring the original's Ctrl-C handler).
func (s *Server) Run() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	s.mu.RLock()
	worlds := make([]*World, 0, len(s.worlds))
	for _, w := range s.worlds {
		worlds = append(worlds, w)
	}
	s.mu.RUnlock()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for _, w := range worlds {
		wg.Add(1)
		go func(w *World) {
			defer wg.Done()
			s.runWorldLoop(w, stop)
		}(w)
	}

	<-sigCh
	s.logger.Infof("shutting down, waiting for in-flight ticks to finish")
	close(stop)
	wg.Wait()
}

func (s *Server) runWorldLoop(w *World, stop <-chan struct{}) {
	interval := time.Duration(w.Config.Interval) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := float32(interval) / float32(time.Second)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Tick(dt)
		}
	}
}
