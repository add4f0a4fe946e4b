package main

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iomon-project/iomon-go/pkg/model"
	"github.com/iomon-project/iomon-go/pkg/monitor"
)

var (
	errNodeUnknown = errors.New("unknown node")
	errItemUnknown = errors.New("unknown item")
)

// Space is the demo address space: a flat set of variables by node ID
// plus the item registry. It stands in for the hosting namespace and
// drives the engine's lifecycle callbacks.
type Space struct {
	engine *monitor.Engine

	mu     sync.Mutex
	vars   map[string]*model.Variable
	items  map[monitor.ItemID]*monitor.Item
	nextID monitor.ItemID
}

// NewSpace creates an empty space.
func NewSpace() *Space {
	return &Space{
		vars:  make(map[string]*model.Variable),
		items: make(map[monitor.ItemID]*monitor.Item),
	}
}

// SetEngine attaches the engine the space forwards lifecycle events to.
// Must be called before any item operation.
func (s *Space) SetEngine(e *monitor.Engine) { s.engine = e }

// AddVariable registers a variable node. An existing node with the same
// ID is replaced.
func (s *Space) AddVariable(v *model.Variable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[v.NodeID()] = v
}

// Variable returns a node by ID.
func (s *Space) Variable(nodeID string) (*model.Variable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[nodeID]
	return v, ok
}

// NodeIDs returns all node identifiers, sorted.
func (s *Space) NodeIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.vars))
	for id := range s.vars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve implements monitor.TargetResolver.
func (s *Space) Resolve(nodeID string) (monitor.Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[nodeID]
	if !ok {
		return nil, false
	}
	return v, true
}

// CreateItem commits a new monitored item on nodeID and wires it into
// the engine. The requested parameters pass through the engine's
// pre-commit revision hook first.
func (s *Space) CreateItem(nodeID string, interval time.Duration, queue uint32, enabled bool) (*monitor.Item, error) {
	s.mu.Lock()
	if _, ok := s.vars[nodeID]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", errNodeUnknown, nodeID)
	}

	interval, queue = s.engine.ReviseParameters(nodeID, interval, queue)

	s.nextID++
	item := monitor.NewItem(s.nextID, nodeID, interval, queue)
	if !enabled {
		item.SetSamplingEnabled(false)
	}
	s.items[item.ID()] = item
	s.mu.Unlock()

	s.engine.ItemsCreated([]*monitor.Item{item})
	return item, nil
}

// DeleteItem removes an item and shuts its wrapper down.
func (s *Space) DeleteItem(id monitor.ItemID) error {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", errItemUnknown, id)
	}
	delete(s.items, id)
	s.mu.Unlock()

	s.engine.ItemsDeleted([]monitor.ItemID{id})
	return nil
}

// ModifyItemRate changes an item's requested sampling interval.
func (s *Space) ModifyItemRate(id monitor.ItemID, interval time.Duration) error {
	s.mu.Lock()
	item, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", errItemUnknown, id)
	}

	item.SetInterval(interval)
	s.engine.ItemsModified([]*monitor.Item{item})
	return nil
}

// SetMonitoring toggles an item's enabled flag.
func (s *Space) SetMonitoring(id monitor.ItemID, enabled bool) error {
	s.mu.Lock()
	_, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", errItemUnknown, id)
	}

	s.engine.MonitoringModeChanged([]monitor.ItemID{id}, enabled)
	return nil
}

// Item returns an item by ID.
func (s *Space) Item(id monitor.ItemID) (*monitor.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	return item, ok
}

// Items returns all items sorted by ID.
func (s *Space) Items() []*monitor.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*monitor.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })
	return items
}
