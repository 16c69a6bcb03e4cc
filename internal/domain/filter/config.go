package filter

import (
	"sort"
	"strings"
	"sync"

	"shopper/internal/core/apperror"
)

// RelationKind distinguishes how a relation joins back to its parent.
type RelationKind string

const (
	// BelongsTo: parent row holds the foreign key (products.brand_id -> brands.id).
	BelongsTo RelationKind = "belongs_to"
	// HasMany: related rows hold the foreign key (order_items.order_id -> orders.id).
	HasMany RelationKind = "has_many"
)

// Relation describes a named relation of an entity, used both for
// existence filters (relation.field[op]=v) and eager loading (include=).
type Relation struct {
	Name   string
	Entity string
	Table  string
	// ForeignKey is the column on the relation's table side of the join
	// for HasMany, or the column on the parent for BelongsTo.
	ForeignKey string
	// LocalKey is the matching column on the other side (parent PK for
	// HasMany, related PK for BelongsTo).
	LocalKey string
	Kind     RelationKind
}

// ColumnType hints how a column's filter values should be bound. The
// zero value is text, so only numeric, boolean and time columns need
// declaring.
type ColumnType string

const (
	ColumnText   ColumnType = ""
	ColumnNumber ColumnType = "number"
	ColumnBool   ColumnType = "bool"
	ColumnTime   ColumnType = "time"
)

// Action is a bulk state mutation supported by an entity.
type Action string

const (
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
	ActionDelete  Action = "delete"
)

// EntityConfig declares everything the engine needs to know about one
// listable entity: its table, which columns may be filtered, sorted and
// searched, its relations, and which bulk actions it supports.
type EntityConfig struct {
	Entity   string
	Table    string
	IDColumn string

	// Columns is the full selectable column set.
	Columns []string
	// Filterable / Sortable / Searchable are allow-lists. Fields outside
	// them are silently dropped from requests, never rejected.
	Filterable []string
	Sortable   []string
	Searchable []string

	// Types maps columns to their bind-type hint. Columns absent from
	// the map are treated as text, which keeps string comparisons exact
	// even when a value looks numeric.
	Types map[string]ColumnType

	Relations      []Relation
	DefaultInclude []string

	DefaultPerPage int
	MaxPerPage     int

	// StateColumn and its enable/disable values drive bulk state
	// mutations. Empty StateColumn means the entity has no toggle.
	StateColumn  string
	EnableValue  any
	DisableValue any

	Actions []Action

	filterable map[string]struct{}
	sortable   map[string]struct{}
	relations  map[string]Relation
}

func (c *EntityConfig) normalize() {
	if c.DefaultPerPage <= 0 {
		c.DefaultPerPage = 15
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = 100
	}
	if c.IDColumn == "" {
		c.IDColumn = "id"
	}
	c.filterable = make(map[string]struct{}, len(c.Filterable))
	for _, f := range c.Filterable {
		c.filterable[f] = struct{}{}
	}
	c.sortable = make(map[string]struct{}, len(c.Sortable))
	for _, f := range c.Sortable {
		c.sortable[f] = struct{}{}
	}
	c.relations = make(map[string]Relation, len(c.Relations))
	for _, r := range c.Relations {
		c.relations[r.Name] = r
	}
}

// CanFilter reports whether the bare column is in the filterable set.
func (c *EntityConfig) CanFilter(field string) bool {
	_, ok := c.filterable[field]
	return ok
}

// CanSort reports whether the bare column is in the sortable set.
func (c *EntityConfig) CanSort(field string) bool {
	_, ok := c.sortable[field]
	return ok
}

// ColumnType returns the declared bind-type hint for a column,
// defaulting to text.
func (c *EntityConfig) ColumnType(col string) ColumnType {
	return c.Types[col]
}

// RelationByName returns the relation declaration, if any.
func (c *EntityConfig) RelationByName(name string) (Relation, bool) {
	r, ok := c.relations[name]
	return r, ok
}

// SupportsAction reports whether a bulk action is allowed for the entity.
func (c *EntityConfig) SupportsAction(a Action) bool {
	for _, act := range c.Actions {
		if act == a {
			return true
		}
	}
	return false
}

// Registry holds entity configs keyed by entity name. Reads vastly
// outnumber writes (registration happens at boot), so a plain RWMutex
// over a map is enough.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*EntityConfig
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*EntityConfig)}
}

// Register adds or replaces an entity config. The config is normalized
// in place (defaults applied, lookup maps built).
func (r *Registry) Register(cfg *EntityConfig) {
	cfg.Entity = strings.ToLower(strings.TrimSpace(cfg.Entity))
	cfg.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[cfg.Entity] = cfg
}

// Get returns the config for an entity name, or an UnknownEntity error.
func (r *Registry) Get(entity string) (*EntityConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.entities[strings.ToLower(entity)]
	if !ok {
		return nil, apperror.NewUnknownEntity(entity)
	}
	return cfg, nil
}

// Entities returns the sorted list of registered entity names.
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
