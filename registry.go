package sieve

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps field names to their descriptors. It is seeded with the
// built-in torrent fields and may be extended with custom fields and
// configuration-supplied aliases before first use.
//
// The registry has two phases. During registration, RegisterField and
// RegisterAlias add entries. The first Compile on an engine seals the
// registry; after Seal, registration fails and the registry is read-only,
// which makes unsynchronized concurrent lookups safe.
type Registry struct {
	mu     sync.RWMutex
	fields map[string]*Field
	sealed bool
}

// NewRegistry returns a registry seeded with the built-in field table.
func NewRegistry() *Registry {
	r := &Registry{fields: make(map[string]*Field, len(builtinFields))}
	for i := range builtinFields {
		r.fields[builtinFields[i].Name] = &builtinFields[i]
	}
	return r
}

// RegisterField adds a custom field to the registry. An existing field with
// the same name is never replaced.
func (r *Registry) RegisterField(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("registering field: name is required")
	}
	if f.Kind == nil {
		return fmt.Errorf("registering field %q: kind is required", f.Name)
	}
	if f.Get == nil {
		return fmt.Errorf("registering field %q: accessor is required", f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("registering field %q: registry is sealed", f.Name)
	}
	if _, ok := r.fields[f.Name]; ok {
		return fmt.Errorf("registering field %q: already registered", f.Name)
	}
	r.fields[f.Name] = &f
	return nil
}

// RegisterAlias maps an alias to an existing canonical field. The alias
// shares the canonical field's descriptor; no new accessor logic is
// involved. This is how configuration-supplied alias tables (for example
// d.name -> name) are consumed.
func (r *Registry) RegisterAlias(alias, canonical string) error {
	if alias == "" {
		return fmt.Errorf("registering alias for %q: alias is required", canonical)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("registering alias %q: registry is sealed", alias)
	}
	target, ok := r.fields[canonical]
	if !ok {
		return fmt.Errorf("registering alias %q: %w", alias, UnknownFieldError{Name: canonical})
	}
	if _, ok := r.fields[alias]; ok {
		return fmt.Errorf("registering alias %q: already registered", alias)
	}
	r.fields[alias] = target
	return nil
}

// Seal ends the registration phase. Sealing is idempotent; the engine seals
// the registry on the first Compile.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether the registration phase has ended.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the descriptor for a field name. Lookup is exact and
// case-sensitive.
func (r *Registry) Lookup(name string) (*Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[name]
	if !ok {
		return nil, UnknownFieldError{Name: name}
	}
	return f, nil
}

// Names returns all registered field names (aliases included), sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fields))
	for n := range r.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// builtinFields is the standard torrent item field table. Accessors read
// the item key of the same name; the transport layer is expected to
// populate items with these keys.
var builtinFields = []Field{
	{Name: "name", Kind: String{}, Get: rawField("name"), Help: "item name"},
	{Name: "hash", Kind: String{}, Get: rawField("hash"), Help: "info hash"},
	{Name: "message", Kind: String{}, Get: rawField("message"), Help: "tracker status message"},
	{Name: "path", Kind: String{}, Get: rawField("path"), Help: "path to downloaded data"},
	{Name: "directory", Kind: String{}, Get: rawField("directory"), Help: "session directory"},
	{Name: "metafile", Kind: String{}, Get: rawField("metafile"), Help: "path to the .torrent file"},
	{Name: "tracker", Kind: String{}, Get: rawField("tracker"), Help: "first announce URL"},
	{Name: "alias", Kind: String{}, Get: rawField("alias"), Help: "tracker alias or domain"},

	{Name: "size", Kind: Number{}, Get: rawField("size"), Help: "data size in bytes"},
	{Name: "up", Kind: Number{}, Get: rawField("up"), Help: "upload rate in bytes/s"},
	{Name: "down", Kind: Number{}, Get: rawField("down"), Help: "download rate in bytes/s"},
	{Name: "uploaded", Kind: Number{}, Get: rawField("uploaded"), Help: "total uploaded bytes"},
	{Name: "ratio", Kind: Number{}, Get: rawField("ratio"), Help: "upload/download ratio"},
	{Name: "done", Kind: Number{}, Get: rawField("done"), Help: "completion percentage"},
	{Name: "prio", Kind: Number{}, Get: rawField("prio"), Help: "priority (0=off .. 3=high)"},

	{Name: "loaded", Kind: Time{}, Get: rawField("loaded"), Help: "time the item was loaded"},
	{Name: "started", Kind: Time{}, Get: rawField("started"), Help: "time the item was first started"},
	{Name: "completed", Kind: Time{}, Get: rawField("completed"), Help: "time the download finished"},
	{Name: "active", Kind: Time{}, Get: rawField("active"), Help: "time of last activity"},

	{Name: "is_complete", Kind: Bool{}, Get: rawField("is_complete"), Help: "download complete?"},
	{Name: "is_open", Kind: Bool{}, Get: rawField("is_open"), Help: "item open?"},
	{Name: "is_active", Kind: Bool{}, Get: rawField("is_active"), Help: "item started?"},
	{Name: "is_ghost", Kind: Bool{}, Get: rawField("is_ghost"), Help: "data file missing?"},
	{Name: "is_multi_file", Kind: Bool{}, Get: rawField("is_multi_file"), Help: "multi-file item?"},

	{Name: "tagged", Kind: List{}, Get: rawField("tagged"), Help: "user-assigned tags"},
	{Name: "views", Kind: List{}, Get: rawField("views"), Help: "client views the item is on"},
	{Name: "kind", Kind: List{}, Get: rawField("kind"), Help: "file extensions in the item"},
}
