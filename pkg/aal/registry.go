// ABOUTME: Module registry holding backend descriptors in install order
// ABOUTME: Fixed capacity, nil-terminated, compacted on uninstall
package aal

// MaxModules is the registry capacity
const MaxModules = 8

// NotFound is returned by Find when no module matches
const NotFound = -1

// Registry is an ordered table of modules. It takes no locks: install and
// uninstall must not run concurrently with dispatch.
type Registry struct {
	// modules is nil-terminated; iteration stops at the first nil slot
	modules [MaxModules + 1]*Module
}

// NewRegistry creates a registry with modules installed in order
func NewRegistry(modules ...*Module) *Registry {
	r := &Registry{}
	for _, m := range modules {
		r.Install(m)
	}
	return r
}

// Count returns the number of installed modules
func (r *Registry) Count() int {
	n := 0
	for r.modules[n] != nil {
		n++
	}
	return n
}

// Name returns the module name. id must be in [0, Count()).
func (r *Registry) Name(id int) string {
	return r.modules[id].Name
}

// Capabilities returns the module capabilities. id must be in [0, Count()).
func (r *Registry) Capabilities(id int) Capability {
	return r.modules[id].Capabilities
}

// Module returns the descriptor for id, or nil when id is out of range
func (r *Registry) Module(id int) *Module {
	if id < 0 || id >= MaxModules {
		return nil
	}
	return r.modules[id]
}

// Find returns the first module whose capabilities include required
func (r *Registry) Find(required Capability) int {
	for i := 0; r.modules[i] != nil; i++ {
		if r.modules[i].Capabilities&required == required {
			return i
		}
	}
	return NotFound
}

// Install appends m. A nil module, a module already installed, or a full
// registry is logged and ignored.
func (r *Registry) Install(m *Module) bool {
	if m == nil {
		Logf(LogWarn, "install: nil module")
		return false
	}

	n := r.Count()
	for i := 0; i < n; i++ {
		if r.modules[i] == m {
			Logf(LogWarn, "install: module %s already installed", m.Name)
			return false
		}
	}
	if n >= MaxModules {
		Logf(LogError, "install: registry full, dropping module %s", m.Name)
		return false
	}

	r.modules[n] = m
	return true
}

// Uninstall removes the first occurrence of m and shifts later modules down
func (r *Registry) Uninstall(m *Module) bool {
	n := r.Count()
	for i := 0; i < n; i++ {
		if r.modules[i] != m {
			continue
		}
		copy(r.modules[i:n], r.modules[i+1:n+1])
		r.modules[n-1] = nil
		return true
	}
	return false
}

// Initialize runs the module's Initialize hook; modules without one succeed
func (r *Registry) Initialize(id int) bool {
	m := r.Module(id)
	if m == nil {
		Logf(LogError, "initialize: invalid module id %d", id)
		return false
	}
	if m.Initialize == nil {
		return true
	}
	return m.Initialize()
}

// Deinitialize runs the module's Deinitialize hook if present
func (r *Registry) Deinitialize(id int) {
	m := r.Module(id)
	if m == nil {
		Logf(LogError, "deinitialize: invalid module id %d", id)
		return
	}
	if m.Deinitialize != nil {
		m.Deinitialize()
	}
}

// List returns the installed modules in order
func (r *Registry) List() []*Module {
	n := r.Count()
	out := make([]*Module, n)
	copy(out, r.modules[:n])
	return out
}
