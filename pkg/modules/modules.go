// ABOUTME: Default module table wiring every backend into one registry
// ABOUTME: Resolves a module by name or by required capabilities
package modules

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/backend/hal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/backend/pcm"
	"github.com/Resonate-Protocol/resonate-aal/pkg/backend/pipeline"
)

// ErrNoModule is returned when nothing matches a lookup
var ErrNoModule = errors.New("no matching module")

// Default returns a registry holding pipeline, hal and pcm in that order.
// Find prefers earlier modules.
func Default() *aal.Registry {
	return aal.NewRegistry(
		pipeline.Module(),
		hal.Module(),
		pcm.Module(),
	)
}

// Names lists the registered module names in registry order
func Names(r *aal.Registry) []string {
	mods := r.List()
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	return names
}

// Resolve picks a module by name when one is given, else the first module
// offering required. A named module must still offer required.
func Resolve(layer *aal.Layer, name string, required aal.Capability) (int, error) {
	if name == "" {
		id := layer.Find(required)
		if id == aal.NotFound {
			return aal.NotFound, fmt.Errorf("%w: capabilities %s", ErrNoModule, required)
		}
		return id, nil
	}

	id := layer.FindByName(name)
	if id == aal.NotFound {
		return aal.NotFound, fmt.Errorf("%w: %q (have %v)", ErrNoModule, name, Names(layer.Registry()))
	}
	if caps := layer.Capabilities(id); caps&required != required {
		return aal.NotFound, fmt.Errorf("%w: %s offers %s, need %s", ErrNoModule, name, caps, required)
	}
	return id, nil
}
