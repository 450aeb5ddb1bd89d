// ABOUTME: Package documentation for the default module table
// ABOUTME: The composition root shared by the command-line tools
// Package modules builds the registry every tool starts from.
//
//	layer := aal.NewLayer(modules.Default())
//	id, err := modules.Resolve(layer, "", aal.CapURLPlayback)
package modules
