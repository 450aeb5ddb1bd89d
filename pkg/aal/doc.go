// ABOUTME: Package documentation for the audio abstraction layer
// ABOUTME: Describes modules, handles and the listener contract
// Package aal is a backend-neutral audio API.
//
// Backends describe themselves with a Module and are installed into a
// Registry in priority order. Clients pick a module by capability with
// Find, create a player or recorder through a Layer and receive
// notifications through a Listener:
//
//	layer := aal.NewLayer(aal.NewRegistry(pipeline.Module(), pcm.Module()))
//	id := layer.Find(aal.CapURLPlayback)
//	h := layer.PlayerCreate(&aal.Attributes{ModuleID: id, URI: "file:///tmp/a.wav", Listener: l}, nil)
//	layer.PlayerPlay(h)
//
// Listener callbacks run on backend goroutines and must not block.
package aal
