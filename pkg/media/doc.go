// ABOUTME: Media pipeline package
// ABOUTME: State-driven playback and capture pipelines with a message bus
// Package media provides pipelines that move audio between sources and
// sinks under a NULL, READY, PAUSED, PLAYING state machine.
//
// Downward state changes are synchronous. READY to PAUSED prerolls on a
// separate goroutine and SetState returns StateChangeAsync. Progress is
// reported on the pipeline Bus as Messages in posting order.
//
// Example:
//
//	sink, _ := output.New("default")
//	p := media.NewPlaybin(media.PlaybinConfig{Name: "music", URI: "song.mp3", Sink: sink})
//	p.SetState(media.Playing)
//	for range p.Bus().Notify() {
//		for m := p.Bus().Pop(); m != nil; m = p.Bus().Pop() {
//			log.Println(m)
//		}
//	}
package media
