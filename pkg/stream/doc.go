// Package stream carries graph mutations as events.
//
// A [Source] stamps every [Event] with its id and a per-source monotonically
// increasing time id before handing it to its sinks. Sinks use [SinkTime] to
// drop a (source id, time id) pair they have already seen, which makes it safe
// to wire sources into cycles or replay a stream twice.
//
// [Buffer] is the hand-off between a producer goroutine and the rendering
// goroutine: it queues events under a mutex and replays them in arrival order
// when the renderer calls [Buffer.Flush] at the start of a frame.
//
// [Document] is the node-link JSON format accepted by the command line tools;
// [Document.Replay] turns it into events.
package stream
