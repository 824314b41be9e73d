// Package camera turns graph units into pixels for one viewport.
//
// The forward transform is
//
//	T(w/2, h/2) · R(rotation) · S(ratio, -ratio) · T(-center)
//
// so graph y grows upward on screen. In auto-fit mode the center is the
// middle of the graph bounds and the ratio fits the bounds plus padding; the
// first explicit SetViewCenter, SetViewPercent or SetViewRotation freezes
// that framing and switches to user mode.
//
// [Camera.PushView] must run once per frame before any skeleton is read: it
// refreshes the shared [metrics.GraphMetrics] and the set of culled nodes
// that [Camera.IsVisible] consults.
package camera
