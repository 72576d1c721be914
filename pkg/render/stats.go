package render

// Stats summarizes a completed (or cancelled) render, grounded on the
// teacher's RenderStats — simplified from its adaptive per-pixel sample
// accounting (this driver always takes exactly one sample per pixel per
// iteration; the integrator's own internal bounces, not the driver,
// decide how much work that sample costs).
type Stats struct {
	TotalPixels         int
	TotalIterations     int
	IterationsCompleted int
	Cancelled           bool
}
