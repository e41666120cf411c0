// Package trace records build spans for diagnosing slow or stuck bundles.
//
// A Tracer travels through the build in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "graph", 0)
//	defer span.End("")
//
// Levels select how deep events go: "phase" keeps build and phase spans,
// "detail" adds one span per module, "debug" adds loader steps.
// The ring mode keeps recent events in memory so the CLI can dump them
// after a failed build.
package trace
