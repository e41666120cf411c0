package main

import (
	"fmt"
	"io"
	"time"

	"bale/internal/buildpipeline"
)

var timingLabels = map[buildpipeline.Stage]string{
	buildpipeline.StageRun:      "run hooks",
	buildpipeline.StageGraph:    "graph",
	buildpipeline.StageAssemble: "assembled",
	buildpipeline.StageEmit:     "emitted",
	buildpipeline.StageDone:     "done hooks",
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings) error {
	if out == nil {
		return nil
	}
	for _, stage := range buildpipeline.PipelineStages() {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", timingLabels[stage], toMillis(timings.Duration(stage))); err != nil {
			return err
		}
	}
	return nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
