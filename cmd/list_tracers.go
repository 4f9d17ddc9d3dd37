package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/achilleasa/skytrace/tracer/cpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the tracers that the render command would attach.
func ListTracers(ctx *cli.Context) error {
	setupLogging(ctx)

	numTracers := ctx.Int("tracers")
	if numTracers < 1 {
		numTracers = 1
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\nSystem provides %d cpu core(s) (GOMAXPROCS %d):\n\n", runtime.NumCPU(), runtime.GOMAXPROCS(0)))

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Tracer", "Speed estimate"})
	for i := 0; i < numTracers; i++ {
		tr := cpu.NewTracer(fmt.Sprintf("cpu-%d", i), ctx.Int("workers"), cpu.DefaultKernelOptions())
		table.Append([]string{tr.Id(), fmt.Sprintf("%3.1f", tr.SpeedEstimate())})
		tr.Close()
	}
	table.Render()

	logger.Notice(buf.String())
	return nil
}
