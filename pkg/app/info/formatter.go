package info

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-satatarget/internal/types"
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// FormatOutput writes the report in the given format
func FormatOutput(w io.Writer, response *Response, format string) error {
	return app.Render(w, format, response, func(tw io.Writer) error {
		return formatTable(tw, response)
	})
}

func formatTable(w io.Writer, response *Response) error {
	d := response.Device
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")
	fmt.Fprintf(w, "ID\t%s\n", d.ID)
	fmt.Fprintf(w, "Capacity\t%d sectors (%s)\n", d.Sectors, app.FormatBytes(d.Bytes))
	fmt.Fprintf(w, "Queue depth\t%d\n", d.QueueDepth)
	fmt.Fprintf(w, "Max segments\t%d\n", d.MaxSegments)
	fmt.Fprintf(w, "Write cache\t%t\n", d.WriteCache)
	fmt.Fprintf(w, "Allocator\t%s\n", d.Allocator)
	fmt.Fprintf(w, "Pages\t%d\n", d.Pages)
	fmt.Fprintf(w, "Extents\t%d (tree height %d)\n", d.Extents, d.TreeHeight)
	for order, n := range d.Orders {
		if n != 0 {
			fmt.Fprintf(w, "  order %d\t%d x %s\n", order, n, app.FormatBytes(uint64(types.PageSize)<<order))
		}
	}

	if id := response.Identify; id != nil {
		fmt.Fprintf(w, "Model\t%s\n", id.Model)
		fmt.Fprintf(w, "Serial\t%s\n", id.Serial)
		fmt.Fprintf(w, "Firmware\t%s\n", id.Firmware)
		fmt.Fprintf(w, "WWN\t%016x\n", id.WWN)
		fmt.Fprintf(w, "Geometry\t%d/%d/%d\n", id.Geometry.Cylinders, id.Geometry.Heads, id.Geometry.SectorsPerTrack)
		fmt.Fprintf(w, "LBA48 sectors\t%d\n", id.Sectors48)
		fmt.Fprintf(w, "NCQ depth\t%d\n", id.QueueDepth)
		fmt.Fprintf(w, "Checksum\t%s\n", validity(id.ChecksumValid))
	}
	return nil
}

func validity(ok bool) string {
	if ok {
		return "valid"
	}
	return "INVALID"
}
