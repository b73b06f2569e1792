package identify

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// FormatOutput writes the decoded block. The table form is followed by
// a hex dump unless the block was written to a file.
func FormatOutput(w io.Writer, response *Response, format string) error {
	return app.Render(w, format, response, func(tw io.Writer) error {
		i := response.Info
		fmt.Fprintf(tw, "Model\t%s\n", i.Model)
		fmt.Fprintf(tw, "Serial\t%s\n", i.Serial)
		fmt.Fprintf(tw, "Firmware\t%s\n", i.Firmware)
		fmt.Fprintf(tw, "Sectors (28-bit)\t%d\n", i.Sectors28)
		fmt.Fprintf(tw, "Sectors (48-bit)\t%d\n", i.Sectors48)
		fmt.Fprintf(tw, "Features\t%s\n", features(response))
		fmt.Fprintf(tw, "UDMA\tmodes %#02x, selected %d\n", i.UDMAModes, i.UDMASelected)
		fmt.Fprintf(tw, "WWN\t%016x\n", i.WWN)
		if response.Path != "" {
			fmt.Fprintf(tw, "Written to\t%s\n", response.Path)
			return nil
		}
		fmt.Fprintln(tw)
		_, err := io.WriteString(tw, hex.Dump(response.Raw))
		return err
	})
}

func features(response *Response) string {
	i := response.Info
	var out []byte
	add := func(on bool, name string) {
		if !on {
			return
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, name...)
	}
	add(i.LBA, "LBA")
	add(i.DMA, "DMA")
	add(i.LBA48, "LBA48")
	add(i.NCQ, fmt.Sprintf("NCQ(%d)", i.QueueDepth))
	add(i.FUA, "FUA")
	add(i.FlushCache, "FLUSH")
	add(i.WriteCacheSupported, "WCACHE")
	add(i.WriteCacheEnabled, "WCE")
	return string(out)
}
