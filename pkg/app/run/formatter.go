package run

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// FormatOutput writes the replay results in the given format
func FormatOutput(w io.Writer, response *Response, format string) error {
	return app.Render(w, format, response, func(tw io.Writer) error {
		fmt.Fprintf(tw, "STEP\tOP\tTAG\tSECTOR\tCOUNT\tSEGMENTS\tBYTES\tRESULT\n")
		fmt.Fprintf(tw, "----\t--\t---\t------\t-----\t--------\t-----\t------\n")
		for _, r := range response.Results {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
				r.Index, r.Op, r.Tag, r.Sector, r.Count, r.Segments, r.Bytes, outcome(r.Error, r.Expected))
		}
		fmt.Fprintln(tw)
		f := response.Final
		fmt.Fprintf(tw, "Script\t%s\n", response.Script)
		fmt.Fprintf(tw, "Steps\t%d\n", len(response.Results))
		fmt.Fprintf(tw, "Index lookups\t%d\n", f.Lookups)
		fmt.Fprintf(tw, "Hint hits/misses\t%d/%d\n", f.HintHits, f.HintMisses)
		fmt.Fprintf(tw, "Elapsed\t%v\n", response.Elapsed)
		if response.Failed != "" {
			fmt.Fprintf(tw, "Failed\t%s\n", response.Failed)
		}
		return nil
	})
}

// FormatSummary provides a brief summary for verbose output
func FormatSummary(response *Response) string {
	expected := 0
	for _, r := range response.Results {
		if r.Expected {
			expected++
		}
	}
	summary := fmt.Sprintf("Ran %d step", len(response.Results))
	if len(response.Results) != 1 {
		summary += "s"
	}
	if expected > 0 {
		summary += fmt.Sprintf(" (%d failed as expected)", expected)
	}
	return summary + fmt.Sprintf(" in %v", response.Elapsed)
}

func outcome(errMsg string, expected bool) string {
	switch {
	case errMsg == "":
		return "ok"
	case expected:
		return "expected: " + errMsg
	}
	return "FAILED: " + errMsg
}
