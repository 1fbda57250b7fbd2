package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/reconcile"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatResult formats a reconciliation result as a short summary line,
// followed by the observed instance when one exists.
func (f *TableFormatter) FormatResult(res *reconcile.Result) (string, error) {
	var buf bytes.Buffer

	changed := "unchanged"
	if res.Changed {
		changed = "changed"
	}
	fmt.Fprintf(&buf, "%s: %s\n", changed, res.Message)

	if res.Instance != nil {
		table, err := f.FormatInstance(res.Instance)
		if err != nil {
			return "", err
		}
		buf.WriteString(table)
	}

	return buf.String(), nil
}

// FormatInstance formats an observed instance as a table.
func (f *TableFormatter) FormatInstance(inst *rapi.Instance) (string, error) {
	if inst == nil {
		return "No instance found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tOS\tPNODE\tSNODES\tDISK_TEMPLATE")
	}

	snodes := "-"
	if len(inst.SNodes) > 0 {
		snodes = strings.Join(inst.SNodes, ",")
	}

	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		dash(inst.Name), dash(inst.Status), dash(inst.OS), dash(inst.PNode), snodes, dash(inst.DiskTemplate))

	_ = w.Flush()
	return buf.String(), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
