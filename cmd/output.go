package cmd

import (
	"io"
	"strconv"
	"strings"
	"time"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	return table
}

func header(kind cr.Kind) []string {
	switch kind {
	case cr.KindKeypair:
		return []string{"IDENTIFIER", "NAME", "FINGERPRINT"}
	case cr.KindInstance:
		return []string{"IDENTIFIER", "NAME", "IMAGE", "FLAVOR", "KEY", "NETWORKS", "STATUS", "CREATED"}
	case cr.KindImage:
		return []string{"IDENTIFIER", "NAME", "PROTECTED", "CREATED"}
	default:
		return []string{"IDENTIFIER", "NAME"}
	}
}

func row(item cr.Item) []string {
	columns := []string{item.GetIdentifier(), item.GetName()}
	switch it := item.(type) {
	case *cr.Keypair:
		columns = append(columns, it.Fingerprint())
	case *cr.Instance:
		columns = append(columns,
			orNone(it.Image),
			orNone(it.Flavor),
			orNone(it.KeyName),
			orNone(strings.Join(it.Networks, ",")),
			orNone(it.Status),
			created(it.CreatedAt))
	case *cr.Image:
		columns = append(columns, strconv.FormatBool(it.Protected), created(it.CreatedAt))
	}
	return columns
}

// printItems renders items of kind as a table
func printItems(w io.Writer, kind cr.Kind, items []cr.Item) {
	table := newTable(w, header(kind))
	for _, item := range items {
		table.Append(row(item))
	}
	table.Render()
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

func created(t time.Time) string {
	if t.IsZero() {
		return "<none>"
	}
	return t.UTC().Format(time.RFC3339)
}
