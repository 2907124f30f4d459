package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"
)

// Show prints recent history rows.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	_, history := a.newStores()

	records, err := history.ListRecent(opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no history yet")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tPrice\tLog-return\tZ\tAlert")

	for _, rec := range records {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			rec.Time.UTC().Format(time.RFC3339),
			rec.Price.StringFixed(4),
			formatFloatColumn(rec.Return),
			formatFloatColumn(rec.Z),
			rec.Alert,
		)
	}

	writer.Flush()
	return nil
}

func formatFloatColumn(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
