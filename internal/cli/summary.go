package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/mgpai22/captionprep/internal/batch"
)

func renderSummary(summary batch.Summary, colorize bool) string {
	tw := table.NewWriter()
	if colorize {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.Style().Format.Footer = text.FormatDefault

	tw.AppendHeader(table.Row{"Episode", "Records", "Skipped", "Output", "Status"})
	for _, r := range summary.Results {
		status := "ok"
		output := r.Output
		if output != "" {
			output = filepath.ToSlash(output)
		}
		if r.Err != nil {
			status = r.Err.Error()
			if colorize {
				status = text.FgRed.Sprint(status)
			}
		}
		tw.AppendRow(table.Row{
			r.Episode.String(),
			strconv.Itoa(r.Records),
			strconv.Itoa(len(r.Skipped)),
			output,
			status,
		})
	}
	tw.AppendFooter(table.Row{
		"total",
		strconv.Itoa(summary.Records()),
		"",
		fmt.Sprintf("%d/%d episodes", summary.Succeeded(), len(summary.Results)),
		"",
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
