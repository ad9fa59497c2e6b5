package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/sigstore/gantt"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the derived timeline of a task file",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringP("output", "o", "table", "output format: table, yaml")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	g, _, err := openChart(args[0])
	if err != nil {
		return err
	}
	defer g.Close()

	format, _ := cmd.Flags().GetString("output")
	return render(cmd.OutOrStdout(), g, format)
}

// summary is the yaml view of a chart.
type summary struct {
	Start    time.Time         `yaml:"start"`
	End      time.Time         `yaml:"end"`
	Scale    gantt.Scale       `yaml:"scale"`
	Tasks    []gantt.Task      `yaml:"tasks"`
	Bars     map[int]gantt.Bar `yaml:"bars"`
	Selected []int             `yaml:"selected"`
}

func render(w io.Writer, g *gantt.Gantt, format string) error {
	if err := g.Store().Flush(); err != nil {
		return err
	}

	start, end := g.Range()

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()

		return enc.Encode(summary{
			Start:    start,
			End:      end,
			Scale:    g.Scale(),
			Tasks:    g.Tasks(),
			Bars:     g.Bars(),
			Selected: g.Selected(),
		})
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	scale := g.Scale()
	fmt.Fprintf(w, "range: %s .. %s (%d x %d %s, %dpx)\n",
		start.Format(time.DateOnly), end.Format(time.DateOnly),
		scale.Cells, scale.Step, scale.Unit, scale.Width)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEL\tID\tTEXT\tTYPE\tSTART\tEND\tDAYS\tPROGRESS\tBAR")

	bars, selected := g.Bars(), g.Selected()
	for _, t := range g.Tasks() {
		mark := ""
		if slices.Contains(selected, t.ID) {
			mark = "*"
		}
		b := bars[t.ID]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d%%\t%d+%d\n",
			mark, t.ID, t.Text, t.Type,
			t.Start.Format(time.DateOnly), t.End.Format(time.DateOnly),
			t.Duration, t.Progress, b.Left, b.Width)
	}
	return tw.Flush()
}
