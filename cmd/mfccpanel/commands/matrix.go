package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thomasteplick/mfccpanel/mfcc"
	"github.com/thomasteplick/mfccpanel/session"
)

var (
	csvFile   string
	highlight string
	detected  bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw a matrix stored as CSV",
	Long: `Draw the heatmap, line graph and chart of a matrix stored as CSV, one
frame per row.  The highlight is either an explicit frame range or, with
--detected, the wake word window of the matrix.

Examples:
  mfccpanel render --csv mfcc.csv -o out/
  mfccpanel render --csv mfcc.csv --highlight 30:55 -o out/
  mfccpanel render --csv mfcc.csv --detected -o out/`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readMatrix(csvFile)
		if err != nil {
			return err
		}
		hr, err := parseHighlight(highlight)
		if err != nil {
			return err
		}
		frames, _ := m.Shape()
		if hr == nil && detected {
			w := mfcc.DetectionWindow(frames)
			hr = &w
		}
		if hr != nil {
			if err := hr.Validate(frames); err != nil {
				return err
			}
		}
		req := &session.RenderRequest{
			Matrix:    m,
			Highlight: hr,
			Shape:     session.ShapeString(nil, m),
		}
		dir := outDir
		if dir == "" {
			dir = "."
		}
		written, err := writeOutputs(dir, &cfg.Render, req)
		for _, p := range written {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("wrote "+p))
		}
		return err
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the summary of a matrix stored as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readMatrix(csvFile)
		if err != nil {
			return err
		}
		sum := mfcc.Summarize(m)
		if sum == nil {
			return mfcc.ErrEmpty
		}
		out := cmd.OutOrStdout()
		printSection(out, "Statistics", sum.Lines())
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("frames %d, coefficients %d, range [%.3f, %.3f]",
			sum.Frames, sum.Coeffs, sum.Min, sum.Max)))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, statsCmd} {
		c.Flags().StringVar(&csvFile, "csv", "", "matrix CSV file")
		c.MarkFlagRequired("csv")
	}
	renderCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default current)")
	renderCmd.Flags().StringVar(&highlight, "highlight", "", "highlighted frames as start:end")
	renderCmd.Flags().BoolVar(&detected, "detected", false, "highlight the wake word detection window")
}
