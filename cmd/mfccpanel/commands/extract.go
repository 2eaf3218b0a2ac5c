package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thomasteplick/mfccpanel/session"
)

var extractCmd = &cobra.Command{
	Use:   "extract <clip.wav>",
	Short: "Extract MFCC from a clip with the feature service",
	Long: `Upload a clip to the feature service and print the console text and
statistics of the returned matrix.  With -o the heatmap, line graph,
chart and CSV are written to the given directory.

Examples:
  mfccpanel extract clip.wav
  mfccpanel extract clip.wav -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clip, err := loadClip(args[0])
		if err != nil {
			return err
		}
		s := session.SelectFile(session.Session{}, clip, time.Now())
		l := log.WithFields(logrus.Fields{"op": "extract", "session": s.ID, "clip": clip.Name})

		resp, err := client().Extract(cmd.Context(), clip.Name, clip.Data)
		if err != nil {
			l.WithError(err).Debug("extraction failed")
			return err
		}
		s, req := session.Extracted(s, resp)
		frames, coeffs := req.Matrix.Shape()
		l.WithFields(logrus.Fields{"frames": frames, "coeffs": coeffs, "command": req.Command}).Debug("extracted")

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, s.Status)
		printRequest(out, req)
		if outDir == "" {
			return nil
		}
		written, err := writeOutputs(outDir, &cfg.Render, req)
		for _, p := range written {
			fmt.Fprintln(out, dimStyle.Render("wrote "+p))
		}
		return err
	},
}

func init() {
	extractCmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for images and CSV")
}
