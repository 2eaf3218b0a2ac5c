package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thomasteplick/mfccpanel/preview"
	"github.com/thomasteplick/mfccpanel/render"
	"github.com/thomasteplick/mfccpanel/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview <clip.wav>",
	Short: "Local dB band spectrogram of a clip",
	Long: `Compute a dB band spectrogram of a WAV clip without the feature service
and draw it like a feature matrix.  The first spoken region found in the
clip is highlighted.  The waveform is written next to the other images.

Examples:
  mfccpanel preview clip.wav -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		clip, err := preview.LoadWAV(f)
		if err != nil {
			return err
		}

		pc := preview.Config{FFTSize: cfg.Preview.FFTSize, Window: cfg.Preview.Window, Bands: cfg.Preview.Bands}
		m, err := preview.Spectrogram(clip.Samples, clip.SampleRate, pc)
		if err != nil {
			return err
		}
		frames, coeffs := m.Shape()
		words := preview.Words(clip.Samples, clip.SampleRate, cfg.Preview.WordWindow)
		hr := preview.Highlight(words, clip.SampleRate, frames)
		log.WithFields(logrus.Fields{
			"op": "preview", "frames": frames, "coeffs": coeffs, "words": len(words),
		}).Debug("spectrogram computed")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %.2f s at %d Hz, %d frames x %d bands\n",
			args[0], clip.Duration(), clip.SampleRate, frames, coeffs)
		lines := make([]string, len(words))
		for i, b := range words {
			lines[i] = fmt.Sprintf("%.3f s - %.3f s",
				float64(b.Start)/float64(clip.SampleRate), float64(b.Stop)/float64(clip.SampleRate))
		}
		printSection(out, "Spoken regions", lines)

		if outDir == "" {
			return nil
		}
		req := &session.RenderRequest{Matrix: m, Highlight: hr, Shape: session.ShapeString(nil, m)}
		written, err := writeOutputs(outDir, &cfg.Render, req)
		if err == nil {
			wave := filepath.Join(outDir, "waveform.png")
			err = writeFile(wave, func(w io.Writer) error {
				img, err := render.RenderWaveform(clip.Samples, cfg.Render.Waveform.Width, cfg.Render.Waveform.Height)
				if err != nil {
					return err
				}
				return render.EncodePNG(w, img)
			})
			if err == nil {
				written = append(written, wave)
			}
		}
		for _, p := range written {
			fmt.Fprintln(out, dimStyle.Render("wrote "+p))
		}
		return err
	},
}

func init() {
	previewCmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for images and CSV")
}
