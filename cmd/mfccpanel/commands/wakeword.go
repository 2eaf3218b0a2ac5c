package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thomasteplick/mfccpanel/preview"
	"github.com/thomasteplick/mfccpanel/session"
)

var (
	label  string
	trim   bool
	zipOut string
)

var trainCmd = &cobra.Command{
	Use:   "train <sample.wav>",
	Short: "Upload a labeled wake word sample",
	Long: `Upload a sample to the service under a label.  The service stores its
features and retrains the keyword model when it has enough data.

With --trim only the first spoken region of the sample is uploaded.

Examples:
  mfccpanel train sample.wav --label jarvis
  mfccpanel train sample.wav --label jarvis --trim`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clip, err := loadClip(args[0])
		if err != nil {
			return err
		}
		if trim {
			if clip.Data, err = trimToSpeech(clip.Data, cfg.Preview.WordWindow); err != nil {
				return err
			}
		}
		lbl, err := session.ValidateTraining(label, &clip)
		if err != nil {
			return err
		}
		res, err := client().TrainWakeWord(cmd.Context(), lbl, clip.Name, clip.Data)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"op": "train", "label": res.Label, "mfcc_file": res.MFCCFile}).Debug("sample stored")
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Wake word saved!"))
		if res.Retrain != "" {
			fmt.Fprintln(out, dimStyle.Render(res.Retrain))
		}
		return nil
	},
}

// trimToSpeech keeps the first spoken region of a WAV clip.  A clip with
// no region found is returned unchanged.
func trimToSpeech(data []byte, windowMs int) ([]byte, error) {
	clip, err := preview.LoadWAVBytes(data)
	if err != nil {
		return nil, err
	}
	words := preview.Words(clip.Samples, clip.SampleRate, windowMs)
	if len(words) == 0 {
		return data, nil
	}
	return clip.Slice(words[0].Start, words[0].Stop).WAVBytes()
}

var detectCmd = &cobra.Command{
	Use:   "detect <clip.wav>",
	Short: "Ask the service which wake word a clip matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clip, err := loadClip(args[0])
		if err != nil {
			return err
		}
		res, err := client().DetectWakeWord(cmd.Context(), clip.Name, clip.Data)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, bannerStyle.Render(fmt.Sprintf("%s (confidence %.2f)", res.PredictedLabel, res.Confidence)))
		lines := make([]string, 0, len(res.Labels))
		for i, l := range res.Labels {
			if i < len(res.Probabilities) {
				lines = append(lines, fmt.Sprintf("%-16s %.3f", l, res.Probabilities[i]))
			}
		}
		printSection(out, "Probabilities", lines)
		return nil
	},
}

var wakewordsCmd = &cobra.Command{
	Use:   "wakewords",
	Short: "List the trained wake words",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		words, err := client().ListWakeWords(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(words) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No wake words trained yet."))
			return nil
		}
		lines := make([]string, len(words))
		for i, w := range words {
			lines[i] = w.Line()
		}
		printSection(out, "Wake words", lines)
		return nil
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Download the wake word dataset archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(zipOut)
		if err != nil {
			return err
		}
		n, err := client().DownloadDataset(cmd.Context(), f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(zipOut)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf("wrote %s (%d bytes)", zipOut, n)))
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVarP(&label, "label", "l", "", "wake word label")
	trainCmd.Flags().BoolVar(&trim, "trim", false, "upload only the first spoken region")
	datasetCmd.Flags().StringVarP(&zipOut, "out", "o", "wakeword_dataset.zip", "archive path")
}
