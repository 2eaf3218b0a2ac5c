/*
Session state of the control panel.  A session is created when a capture
starts, takes its clip when the capture stops or a file is chosen, takes the
feature matrix when the service answers and is read by the render and
export operations.  Handlers are plain functions from a session value to
the next one, so the panel and the CLI share them and tests need no server.
*/

package session

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thomasteplick/mfccpanel/mfcc"
	"github.com/thomasteplick/mfccpanel/service"
)

const consoleFrames = 3 // frames echoed in the console panel

var (
	ErrNoClip   = errors.New("no audio to process, record or select a file first")
	ErrNoMatrix = errors.New("no MFCC data to download")
	ErrNoLabel  = errors.New("enter a label for the wake word")
	ErrNoSample = errors.New("record a sample first")
)

// Clip is the recorded or chosen audio as uploaded.
type Clip struct {
	Name string
	Data []byte
}

// Session holds everything the panel knows about the current clip.
type Session struct {
	ID      string      // random id, new for every capture
	Started time.Time   // capture start
	Clip    *Clip       // audio to extract, nil until captured or chosen
	Matrix  mfcc.Matrix // last feature matrix received
	Shape   string      // "[frames, coeffs]" as reported
	Command string      // detected command, empty when none
	Status  string      // status line
}

// RenderRequest is what the presentation layer draws after an extraction.
type RenderRequest struct {
	Matrix    mfcc.Matrix
	Highlight *mfcc.HighlightRange
	Command   string
	Shape     string
	Console   []string
	Stats     *mfcc.Summary
}

// StartCapture discards any previous session and starts a new one.
func StartCapture(now time.Time) Session {
	return Session{ID: uuid.NewString(), Started: now, Status: "Recording..."}
}

// StopCapture stores the recorded clip.
func StopCapture(s Session, c Clip) Session {
	s.Clip = &c
	s.Matrix, s.Shape, s.Command = nil, "", ""
	s.Status = "Recording complete. Ready to extract MFCC."
	return s
}

// SelectFile stores a chosen file as the clip, starting a session when
// there is none.
func SelectFile(s Session, c Clip, now time.Time) Session {
	if s.ID == "" {
		s = StartCapture(now)
	}
	s = StopCapture(s, c)
	s.Status = "File selected. Ready to extract MFCC."
	return s
}

// Upload returns the clip to send to the service.
func Upload(s Session) (*Clip, error) {
	if s.Clip == nil {
		return nil, ErrNoClip
	}
	return s.Clip, nil
}

// Extracted stores the service response.  The render request highlights
// the detection window when a command was reported.
func Extracted(s Session, resp *service.Response) (Session, *RenderRequest) {
	s.Matrix = resp.MFCC
	s.Command = resp.Command
	s.Shape = ShapeString(resp.MFCCShape, resp.MFCC)
	s.Status = "MFCC extracted successfully"
	if s.Shape != "" {
		s.Status += " | MFCC shape: " + s.Shape
	}

	req := &RenderRequest{
		Matrix:  s.Matrix,
		Command: s.Command,
		Shape:   s.Shape,
		Console: ConsoleLines(s.Matrix, s.Command),
		Stats:   mfcc.Summarize(s.Matrix),
	}
	if frames, _ := s.Matrix.Shape(); s.Command != "" && frames > 0 && s.Matrix.Rectangular() {
		hr := mfcc.DetectionWindow(frames)
		req.Highlight = &hr
	}
	return s, req
}

// Failed records an error from the service or the transport.  The
// message is shown as is.
func Failed(s Session, err error) Session {
	s.Status = "Error: " + err.Error()
	return s
}

// Render rebuilds the render request of the stored matrix, for redraws
// and exports that must not call the service again.
func Render(s Session) *RenderRequest {
	_, req := Extracted(s, &service.Response{MFCC: s.Matrix, Command: s.Command})
	req.Shape = s.Shape
	return req
}

// WriteCSV exports the stored matrix.
func WriteCSV(s Session, w io.Writer) error {
	if len(s.Matrix) == 0 {
		return ErrNoMatrix
	}
	return mfcc.WriteCSV(w, s.Matrix)
}

// ShapeString formats the reported shape, falling back to the matrix
// itself.  It is empty when neither is available.
func ShapeString(reported []int, m mfcc.Matrix) string {
	if len(reported) > 0 {
		parts := make([]string, len(reported))
		for i, n := range reported {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if len(m) > 0 {
		frames, coeffs := m.Shape()
		return fmt.Sprintf("[%d, %d]", frames, coeffs)
	}
	return ""
}

// ConsoleLines is the text of the console panel: the first frames rounded
// to integers and the detection notice.
func ConsoleLines(m mfcc.Matrix, command string) []string {
	if len(m) == 0 {
		return nil
	}
	lines := []string{"Initializing MFCC Accelerator...", "Processing PCM Samples..."}
	for _, f := range m[:min(consoleFrames, len(m))] {
		vals := make([]string, len(f))
		for j, v := range f {
			vals[j] = strconv.FormatFloat(math.Floor(v+0.5), 'f', 0, 64)
		}
		lines = append(lines, "MFCC Coefficients: "+strings.Join(vals, ", "))
	}
	if command != "" {
		lines = append(lines, "Wake Word Detected!", "Listening for Next Command...")
	}
	return lines
}

// ValidateTraining checks a wake word sample before upload.
func ValidateTraining(label string, c *Clip) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ErrNoLabel
	}
	if c == nil || len(c.Data) == 0 {
		return "", ErrNoSample
	}
	return label, nil
}
