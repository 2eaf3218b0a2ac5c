package service

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/thomasteplick/mfccpanel/mfcc"
)

// --- Feature extraction (/upload) ---
type Response struct {
	Status    string      `json:"status"`
	Filename  string      `json:"filename"`
	Command   string      `json:"command,omitempty"`
	MFCC      mfcc.Matrix `json:"mfcc"`
	MFCCShape []int       `json:"mfcc_shape,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Extract uploads a clip and returns the feature matrix and any detected
// command.
func (h *HTTP) Extract(ctx context.Context, filename string, audio []byte) (*Response, error) {
	resp, err := h.upload(ctx, "/upload", filename, audio, nil)
	if err != nil {
		return nil, err
	}
	var out Response
	if err := decode("upload", resp, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return &out, &APIError{Status: http.StatusOK, Message: out.Error}
	}
	return &out, nil
}

// --- Wake word training (/train_wakeword) ---
type TrainResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Label    string `json:"label"`
	MFCCFile string `json:"mfcc_file"`
	Retrain  string `json:"retrain"`
}

// TrainWakeWord uploads a labeled sample; the service stores its features
// and retrains the keyword model.
func (h *HTTP) TrainWakeWord(ctx context.Context, label, filename string, audio []byte) (*TrainResponse, error) {
	resp, err := h.upload(ctx, "/train_wakeword", filename, audio, map[string]string{"label": label})
	if err != nil {
		return nil, err
	}
	var out TrainResponse
	if err := decode("train", resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Wake word detection (/detect_wakeword) ---
type DetectResponse struct {
	PredictedLabel string    `json:"predicted_label"`
	Confidence     float64   `json:"confidence"`
	Labels         []string  `json:"labels"`
	Probabilities  []float64 `json:"probabilities"`
}

func (h *HTTP) DetectWakeWord(ctx context.Context, filename string, audio []byte) (*DetectResponse, error) {
	resp, err := h.upload(ctx, "/detect_wakeword", filename, audio, nil)
	if err != nil {
		return nil, err
	}
	var out DetectResponse
	if err := decode("detect", resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Trained wake words (/list_wakewords) ---
type WakeWord struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Line formats the entry for the wake word list.
func (w WakeWord) Line() string {
	if w.Count > 1 {
		return fmt.Sprintf("%s (%d samples)", w.Label, w.Count)
	}
	return fmt.Sprintf("%s (%d sample)", w.Label, w.Count)
}

func (h *HTTP) ListWakeWords(ctx context.Context) ([]WakeWord, error) {
	resp, err := h.get(ctx, "/list_wakewords")
	if err != nil {
		return nil, err
	}
	var out struct {
		WakeWords []WakeWord `json:"wakewords"`
	}
	if err := decode("list wakewords", resp, &out); err != nil {
		return nil, err
	}
	return out.WakeWords, nil
}

// --- Dataset archive (/download_wakeword_dataset) ---

// DownloadDataset copies the zip of stored samples and labels into w.
func (h *HTTP) DownloadDataset(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := h.get(ctx, "/download_wakeword_dataset")
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, decode("dataset", resp, &struct{}{})
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("dataset copy: %w", err)
	}
	return n, nil
}
