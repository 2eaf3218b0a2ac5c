package panel

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thomasteplick/mfccpanel/config"
	"github.com/thomasteplick/mfccpanel/mfcc"
	"github.com/thomasteplick/mfccpanel/preview"
	"github.com/thomasteplick/mfccpanel/service"
)

type fakeService struct {
	resp       *service.Response
	err        error
	detect     *service.DetectResponse
	trained    []string
	words      []service.WakeWord
	listErr    error
	dataset    []byte
	datasetErr error
}

func (f *fakeService) Extract(ctx context.Context, filename string, audio []byte) (*service.Response, error) {
	return f.resp, f.err
}

func (f *fakeService) TrainWakeWord(ctx context.Context, label, filename string, audio []byte) (*service.TrainResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.trained = append(f.trained, label)
	return &service.TrainResponse{Status: "wake word trained", Label: label, Retrain: "Model retrained and saved."}, nil
}

func (f *fakeService) DetectWakeWord(ctx context.Context, filename string, audio []byte) (*service.DetectResponse, error) {
	return f.detect, f.err
}

func (f *fakeService) ListWakeWords(ctx context.Context) ([]service.WakeWord, error) {
	return f.words, f.listErr
}

func (f *fakeService) DownloadDataset(ctx context.Context, w io.Writer) (int64, error) {
	if f.datasetErr != nil {
		return 0, f.datasetErr
	}
	n, err := w.Write(f.dataset)
	return int64(n), err
}

var t0 = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newTestPanel(t *testing.T, svc Service) http.Handler {
	t.Helper()
	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := New(cfg, svc, log)
	p.now = func() time.Time { return t0 }
	return p.Handler()
}

func testWAV(t *testing.T) []byte {
	t.Helper()
	c := &preview.Clip{Samples: make([]float64, 1600), SampleRate: 16000}
	for i := range c.Samples {
		c.Samples[i] = 0.5 * float64(i%40-20) / 20
	}
	data, err := c.WAVBytes()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func upload(t *testing.T, h http.Handler, path string, fields map[string]string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if data != nil {
		fw, err := mw.CreateFormFile("file", "audio.wav")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func matrix(frames, coeffs int) mfcc.Matrix {
	m := make(mfcc.Matrix, frames)
	for i := range m {
		m[i] = make(mfcc.Frame, coeffs)
		for j := range m[i] {
			m[i][j] = float64(i*coeffs+j) - 20
		}
	}
	return m
}

func pngSize(t *testing.T, rec *httptest.ResponseRecorder) (int, int) {
	t.Helper()
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status %d, type %q: %s", rec.Code, rec.Header().Get("Content-Type"), rec.Body.String())
	}
	cfg, err := png.DecodeConfig(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Width, cfg.Height
}

func TestCaptureExtractExport(t *testing.T) {
	svc := &fakeService{resp: &service.Response{
		Status:    "success",
		MFCC:      matrix(10, 3),
		MFCCShape: []int{10, 3},
		Command:   "light_on",
	}}
	h := newTestPanel(t, svc)
	wav := testWAV(t)

	rec := upload(t, h, "/capture", nil, wav)
	if !strings.Contains(rec.Body.String(), "Ready to extract MFCC") {
		t.Fatalf("capture page:\n%s", rec.Body.String())
	}
	if rec := do(h, http.MethodGet, "/heatmap.png"); rec.Code != http.StatusNotFound {
		t.Errorf("heatmap before extraction: %d", rec.Code)
	}

	page := do(h, http.MethodPost, "/extract").Body.String()
	for _, want := range []string{
		"MFCC extracted successfully | MFCC shape: [10, 3]",
		"Wake Word Detected! Command: light_on",
		"[09:30:00] light_on",
		"Listening for Next Command...",
		"Duration (s): 0.10",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	if width, height := pngSize(t, do(h, http.MethodGet, "/heatmap.png")); width != 600+64 || height != 260 {
		t.Errorf("heatmap %dx%d", width, height)
	}
	if width, height := pngSize(t, do(h, http.MethodGet, "/linegraph.png")); width != 600 || height != 260 {
		t.Errorf("linegraph %dx%d", width, height)
	}
	if width, height := pngSize(t, do(h, http.MethodGet, "/waveform.png")); width != 600 || height != 100 {
		t.Errorf("waveform %dx%d", width, height)
	}
	if width, height := pngSize(t, do(h, http.MethodGet, "/chart.png")); width != 800 || height != 360 {
		t.Errorf("chart %dx%d", width, height)
	}

	csv := do(h, http.MethodGet, "/mfcc.csv")
	if lines := strings.Split(strings.TrimSpace(csv.Body.String()), "\n"); len(lines) != 10 || lines[0] != "-20,-19,-18" {
		t.Errorf("csv = %q", csv.Body.String())
	}
	if cd := csv.Header().Get("Content-Disposition"); !strings.Contains(cd, "mfcc.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	if audio := do(h, http.MethodGet, "/audio.wav"); !bytes.Equal(audio.Body.Bytes(), wav) {
		t.Error("audio playback differs from upload")
	}
}

func TestExtractWithoutClip(t *testing.T) {
	h := newTestPanel(t, &fakeService{})
	page := do(h, http.MethodPost, "/extract").Body.String()
	if !strings.Contains(page, "Error: no audio to process") {
		t.Errorf("page:\n%s", page)
	}
	for _, path := range []string{"/waveform.png", "/audio.wav", "/mfcc.csv", "/chart.png"} {
		if rec := do(h, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("%s: %d", path, rec.Code)
		}
	}
}

func TestExtractServiceError(t *testing.T) {
	h := newTestPanel(t, &fakeService{err: &service.APIError{Status: 400, Message: "No selected file"}})
	upload(t, h, "/capture", nil, testWAV(t))
	page := do(h, http.MethodPost, "/extract").Body.String()
	if !strings.Contains(page, "Error: No selected file") {
		t.Errorf("page:\n%s", page)
	}
	if rec := do(h, http.MethodGet, "/linegraph.png"); rec.Code != http.StatusNotFound {
		t.Errorf("linegraph after failure: %d", rec.Code)
	}
}

func TestWaveformRejectsNonWAV(t *testing.T) {
	h := newTestPanel(t, &fakeService{})
	upload(t, h, "/capture", nil, []byte("not audio at all"))
	if rec := do(h, http.MethodGet, "/waveform.png"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status %d", rec.Code)
	}
}

func TestDetect(t *testing.T) {
	h := newTestPanel(t, &fakeService{detect: &service.DetectResponse{PredictedLabel: "jarvis", Confidence: 0.9}})
	upload(t, h, "/capture", nil, testWAV(t))
	page := do(h, http.MethodPost, "/detect").Body.String()
	if !strings.Contains(page, "Predicted wake word: jarvis (confidence 0.90)") {
		t.Errorf("page:\n%s", page)
	}
}

func TestTrain(t *testing.T) {
	svc := &fakeService{words: []service.WakeWord{{Label: "jarvis", Count: 2}}}
	h := newTestPanel(t, svc)

	page := upload(t, h, "/train", map[string]string{"label": " "}, testWAV(t)).Body.String()
	if !strings.Contains(page, "Error: enter a label for the wake word") {
		t.Errorf("blank label page:\n%s", page)
	}
	page = upload(t, h, "/train", map[string]string{"label": "jarvis"}, nil).Body.String()
	if !strings.Contains(page, "Error: record a sample first") {
		t.Errorf("missing sample page:\n%s", page)
	}

	page = upload(t, h, "/train", map[string]string{"label": " jarvis "}, testWAV(t)).Body.String()
	if !strings.Contains(page, "Wake word saved! Model retrained and saved.") {
		t.Errorf("train page:\n%s", page)
	}
	if !strings.Contains(page, "jarvis (2 samples)") {
		t.Errorf("wake word list not refreshed:\n%s", page)
	}
	if len(svc.trained) != 1 || svc.trained[0] != "jarvis" {
		t.Errorf("trained = %v", svc.trained)
	}
}

func TestWakeWords(t *testing.T) {
	svc := &fakeService{}
	h := newTestPanel(t, svc)
	if page := do(h, http.MethodGet, "/wakewords").Body.String(); !strings.Contains(page, noWakeWords) {
		t.Errorf("empty list page:\n%s", page)
	}
	svc.listErr = &service.APIError{Status: 500, Message: "boom"}
	if page := do(h, http.MethodGet, "/wakewords").Body.String(); !strings.Contains(page, "Error loading wake word list.") {
		t.Errorf("error page:\n%s", page)
	}
}

func TestDataset(t *testing.T) {
	svc := &fakeService{dataset: []byte("PK\x03\x04zip")}
	h := newTestPanel(t, svc)
	rec := do(h, http.MethodGet, "/dataset.zip")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" || rec.Body.String() != "PK\x03\x04zip" {
		t.Errorf("dataset: %d %q %q", rec.Code, rec.Header().Get("Content-Type"), rec.Body.String())
	}
	svc.datasetErr = &service.APIError{Status: 404, Message: "No dataset found"}
	if rec := do(h, http.MethodGet, "/dataset.zip"); rec.Code != http.StatusBadGateway {
		t.Errorf("missing dataset: %d", rec.Code)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestPanel(t, &fakeService{})
	if rec := do(h, http.MethodGet, "/extract"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /extract: %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/"); !strings.Contains(rec.Body.String(), "Load a clip to begin") {
		t.Errorf("index:\n%s", rec.Body.String())
	}
}
