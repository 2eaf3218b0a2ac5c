/*
Local HTTP control panel.  Clips are uploaded from the browser, sent to the
feature service and the returned matrix is drawn as a heatmap with its
colorbar and as a normalized line graph, next to the statistics, the
console text and the command history.  All exports are taken from the
state held in memory.
*/

package panel

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thomasteplick/mfccpanel/config"
	"github.com/thomasteplick/mfccpanel/service"
	"github.com/thomasteplick/mfccpanel/session"
)

const maxUpload = 32 << 20 // bytes accepted per multipart form

//go:embed templates/panel.html
var pageHTML string

var tmplPanel = template.Must(template.New("panel").Parse(pageHTML))

// Service is the part of the feature service the panel calls.
type Service interface {
	Extract(ctx context.Context, filename string, audio []byte) (*service.Response, error)
	TrainWakeWord(ctx context.Context, label, filename string, audio []byte) (*service.TrainResponse, error)
	DetectWakeWord(ctx context.Context, filename string, audio []byte) (*service.DetectResponse, error)
	ListWakeWords(ctx context.Context) ([]service.WakeWord, error)
	DownloadDataset(ctx context.Context, w io.Writer) (int64, error)
}

// PageT holds all the html template actions.
type PageT struct {
	Status    string
	SessionID string
	ClipName  string
	Shape     string
	Command   string
	HasClip   bool
	HasMatrix bool
	Version   int // bumps image URLs after every change
	Console   []string
	Stats     []string
	History   []string
	WakeWords []string
}

// Panel serves one session at a time.  mu guards the session and
// everything shown next to it; rendering works on copies.
type Panel struct {
	cfg *config.Render
	svc Service
	log logrus.FieldLogger
	now func() time.Time

	mu        sync.Mutex
	s         session.Session
	req       *session.RenderRequest
	history   *session.History
	wakewords []string
	version   int
}

func New(cfg *config.Root, svc Service, log logrus.FieldLogger) *Panel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Panel{
		cfg:     &cfg.Render,
		svc:     svc,
		log:     log,
		now:     time.Now,
		history: session.NewHistory(cfg.History.Size),
		s:       session.Session{Status: "Load a clip to begin"},
	}
}

// Handler returns the panel routes.
func (p *Panel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", p.handlePage)
	mux.HandleFunc("/capture", post(p.handleCapture))
	mux.HandleFunc("/extract", post(p.handleExtract))
	mux.HandleFunc("/detect", post(p.handleDetect))
	mux.HandleFunc("/train", post(p.handleTrain))
	mux.HandleFunc("/wakewords", p.handleWakeWords)
	mux.HandleFunc("/heatmap.png", p.handleHeatmap)
	mux.HandleFunc("/linegraph.png", p.handleLineGraph)
	mux.HandleFunc("/waveform.png", p.handleWaveform)
	mux.HandleFunc("/chart.png", p.handleChart)
	mux.HandleFunc("/mfcc.csv", p.handleCSV)
	mux.HandleFunc("/audio.wav", p.handleAudio)
	mux.HandleFunc("/dataset.zip", p.handleDataset)
	return mux
}

// ListenAndServe runs the panel until ctx is cancelled.
func (p *Panel) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: p.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	p.log.WithField("addr", addr).Info("panel listening")

	select {
	case err := <-errc:
		return fmt.Errorf("panel server: %w", err)
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return fmt.Errorf("panel shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// snapshot returns a copy of the current session.
func (p *Panel) snapshot() session.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s
}

// page fills the template actions.  Call with mu held.
func (p *Panel) page() *PageT {
	pg := &PageT{
		Status:    p.s.Status,
		SessionID: p.s.ID,
		Shape:     p.s.Shape,
		Command:   p.s.Command,
		HasClip:   p.s.Clip != nil,
		HasMatrix: len(p.s.Matrix) > 0,
		Version:   p.version,
		History:   p.history.Lines(),
		WakeWords: p.wakewords,
	}
	if p.s.Clip != nil {
		pg.ClipName = p.s.Clip.Name
	}
	if p.req != nil {
		pg.Console = p.req.Console
		pg.Stats = p.req.Stats.Lines()
	}
	return pg
}

func (p *Panel) writePage(w http.ResponseWriter) {
	p.mu.Lock()
	pg := p.page()
	p.mu.Unlock()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmplPanel.Execute(w, pg); err != nil {
		p.log.WithError(err).Error("write panel page")
	}
}

// setStatus records a message without touching the session data.
func (p *Panel) setStatus(msg string) {
	p.mu.Lock()
	p.s.Status = msg
	p.mu.Unlock()
}

func (p *Panel) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	p.writePage(w)
}

// formFile reads the uploaded audio under "file".
func formFile(r *http.Request) (session.Clip, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return session.Clip{}, fmt.Errorf("parse upload: %w", err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return session.Clip{}, errors.New("no selected file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return session.Clip{}, fmt.Errorf("read upload: %w", err)
	}
	return session.Clip{Name: hdr.Filename, Data: data}, nil
}
