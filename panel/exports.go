package panel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/thomasteplick/mfccpanel/preview"
	"github.com/thomasteplick/mfccpanel/render"
	"github.com/thomasteplick/mfccpanel/session"
)

// clamp is the configured heatmap clamp, nil when disabled.
func (p *Panel) clamp() *render.Domain {
	if !p.cfg.Clamp.Enabled {
		return nil
	}
	return &render.Domain{Min: p.cfg.Clamp.Min, Max: p.cfg.Clamp.Max}
}

// renderRequest rebuilds the drawing input of the stored matrix.  It
// answers 404 when there is nothing to draw.
func (p *Panel) renderRequest(w http.ResponseWriter) (*session.RenderRequest, bool) {
	s := p.snapshot()
	if len(s.Matrix) == 0 {
		http.Error(w, session.ErrNoMatrix.Error(), http.StatusNotFound)
		return nil, false
	}
	return session.Render(s), true
}

func (p *Panel) writeImage(w http.ResponseWriter, img image.Image) {
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		p.fail(w, "png", err)
		return
	}
	writeBody(w, "image/png", "", buf.Bytes())
}

func (p *Panel) fail(w http.ResponseWriter, op string, err error) {
	p.log.WithField("op", op).WithError(err).Error("export failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeBody(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "no-store")
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Write(body)
}

// handleHeatmap serves the heatmap with its colorbar on the right.
func (p *Panel) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	req, ok := p.renderRequest(w)
	if !ok {
		return
	}
	hm, err := render.RenderHeatmap(req.Matrix, p.cfg.Heatmap.Width, p.cfg.Heatmap.Height,
		render.HeatmapOptions{Clamp: p.clamp(), ColorbarWidth: p.cfg.Colorbar.Width})
	if err != nil {
		p.fail(w, "heatmap", err)
		return
	}
	p.writeImage(w, render.Composite(hm.Image, hm.Colorbar))
}

func (p *Panel) handleLineGraph(w http.ResponseWriter, r *http.Request) {
	req, ok := p.renderRequest(w)
	if !ok {
		return
	}
	img, err := render.RenderLineGraph(req.Matrix, p.cfg.LineGraph.Width, p.cfg.LineGraph.Height,
		render.LineGraphOptions{Highlight: req.Highlight, Axes: true})
	if err != nil {
		p.fail(w, "linegraph", err)
		return
	}
	p.writeImage(w, img)
}

func (p *Panel) handleChart(w http.ResponseWriter, r *http.Request) {
	req, ok := p.renderRequest(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.ChartPNG(&buf, req.Matrix, p.cfg.Chart.Width, p.cfg.Chart.Height, req.Highlight); err != nil {
		p.fail(w, "chart", err)
		return
	}
	writeBody(w, "image/png", "", buf.Bytes())
}

// handleWaveform decodes the stored clip and draws its waveform.
func (p *Panel) handleWaveform(w http.ResponseWriter, r *http.Request) {
	s := p.snapshot()
	if s.Clip == nil {
		http.Error(w, session.ErrNoClip.Error(), http.StatusNotFound)
		return
	}
	clip, err := preview.LoadWAVBytes(s.Clip.Data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, preview.ErrNotWAV) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	img, err := render.RenderWaveform(clip.Samples, p.cfg.Waveform.Width, p.cfg.Waveform.Height)
	if err != nil {
		p.fail(w, "waveform", err)
		return
	}
	p.writeImage(w, img)
}

func (p *Panel) handleCSV(w http.ResponseWriter, r *http.Request) {
	s := p.snapshot()
	var buf bytes.Buffer
	if err := session.WriteCSV(s, &buf); err != nil {
		if errors.Is(err, session.ErrNoMatrix) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		p.fail(w, "csv", err)
		return
	}
	writeBody(w, "text/csv", "mfcc.csv", buf.Bytes())
}

// handleAudio plays back the stored clip as uploaded.
func (p *Panel) handleAudio(w http.ResponseWriter, r *http.Request) {
	s := p.snapshot()
	if s.Clip == nil {
		http.Error(w, session.ErrNoClip.Error(), http.StatusNotFound)
		return
	}
	writeBody(w, "audio/wav", "", s.Clip.Data)
}

// handleDataset relays the service's wake word archive.
func (p *Panel) handleDataset(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := p.svc.DownloadDataset(r.Context(), &buf); err != nil {
		p.log.WithField("op", "dataset").WithError(err).Error("download failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeBody(w, "application/zip", "wakeword_dataset.zip", buf.Bytes())
}
