package panel

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/thomasteplick/mfccpanel/session"
)

const noWakeWords = "No wake words trained yet."

// handleCapture starts a new session with the uploaded clip.
func (p *Panel) handleCapture(w http.ResponseWriter, r *http.Request) {
	clip, err := formFile(r)
	if err != nil {
		p.setStatus("Error: " + err.Error())
		p.writePage(w)
		return
	}

	p.mu.Lock()
	p.s = session.StopCapture(session.StartCapture(p.now()), clip)
	p.req = nil
	p.version++
	id := p.s.ID
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{"op": "capture", "session": id, "bytes": len(clip.Data)}).Info("clip stored")
	p.writePage(w)
}

// handleExtract sends the clip to the service.  The answer is dropped when
// a new capture replaced the session in the meantime.
func (p *Panel) handleExtract(w http.ResponseWriter, r *http.Request) {
	s := p.snapshot()
	clip, err := session.Upload(s)
	if err != nil {
		p.setStatus("Error: " + err.Error())
		p.writePage(w)
		return
	}
	log := p.log.WithFields(logrus.Fields{"op": "extract", "session": s.ID})

	resp, err := p.svc.Extract(r.Context(), clip.Name, clip.Data)

	p.mu.Lock()
	switch {
	case p.s.ID != s.ID:
		log.Warn("session replaced during extraction")
	case err != nil:
		p.s = session.Failed(p.s, err)
		log.WithError(err).Error("extraction failed")
	default:
		var req *session.RenderRequest
		p.s, req = session.Extracted(p.s, resp)
		p.req = req
		p.version++
		if req.Command != "" {
			p.history.Add(req.Command, p.now())
		}
		frames, coeffs := req.Matrix.Shape()
		log.WithFields(logrus.Fields{"frames": frames, "coeffs": coeffs, "command": req.Command}).Info("extracted")
	}
	p.mu.Unlock()
	p.writePage(w)
}

// handleDetect asks the service which trained wake word the clip matches.
func (p *Panel) handleDetect(w http.ResponseWriter, r *http.Request) {
	s := p.snapshot()
	clip, err := session.Upload(s)
	if err != nil {
		p.setStatus("Error: " + err.Error())
		p.writePage(w)
		return
	}
	res, err := p.svc.DetectWakeWord(r.Context(), clip.Name, clip.Data)
	if err != nil {
		p.log.WithFields(logrus.Fields{"op": "detect", "session": s.ID}).WithError(err).Error("detection failed")
		p.setStatus("Error: " + err.Error())
		p.writePage(w)
		return
	}
	p.setStatus(fmt.Sprintf("Predicted wake word: %s (confidence %.2f)", res.PredictedLabel, res.Confidence))
	p.writePage(w)
}

// handleTrain uploads a labeled sample and refreshes the wake word list.
func (p *Panel) handleTrain(w http.ResponseWriter, r *http.Request) {
	var sample *session.Clip
	if c, err := formFile(r); err == nil {
		sample = &c
	}
	label, err := session.ValidateTraining(r.FormValue("label"), sample)
	if err != nil {
		p.setStatus("Error: " + err.Error())
		p.writePage(w)
		return
	}
	log := p.log.WithFields(logrus.Fields{"op": "train", "label": label})

	res, err := p.svc.TrainWakeWord(r.Context(), label, sample.Name, sample.Data)
	if err != nil {
		log.WithError(err).Error("training failed")
		p.setStatus("Error: " + err.Error())
		p.writePage(w)
		return
	}
	log.WithField("retrain", res.Retrain).Info("wake word saved")
	status := "Wake word saved!"
	if res.Retrain != "" {
		status += " " + res.Retrain
	}
	p.setStatus(status)
	p.refreshWakeWords(r)
	p.writePage(w)
}

func (p *Panel) handleWakeWords(w http.ResponseWriter, r *http.Request) {
	p.refreshWakeWords(r)
	p.writePage(w)
}

// refreshWakeWords replaces the list shown on the page.
func (p *Panel) refreshWakeWords(r *http.Request) {
	words, err := p.svc.ListWakeWords(r.Context())
	lines := make([]string, 0, len(words))
	switch {
	case err != nil:
		p.log.WithField("op", "wakewords").WithError(err).Error("list failed")
		lines = append(lines, "Error loading wake word list.")
	case len(words) == 0:
		lines = append(lines, noWakeWords)
	default:
		for _, ww := range words {
			lines = append(lines, ww.Line())
		}
	}
	p.mu.Lock()
	p.wakewords = lines
	p.mu.Unlock()
}
