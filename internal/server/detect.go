package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"catscan/internal/batch"
	"catscan/internal/detector"
	"catscan/internal/history"
	"catscan/internal/logging"
	"catscan/internal/samples"
)

// sseSink writes batch events as server-sent events, flushing after each so
// the browser sees progress immediately. A write failure or a dead request
// context reports the transport gone, which ends the run.
type sseSink struct {
	ctx     context.Context
	writer  http.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Send(evt batch.Event) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// handleDetect runs one full batch over the current working set, streaming
// progress to the subscriber. Every request is an independent run with its
// own enumeration; two browser tabs share nothing but the samples on disk.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	items, err := samples.List(s.cfg.Paths.SamplesDir)
	if err != nil {
		s.logger.Warn("sample enumeration failed", logging.Error(err))
		items = nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	runner := batch.New(s.cfg, detector.New(s.cfg, s.logger), s.logger)

	var run *history.Run
	if s.store != nil {
		run, err = s.store.StartRun(r.Context(), len(items))
		if err != nil {
			s.logger.Warn("start run record failed", logging.Error(err))
			run = nil
		}
	}
	if run != nil {
		runner.Observe(func(item samples.Item, outcome detector.Outcome) {
			recordErr := s.store.RecordResult(r.Context(), history.Result{
				RunID:          run.ID,
				ItemID:         item.ID,
				Filename:       item.Filename,
				HasCat:         outcome.HasCat,
				Failure:        outcome.Failure,
				DurationMillis: outcome.Duration.Milliseconds(),
			})
			if recordErr != nil {
				s.logger.Warn("record result failed", logging.Error(recordErr))
			}
		})
	}

	runErr := runner.Run(r.Context(), items, &sseSink{ctx: r.Context(), writer: w, flusher: flusher})
	if runErr != nil {
		s.logger.Info("detection run ended early",
			logging.Int("items", len(items)),
			logging.Error(runErr),
		)
	}

	if run != nil {
		// The subscriber may be gone; finish the record on a fresh context.
		if err := s.store.FinishRun(context.Background(), run.ID, runErr != nil); err != nil {
			s.logger.Warn("finish run record failed", logging.Error(err))
		}
	}
}
