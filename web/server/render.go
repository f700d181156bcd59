package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/raster"
	"github.com/df07/go-adaptive-raytracer/pkg/scheduler"
	"github.com/segmentio/encoding/json"
)

const maxImageSize = 4096

// FrameEvent is a presented frame as sent to SSE and websocket clients
type FrameEvent struct {
	Generation string          `json:"generation"`
	Sequence   int             `json:"sequence"`
	ImageData  string          `json:"imageData"` // Base64 encoded PNG
	Frame      geometry.Frame  `json:"frame"`
	Stats      scheduler.Stats `json:"stats"`
}

func newFrameEvent(snap scheduler.Snapshot) (FrameEvent, error) {
	data, err := imageToBase64PNG(snap.Image)
	if err != nil {
		return FrameEvent{}, err
	}

	return FrameEvent{
		Generation: snap.Generation,
		Sequence:   snap.Sequence,
		ImageData:  data,
		Frame:      snap.Frame,
		Stats:      snap.Stats,
	}, nil
}

// handleFrame writes the last presented frame as a PNG. With preview=1 it
// writes the in-progress raster instead; width and height resize it.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	width, err := parseIntParam(query, "width", 0, 0, maxImageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	height, err := parseIntParam(query, "height", 0, 0, maxImageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	img := s.scheduler.CurrentRaster()
	if query.Get("preview") == "1" || img == nil {
		img = s.scheduler.Preview()
	}
	if img == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no frame rendered yet"))
		return
	}

	var out image.Image = img
	if width > 0 || height > 0 {
		out = raster.Scale(img, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("encoding png failed").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(buf.Bytes())
}

// handleEvents streams every presented frame as a server-sent event. The
// current frame, if any, is sent first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	frames, unsubscribe := s.scheduler.Subscribe()
	defer unsubscribe()

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if img := s.scheduler.CurrentRaster(); img != nil {
		stats := s.scheduler.Stats()
		snap := scheduler.Snapshot{
			Generation: stats.Generation,
			Image:      img,
			Frame:      s.camera.Frame(),
			Stats:      stats,
		}
		if err := sendFrameEvent(w, flusher, snap); err != nil {
			logs.Warn(err)
			return
		}
	}

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case snap, ok := <-frames:
			if !ok {
				sendSSEEvent(w, flusher, "complete", "scheduler closed")
				return
			}
			if err := sendFrameEvent(w, flusher, snap); err != nil {
				logs.Warn(err)
				return
			}
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func sendFrameEvent(w http.ResponseWriter, flusher http.Flusher, snap scheduler.Snapshot) error {
	event, err := newFrameEvent(snap)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.New("encoding frame event failed").Wrap(err)
	}

	sendSSEEvent(w, flusher, "frame", string(data))
	return nil
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}

func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.New("encoding png failed").Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
