// Package server provides the interactive web viewer: it hosts the render
// loop, streams continuously-published snapshots to browsers over SSE, and
// accepts camera input that feeds back into accumulation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glint-render/glint/pkg/core"
	"github.com/glint-render/glint/pkg/engine"
	"github.com/glint-render/glint/pkg/scene"
	"github.com/glint-render/glint/pkg/sched"
	"github.com/glint-render/glint/pkg/tracer"
)

// Config configures the viewer server
type Config struct {
	Port            int
	Width           int     // Render viewport width
	Height          int     // Render viewport height
	SamplesPerFrame int     // Iterations accumulated per render-loop frame
	UpdateRate      float64 // Snapshot publishes (and SSE frames) per second
}

// DefaultConfig returns sensible viewer defaults
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		Width:           640,
		Height:          360,
		SamplesPerFrame: 1,
		UpdateRate:      30,
	}
}

// Server hosts the render loop and the HTTP API around it. It is the
// engine's Presenter: each frame the stage blits into the server, and SSE
// sessions encode the latest blit for their clients.
type Server struct {
	cfg    Config
	logger core.Logger

	pools  *sched.Manager
	tracer *tracer.PathTracer
	space  *scene.LinearSpace
	camera *scene.PinholeCamera
	stage  *engine.Stage

	// Latest blitted frame, shared between the render loop and SSE
	// sessions.
	frameMu sync.Mutex
	frame   []float32
	frameW  int
	frameH  int

	// Camera orbit state driven by the input endpoints
	orbitMu    sync.Mutex
	orbitYaw   float64
	orbitPitch float64
	orbitDist  float64
}

// New creates a viewer server around a fresh demo scene
func New(cfg Config, logger core.Logger) *Server {
	if logger == nil {
		logger = tracer.NewDefaultLogger()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultConfig()
		logger.Printf("server: invalid viewport %dx%d, using %dx%d\n",
			cfg.Width, cfg.Height, def.Width, def.Height)
		cfg.Width, cfg.Height = def.Width, def.Height
	}

	sc := scene.NewDemoScene()
	camera := sc.Camera().(*scene.PinholeCamera)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		pools:     sched.NewManager(),
		tracer:    tracer.NewPathTracer(logger),
		space:     scene.NewLinearSpace(sc),
		camera:    camera,
		orbitDist: 1.0,
	}
	s.stage = engine.NewStage(s.tracer, s.space, s.pools, cfg.SamplesPerFrame)
	return s
}

// BlitRGBFloat implements engine.Presenter
func (s *Server) BlitRGBFloat(pixels []float32, width, height int) {
	s.frameMu.Lock()
	s.frame = append(s.frame[:0], pixels...)
	s.frameW = width
	s.frameH = height
	s.frameMu.Unlock()
}

// Run starts the render loop and serves HTTP until the context is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.stage.Prepare()
	s.tracer.StartContinuousUpdates(s.cfg.UpdateRate)
	defer s.tracer.StopContinuousUpdates()
	defer s.pools.Shutdown()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()

	var loopDone sync.WaitGroup
	loopDone.Add(1)
	go func() {
		defer loopDone.Done()
		s.renderLoop(loopCtx)
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("viewer listening on http://localhost:%d\n", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		cancelLoop()
		loopDone.Wait()
		return err
	}

	cancelLoop()
	loopDone.Wait()
	return nil
}

// renderLoop traces frames back to back, each one accumulating further
// samples unless the camera moved. The stage blocks per frame until the
// tile batches drain, so cancellation is checked between frames.
func (s *Server) renderLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.stage.Compute(s, s.cfg.Width, s.cfg.Height)
	}
}

// Routes builds the HTTP API
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/stream", s.handleStream)
		r.Post("/camera", s.handleCamera)
		r.Post("/updates", s.handleUpdates)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// FrameEvent is one SSE payload: the current snapshot and its stats
type FrameEvent struct {
	ImageData string  `json:"imageData"` // Base64 encoded PNG
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Samples   float64 `json:"samples"` // Accumulated samples at the center pixel
	ElapsedMs int64   `json:"elapsedMs"`
}

// handleStream pushes the latest published frame to the client at the
// configured update rate until it disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := uuid.New().String()[:8]
	s.logger.Printf("stream %s: client connected\n", session)
	defer s.logger.Printf("stream %s: client disconnected\n", session)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	interval := time.Second / time.Duration(math.Max(s.cfg.UpdateRate, 1))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	started := time.Now()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			event, ok := s.currentFrameEvent(started)
			if !ok {
				continue // Nothing rendered yet
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.Printf("stream %s: marshal failed: %v\n", session, err)
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) currentFrameEvent(started time.Time) (FrameEvent, bool) {
	s.frameMu.Lock()
	width, height := s.frameW, s.frameH
	if width == 0 || height == 0 {
		s.frameMu.Unlock()
		return FrameEvent{}, false
	}
	pixels := make([]core.Vec3, width*height)
	for i := range pixels {
		pixels[i] = core.NewVec3(
			float64(s.frame[i*3+0]),
			float64(s.frame[i*3+1]),
			float64(s.frame[i*3+2]),
		)
	}
	s.frameMu.Unlock()

	encoded, err := encodePNGBase64(snapshotToImage(pixels, width, height))
	if err != nil {
		return FrameEvent{}, false
	}

	return FrameEvent{
		ImageData: encoded,
		Width:     width,
		Height:    height,
		Samples:   s.tracer.SampleCount(width/2, height/2),
		ElapsedMs: time.Since(started).Milliseconds(),
	}, true
}

// CameraRequest orbits the camera around the scene origin
type CameraRequest struct {
	Yaw      float64 `json:"yaw"`      // Radians around Y
	Pitch    float64 `json:"pitch"`    // Radians around X
	Distance float64 `json:"distance"` // Orbit radius, 0 keeps current
}

// handleCamera applies an orbit update. Accumulation resets on the next
// frame via the camera's change flag; no explicit reset call is needed.
func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	var req CameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.orbitMu.Lock()
	s.orbitYaw = req.Yaw
	s.orbitPitch = req.Pitch
	if req.Distance > 0 {
		s.orbitDist = req.Distance
	}
	yaw, pitch, dist := s.orbitYaw, s.orbitPitch, s.orbitDist
	s.orbitMu.Unlock()

	// Orbit around the demo scene's focus point at z=-1
	focus := core.NewVec3(0, 0, -1)
	offset := core.NewVec3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Multiply(dist)

	s.camera.Transform.SetPosition(focus.Add(offset))
	s.camera.Transform.SetOrientation(yaw, -pitch)

	w.WriteHeader(http.StatusNoContent)
}

// UpdatesRequest toggles continuous snapshot publication
type UpdatesRequest struct {
	Active bool    `json:"active"`
	Rate   float64 `json:"rate"` // Publishes per second; 0 keeps current
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	var req UpdatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Active {
		rate := req.Rate
		if rate <= 0 {
			rate = s.cfg.UpdateRate
		}
		s.tracer.StartContinuousUpdates(rate)
		s.tracer.SetUpdateRate(rate)
	} else {
		s.tracer.StopContinuousUpdates()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"active": s.tracer.ContinuousUpdatesActive()})
}
