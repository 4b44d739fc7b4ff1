// Package debugserver exposes the codec over HTTP for local debugging.
//
// Routes:
//
//	GET  /healthz      liveness
//	GET  /metrics      Prometheus exposition
//	GET  /v1/ops       opcode registry
//	GET  /v1/ops/{op}  one registry entry
//	POST /v1/encode    JSON description in, frame out (?compressed=1)
//	POST /v1/inspect   raw frame bytes in, frame summary out
package debugserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/internal/msgjson"
	"github.com/vango-dev/peerwire/pkg/message"
)

// DefaultMaxBody caps request bodies.
const DefaultMaxBody = 4 << 20

// Options configures a Server.
type Options struct {
	// Codec encodes request descriptions. Defaults to message.NewCodec().
	Codec *message.Codec

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger receives request logs. Defaults to zap.NewNop().
	Logger *zap.Logger

	// MaxBody caps request bodies. Defaults to DefaultMaxBody.
	MaxBody int64
}

// Server is the debug HTTP server.
type Server struct {
	codec    *message.Codec
	gatherer prometheus.Gatherer
	log      *zap.Logger
	maxBody  int64
	router   chi.Router
}

// New creates a Server and builds its routes.
func New(opts Options) *Server {
	s := &Server{
		codec:    opts.Codec,
		gatherer: opts.Gatherer,
		log:      opts.Logger,
		maxBody:  opts.MaxBody,
	}
	if s.codec == nil {
		s.codec = message.NewCodec()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBody
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ops", s.handleOps)
		r.Get("/ops/{op}", s.handleOp)
		r.Post("/encode", s.handleEncode)
		r.Post("/inspect", s.handleInspect)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Info("debug server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// OpInfo is one registry row.
type OpInfo struct {
	Name         string `json:"name"`
	Code         uint8  `json:"code"`
	Wire         bool   `json:"wire"`
	Compressible bool   `json:"compressible"`
}

func opInfo(op message.Op) OpInfo {
	return OpInfo{
		Name:         op.String(),
		Code:         uint8(op),
		Wire:         !op.IsInternal(),
		Compressible: op.Compressible(),
	}
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	ops := message.Ops()
	out := make([]OpInfo, 0, len(ops))
	for _, op := range ops {
		out = append(out, opInfo(op))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request) {
	op, err := message.Lookup(chi.URLParam(r, "op"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, errors.Classify(err, "PW010"))
		return
	}
	writeJSON(w, http.StatusOK, opInfo(op))
}

// EncodeResponse is the body returned by /v1/encode.
type EncodeResponse struct {
	Op    string `json:"op"`
	Mode  string `json:"mode"`
	Bytes int    `json:"bytes"`
	Frame string `json:"frame"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	mode := message.Plain
	if v := r.URL.Query().Get("compressed"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest,
				errors.New("PW040").WithDetail("compressed must be a boolean, got "+strconv.Quote(v)))
			return
		}
		if on {
			mode = message.Compressed
		}
	}

	m, err := msgjson.Decode(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Classify(err, "PW016"))
		return
	}

	frame, err := s.codec.Encode(m, mode)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, errors.Classify(err, "PW012"))
		return
	}

	writeJSON(w, http.StatusOK, EncodeResponse{
		Op:    m.Op().String(),
		Mode:  mode.String(),
		Bytes: len(frame),
		Frame: hex.EncodeToString(frame),
	})
}

// InspectResponse is the body returned by /v1/inspect.
type InspectResponse struct {
	Op           string `json:"op"`
	Code         uint8  `json:"code"`
	BodyLen      int    `json:"bodyLen"`
	Compressible bool   `json:"compressible"`
	Compressed   bool   `json:"compressed"`
	WireFieldLen int    `json:"wireFieldLen"`
	FieldLen     int    `json:"fieldLen"`
	Fields       string `json:"fields"`
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	frame, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, errors.New("PW021").Wrap(err))
		return
	}

	info, err := message.Inspect(frame)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Classify(err, "PW020"))
		return
	}

	writeJSON(w, http.StatusOK, InspectResponse{
		Op:           info.Op.String(),
		Code:         uint8(info.Op),
		BodyLen:      info.BodyLen,
		Compressible: info.Compressible,
		Compressed:   info.Compressed,
		WireFieldLen: info.WireFieldLen,
		FieldLen:     len(info.Fields),
		Fields:       hex.EncodeToString(info.Fields),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *errors.PeerwireError) {
	s.log.Debug("request failed", zap.String("code", err.Code), zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, err.FormatJSON())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
