// Package server implements the HTTP lookup service.
//
// GET /{uid} answers with one of:
//
//	200 {"found": true, "bindingPhrase": "..."}
//	200 {"found": false}
//	400 {"error": "Malformed uid"}
//	500 {"error": "Server error"}   (stored phrase is not valid UTF-8)
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tamirms/uidtable"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// Server answers UID lookups from a table loaded before it starts.
// The table is only read, so handlers share it without locking.
type Server struct {
	table  *uidtable.Table
	digest uint64
	log    *zap.Logger
}

// New returns a server for table. A nil log discards request logs.
func New(table *uidtable.Table, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		table:  table,
		digest: table.Digest(),
		log:    log,
	}
}

// Handler returns the service's routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.serveIndex)
	mux.HandleFunc("GET /{uid}", s.serveLookup)
	return s.logRequests(mux)
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("serving", zap.String("addr", addr), zap.Int("entries", s.table.Len()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	s.log.Info("signal received, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// lookupResponse is one of three shapes: found with a phrase (which may be
// empty), not found, or an error. Nil pointers are omitted.
type lookupResponse struct {
	Found         *bool   `json:"found,omitempty"`
	BindingPhrase *string `json:"bindingPhrase,omitempty"`
	Error         string  `json:"error,omitempty"`
}

func (s *Server) serveLookup(w http.ResponseWriter, req *http.Request) {
	raw := req.PathValue("uid")
	uid, err := uidtable.ParseUID(raw)
	if err != nil {
		s.writeJSON(w, req, http.StatusBadRequest, lookupResponse{Error: "Malformed uid"})
		return
	}

	phrase, found, err := s.table.FindString(uid)
	if err != nil {
		s.log.Error("stored phrase is not text", zap.Stringer("uid", uid), zap.Error(err))
		s.writeJSON(w, req, http.StatusInternalServerError, lookupResponse{Error: "Server error"})
		return
	}
	rsp := lookupResponse{Found: &found}
	if found {
		rsp.BindingPhrase = &phrase
	}
	s.writeJSON(w, req, http.StatusOK, rsp)
}

// writeJSON writes rsp with an ETag derived from the table and the body.
// Successful responses only change when the table does, so clients may
// revalidate with If-None-Match.
func (s *Server) writeJSON(w http.ResponseWriter, req *http.Request, code int, rsp lookupResponse) {
	body, err := json.Marshal(rsp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Content-Type", "application/json")
	if code == http.StatusOK {
		etag := strconv.Quote(strconv.FormatUint(xxh3.HashSeed(body, s.digest), 16))
		h.Set("ETag", etag)
		if match := req.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(code)
	w.Write(body)
}

func (s *Server) serveIndex(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>ExpressLRS UID Lookup</title>
</head>
<body>
<h1>ExpressLRS UID Lookup</h1>
<p>Attempts to find an <a href="https://expresslrs.org">ExpressLRS</a> binding phrase for a given uid.</p>
<p>Example: <a href="/65,245,33,230,58,226">/65,245,33,230,58,226</a></p>
</body>
</html>
`

// statusRecorder captures the response code for request logs.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, req)
		s.log.Debug("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.code),
			zap.Duration("duration", time.Since(start)))
	})
}
