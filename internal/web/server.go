// Package web serves the encrypt/decrypt API and the ciphertext vault over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dcrodman/bfcrypt/internal/core"
	"github.com/dcrodman/bfcrypt/internal/keycache"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end. DB may be nil, in which case the vault routes
// are not registered.
type Server struct {
	Config  *core.Config
	Logger  *logrus.Logger
	Ciphers *keycache.Cache
	DB      *gorm.DB
}

// Handler builds the router for all of the server's endpoints.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/api/encrypt", s.handleEncrypt).Methods(http.MethodPost)
	router.HandleFunc("/api/decrypt", s.handleDecrypt).Methods(http.MethodPost)

	if s.DB != nil {
		router.HandleFunc("/api/ciphertexts", s.handleListCiphertexts).Methods(http.MethodGet)
		router.HandleFunc("/api/ciphertexts", s.handleSaveCiphertext).Methods(http.MethodPost)
		router.HandleFunc("/api/ciphertexts/{name}", s.handleGetCiphertext).Methods(http.MethodGet)
		router.HandleFunc("/api/ciphertexts/{name}", s.handleDeleteCiphertext).Methods(http.MethodDelete)
	}
	return router
}

// Start listens on the configured address until ctx is canceled, then shuts
// the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Config.WebAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("HTTP server listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.Logger.Info("HTTP server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests records the method, path, status and latency of each request.
// Bodies are never logged since they carry keys and plaintext.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.Logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("handled request")
	})
}
