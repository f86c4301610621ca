package worker

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tumord/internal/classifier"
	"tumord/internal/config"
	"tumord/internal/httpapi"
	"tumord/internal/telemetry"
)

// Run executes one worker process end to end: load the model handle, warm it
// up, bind the listener and serve until ctx is canceled. The handle is loaded
// before the listener exists; any load failure returns an error and the
// process never accepts a request.
func Run(ctx context.Context, cfg config.Config, workerID string, log zerolog.Logger) error {
	log = log.With().Str("worker_id", workerID).Logger()

	start := time.Now()
	handle, err := classifier.Load(classifier.LoadConfig{
		ModelPath:    cfg.ModelPath,
		Architecture: cfg.Architecture,
		Labels:       cfg.Labels,
		LibraryPath:  cfg.OnnxLibrary,
		InferTimeout: time.Duration(cfg.InferTimeoutSec) * time.Second,
	})
	if err != nil {
		log.Error().Err(err).
			Str("model_path", cfg.ModelPath).
			Str("architecture", cfg.Architecture).
			Msg("model load failed, refusing to serve")
		telemetry.CaptureFatal(err)
		return err
	}
	defer handle.Close()
	log.Info().
		Str("model_path", handle.Path()).
		Str("architecture", handle.Architecture()).
		Strs("labels", handle.Labels()).
		Dur("load_time", time.Since(start)).
		Msg("model loaded")

	if err := handle.Warmup(ctx); err != nil {
		log.Error().Err(err).Msg("warmup pass failed, refusing to serve")
		telemetry.CaptureFatal(err)
		return err
	}

	httpapi.SetLogger(log)
	httpapi.SetMaxUploadBytes(cfg.MaxUploadBytes)
	httpapi.SetCORSEnabled(cfg.CORSEnabled)

	svc := NewService(handle, workerID, cfg.MaxUploadBytes)
	srv := &http.Server{
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := Listen(ctx, cfg.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Addr).Msg("bind failed")
		return err
	}
	log.Info().Str("addr", cfg.Addr).Msg("worker serving")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown incomplete")
	}
	telemetry.Flush()
	log.Info().Msg("worker stopped")
	return nil
}
