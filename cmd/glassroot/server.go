package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/config"
	"github.com/glassroot/glassroot/internal/documents"
	"github.com/glassroot/glassroot/internal/embedding"
	"github.com/glassroot/glassroot/internal/server"
	"github.com/glassroot/glassroot/internal/storage"
	"github.com/glassroot/glassroot/internal/vector"
	"github.com/glassroot/glassroot/pkg/utils"
)

func (a *app) serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the edge API server",
		Args:  cobra.NoArgs,
		RunE:  a.runServer,
	}
}

func (a *app) runServer(cmd *cobra.Command, _ []string) error {
	debug := a.debugMode()
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", a.resolvedPath),
		zap.Bool("debug", debug),
	)

	components, err := initializeComponents(cmd.Context(), a.cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Close()
	components.logStatus(cmd.Context(), a.cfg, logger)

	srv := server.NewServer(components.Documents, &a.cfg.Server, logger)
	errc := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	components.SaveIndex(a.cfg.Vector.IndexPath, logger)
	return nil
}

// Components holds initialized services. Storage is always present; the vector index and
// embedder are nil when their bindings are configured as "none".
type Components struct {
	Storage     storage.Storage
	Embedder    embedding.Embedder
	VectorIndex vector.VectorIndex
	Documents   *documents.Service
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
}

// SaveIndex persists a local vector index to path. Remote indexes are left alone.
func (c *Components) SaveIndex(path string, logger *zap.Logger) {
	p, ok := c.VectorIndex.(vector.Persister)
	if !ok || path == "" {
		return
	}
	if err := p.Save(path); err != nil {
		logger.Warn("vector index save failed", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("vector index saved", zap.String("path", path))
}

func (c *Components) logStatus(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("database", cfg.Storage.DatabasePath),
		zap.String("index_type", cfg.Vector.IndexType),
		zap.String("embedding_type", cfg.Embedding.Type),
		zap.Any("bindings", c.Documents.Bindings()),
	}
	if n, err := c.Storage.CountDocuments(ctx); err == nil {
		fields = append(fields, zap.Int64("documents", n))
	}
	if c.VectorIndex != nil {
		if n, err := c.VectorIndex.Count(ctx); err == nil {
			fields = append(fields, zap.Int64("vectors", n))
		}
	}
	if size, err := storage.Footprint(cfg.Storage.DatabasePath, cfg.Vector.IndexPath); err == nil {
		fields = append(fields, zap.Int64("disk_bytes", size))
	}
	logger.Info("storage ready", fields...)
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c := &Components{Storage: store}

	c.Embedder, err = embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	c.VectorIndex, err = vector.NewVectorIndex(ctx, cfg.Vector)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Info("vector index initialized", zap.String("type", cfg.Vector.IndexType))

	c.Documents = documents.NewService(store, c.VectorIndex, c.Embedder,
		documents.WithLogger(logger),
		documents.WithMinDimensions(cfg.Embedding.MinDimensions),
	)
	return c, nil
}
