package crash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrDatasetUnavailable reports that the crash dataset could not be
// loaded. It is distinct from a query that simply finds no crashes.
var ErrDatasetUnavailable = errors.New("crash dataset unavailable")

// buildState tracks the index lifecycle.
type buildState int

const (
	stateUnbuilt buildState = iota
	stateBuilding
	stateReady
)

// ServiceConfig holds configuration for the crash proximity service.
type ServiceConfig struct {
	// DatasetPath is the CSV file holding historical crash records.
	DatasetPath string

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service owns the lazily built crash spatial index. The first query
// triggers the build; concurrent callers wait for the single builder
// rather than racing to load the dataset twice. Once built the index
// serves unlimited concurrent readers.
type Service struct {
	datasetPath string
	logger      zerolog.Logger

	mu       sync.Mutex
	state    buildState
	ready    chan struct{}
	index    *Index
	buildErr error
}

// NewService creates a crash proximity service. The dataset is not
// touched until the first query or an explicit Warm call.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		datasetPath: cfg.DatasetPath,
		logger:      cfg.Logger,
	}
}

// ensureIndex returns the ready index, building it on first use. A
// failed build is sticky until Rebuild.
func (s *Service) ensureIndex(ctx context.Context) (*Index, error) {
	s.mu.Lock()
	switch s.state {
	case stateReady:
		index, err := s.index, s.buildErr
		s.mu.Unlock()
		return index, err
	case stateBuilding:
		ready := s.ready
		s.mu.Unlock()
		select {
		case <-ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.mu.Lock()
		index, err := s.index, s.buildErr
		s.mu.Unlock()
		return index, err
	}

	// This caller builds.
	s.state = stateBuilding
	s.ready = make(chan struct{})
	s.mu.Unlock()

	index, err := s.build()

	s.mu.Lock()
	s.state = stateReady
	s.index = index
	s.buildErr = err
	close(s.ready)
	s.mu.Unlock()

	return index, err
}

func (s *Service) build() (*Index, error) {
	start := time.Now()
	records, err := LoadDataset(s.datasetPath)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.datasetPath).Msg("crash dataset load failed")
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	index := BuildIndex(records)
	s.logger.Info().
		Int("records", index.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("crash spatial index built")
	return index, nil
}

// Warm builds the index ahead of the first query.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.ensureIndex(ctx)
	return err
}

// Rebuild discards any built index so the next query reloads the
// dataset from disk.
func (s *Service) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateBuilding {
		return
	}
	s.state = stateUnbuilt
	s.ready = nil
	s.index = nil
	s.buildErr = nil
}

// CrashesNear finds crashes within thresholdMeters of each segment and
// aggregates per-leg summaries. maxPerSegment caps crashes returned
// per segment; zero or negative returns all matches.
func (s *Service) CrashesNear(ctx context.Context, segments []Segment, thresholdMeters float64, maxPerSegment int) (Result, error) {
	if thresholdMeters <= 0 {
		return Result{}, fmt.Errorf("threshold must be positive, got %g", thresholdMeters)
	}

	index, err := s.ensureIndex(ctx)
	if err != nil {
		return Result{}, err
	}

	return index.Query(segments, thresholdMeters, maxPerSegment), nil
}

// RecordCount reports the number of indexed crashes, building the
// index if needed.
func (s *Service) RecordCount(ctx context.Context) (int, error) {
	index, err := s.ensureIndex(ctx)
	if err != nil {
		return 0, err
	}
	return index.Len(), nil
}
