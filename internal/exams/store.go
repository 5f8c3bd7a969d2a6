// ABOUTME: Exam store caching the exam list and the exam being viewed
// ABOUTME: Tracks an in-flight loading flag and an optional exam detail cache

package exams

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/waynezhang680/examctl/internal/cache"
	"github.com/waynezhang680/examctl/internal/models"
)

// API is the subset of the platform client the store needs
type API interface {
	ListExams(ctx context.Context, page, limit int) (*models.ExamList, error)
	GetExam(ctx context.Context, id int64) (*models.Exam, error)
	StartExam(ctx context.Context, id int64) (*models.Exam, error)
}

// Page identifies a page of the exam list
type Page struct {
	Number int
	Limit  int
}

// Store fetches exams and caches the latest results
type Store struct {
	api    API
	logger *slog.Logger

	mu       sync.RWMutex
	inFlight int
	list     *models.ExamList
	page     Page
	current  *models.Exam

	details *cache.Cache[int64, models.Exam]
}

// Option configures a Store
type Option func(*Store)

// WithDetailTTL serves exam details from a cache for ttl. Listed and started
// exams are cached as well. Zero disables the cache.
func WithDetailTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.details = cache.New[int64, models.Exam](ttl, s.logger)
		}
	}
}

// NewStore creates an exam store backed by api
func NewStore(api API, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{api: api, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loading reports whether any fetch is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// List returns the cached exam list and the page it came from
func (s *Store) List() (*models.ExamList, Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list, s.page, s.list != nil
}

// Current returns the cached exam from the last detail fetch or start
func (s *Store) Current() (*models.Exam, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// FetchExams loads one page of exams. The cache keeps the previous page on error.
func (s *Store) FetchExams(ctx context.Context, page, limit int) (*models.ExamList, error) {
	done := s.begin()
	defer done()

	list, err := s.api.ListExams(ctx, page, limit)
	if err != nil {
		s.logger.Debug("Fetching exams failed", "page", page, "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.list = list
	s.page = Page{Number: page, Limit: limit}
	s.mu.Unlock()

	if s.details != nil {
		for _, exam := range list.Exams {
			s.details.Set(exam.ID, exam)
		}
	}
	return list, nil
}

// ExamDetails loads one exam and makes it current
func (s *Store) ExamDetails(ctx context.Context, id int64) (*models.Exam, error) {
	if s.details != nil {
		if exam, ok := s.details.Get(id); ok {
			s.mu.Lock()
			s.current = &exam
			s.mu.Unlock()
			return &exam, nil
		}
	}

	done := s.begin()
	defer done()

	exam, err := s.api.GetExam(ctx, id)
	if err != nil {
		s.logger.Debug("Fetching exam failed", "id", id, "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.current = exam
	s.mu.Unlock()
	s.remember(exam)
	return exam, nil
}

// Invalidate drops the cached details for id so the next lookup refetches
func (s *Store) Invalidate(id int64) {
	if s.details != nil {
		s.details.Delete(id)
	}
}

// StartExam starts an exam and updates both the current exam and the cached list
func (s *Store) StartExam(ctx context.Context, id int64) (*models.Exam, error) {
	done := s.begin()
	defer done()

	exam, err := s.api.StartExam(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Exam started", "id", id)

	s.mu.Lock()
	s.current = exam
	if s.list != nil {
		updated := make([]models.Exam, len(s.list.Exams))
		copy(updated, s.list.Exams)
		for i := range updated {
			if updated[i].ID == exam.ID {
				updated[i] = *exam
			}
		}
		s.list = &models.ExamList{Exams: updated, Total: s.list.Total}
	}
	s.mu.Unlock()
	s.remember(exam)
	return exam, nil
}

// Reset drops cached results, as after logout
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
	s.page = Page{}
	s.current = nil
	if s.details != nil {
		s.details.Clear()
	}
}

func (s *Store) remember(exam *models.Exam) {
	if s.details != nil {
		s.details.Set(exam.ID, *exam)
	}
}

func (s *Store) begin() func() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}
}
