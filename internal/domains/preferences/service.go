package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xpanvictor/liveslides/pkg/Logger"
)

var ErrNotFound = errors.New("preferences not found")

// Repository stores the raw preferences blob. Load returns ErrNotFound when nothing
// has been saved yet.
type Repository interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
}

// Service returns preferences with defaults applied and persists every change.
type Service interface {
	Get(ctx context.Context) (Preferences, error)
	Update(ctx context.Context, req UpdateRequest) (Preferences, error)
	Subscribe(fn func(Preferences))
}

type service struct {
	repo     Repository
	defaults Preferences
	logger   *Logger.Logger

	mu        sync.Mutex
	listeners []func(Preferences)
}

func NewService(repo Repository, defaults Preferences, logger *Logger.Logger) Service {
	return &service{repo: repo, defaults: defaults, logger: logger}
}

// Get implements Service. A missing or unreadable blob yields the defaults.
func (s *service) Get(ctx context.Context) (Preferences, error) {
	p, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.defaults, nil
		}
		return s.defaults, fmt.Errorf("load preferences: %w", err)
	}
	return p.WithDefaults(s.defaults), nil
}

// Update implements Service.
func (s *service) Update(ctx context.Context, req UpdateRequest) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		s.logger.Warnf("preferences unreadable, starting from defaults: %v", err)
	}
	next := current.Apply(req).WithDefaults(s.defaults)
	if err := s.repo.Save(ctx, next); err != nil {
		return current, fmt.Errorf("save preferences: %w", err)
	}
	s.logger.Infof("preferences saved (model=%s theme=%s)", next.Model, next.Theme)

	for _, fn := range s.listeners {
		fn(next)
	}
	return next, nil
}

// Subscribe registers fn to run after every successful Update.
func (s *service) Subscribe(fn func(Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
