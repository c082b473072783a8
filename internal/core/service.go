package core

import (
	"context"
	"errors"
	"net/url"
	"time"

	"zookeeper/internal/logging"
	"zookeeper/pkg/domain"
)

// Logger is the structured logging surface used by the service. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ServiceOption customizes a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger  Logger
	metrics MetricsRecorder
	now     func() time.Time
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		logger:  logging.Discard(),
		metrics: noopMetrics{},
		now:     time.Now,
	}
}

// WithLogger sets the service logger.
func WithLogger(l Logger) ServiceOption {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsRecorder sets the recorder observing every operation.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock overrides the time source used for operation durations.
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Service exposes the read, lookup and create operations over a Store.
type Service struct {
	store *Store
	opts  serviceOptions
}

// NewService constructs a service backed by the supplied store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Service{store: store, opts: o}
	s.reportSize()
	return s
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// ListAnimals returns the animals matching criteria, in collection order.
func (s *Service) ListAnimals(ctx context.Context, criteria domain.Criteria) []domain.Animal {
	var out []domain.Animal
	_ = s.run(ctx, "list_animals", func() error {
		out = s.store.Query(criteria)
		return nil
	})
	return out
}

// GetAnimal returns the animal with id or domain.ErrNotFound.
func (s *Service) GetAnimal(ctx context.Context, id string) (domain.Animal, error) {
	var out domain.Animal
	err := s.run(ctx, "get_animal", func() error {
		a, ok := s.store.FindByID(id)
		if !ok {
			return domain.ErrNotFound{ID: id}
		}
		out = a
		return nil
	})
	return out, err
}

// CreateAnimal appends a validated animal and returns it with its assigned id.
func (s *Service) CreateAnimal(ctx context.Context, candidate domain.NewAnimal) (domain.Animal, error) {
	return s.create(ctx, func() (domain.NewAnimal, error) { return candidate, nil })
}

// CreateAnimalJSON validates a raw JSON payload and appends it.
func (s *Service) CreateAnimalJSON(ctx context.Context, payload []byte) (domain.Animal, error) {
	return s.create(ctx, func() (domain.NewAnimal, error) { return domain.DecodeAnimal(payload) })
}

// CreateAnimalForm validates a form-urlencoded body and appends it.
func (s *Service) CreateAnimalForm(ctx context.Context, body []byte) (domain.Animal, error) {
	return s.create(ctx, func() (domain.NewAnimal, error) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return domain.NewAnimal{}, &domain.ValidationError{Fields: []domain.FieldError{
				{Field: domain.RootField, Reason: "malformed form body"},
			}}
		}
		return domain.AnimalFromValues(values)
	})
}

// create decodes and appends under a single create_animal observation, so a
// rejected payload is recorded like any other client error.
func (s *Service) create(ctx context.Context, decode func() (domain.NewAnimal, error)) (domain.Animal, error) {
	var out domain.Animal
	err := s.run(ctx, "create_animal", func() error {
		candidate, err := decode()
		if err != nil {
			return err
		}
		a, err := s.store.Append(ctx, candidate)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err == nil {
		s.opts.logger.Info("animal created", "id", out.ID, "name", out.Name, "species", out.Species)
		s.reportSize()
	}
	return out, err
}

func (s *Service) run(ctx context.Context, op string, fn func() error) error {
	start := s.opts.now()
	err := fn()
	elapsed := s.opts.now().Sub(start)
	s.opts.metrics.Observe(ctx, op, err == nil || isClientError(err), elapsed)
	switch {
	case err == nil:
		s.opts.logger.Debug("operation complete", "op", op, "duration", elapsed)
	case isClientError(err):
		s.opts.logger.Debug("operation rejected", "op", op, "error", err)
	default:
		s.opts.logger.Error("operation failed", "op", op, "error", err)
	}
	return err
}

func (s *Service) reportSize() {
	if so, ok := s.opts.metrics.(sizeObserver); ok {
		so.SetAnimals(s.store.Len())
	}
}

func isClientError(err error) bool {
	var nf domain.ErrNotFound
	var ve *domain.ValidationError
	return errors.As(err, &nf) || errors.As(err, &ve)
}
