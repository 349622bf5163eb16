// Package metrics records manager operations as prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespaceName    = "cloudkeeper"
	subsystemManager = "manager"
)

// Operation labels
const (
	OpGetByID   = "get_by_id"
	OpGetByName = "get_by_name"
	OpGetAll    = "get_all"
	OpCreate    = "create"
	OpDelete    = "delete"
)

// Recorder holds the manager metrics
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder creates the manager metrics and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceName,
				Subsystem: subsystemManager,
				Name:      "operations_total",
				Help:      "Total number of manager operations by kind, operation and result.",
			},
			[]string{"kind", "operation", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespaceName,
				Subsystem: subsystemManager,
				Name:      "operation_duration_seconds",
				Help:      "Duration of manager operations by kind and operation.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "operation"},
		),
	}

	reg.MustRegister(r.operations)
	reg.MustRegister(r.duration)
	return r
}

// Observe records one operation that started at start and ended with err
func (r *Recorder) Observe(kind cr.Kind, operation string, start time.Time, err error) {
	r.operations.WithLabelValues(string(kind), operation, Result(err)).Inc()
	r.duration.WithLabelValues(string(kind), operation).Observe(time.Since(start).Seconds())
}

// Result returns the result label for err
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, cr.ErrItemNotFound), errors.Is(err, cr.ErrNotFound):
		return "not_found"
	case errors.Is(err, cr.ErrAmbiguous):
		return "ambiguous"
	case errors.Is(err, cr.ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, cr.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, cr.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, cr.ErrUnsupportedOperation):
		return "unsupported"
	default:
		return "error"
	}
}

// Instrument returns m with every operation recorded by r. A nil recorder
// returns m unchanged.
func Instrument[T cr.Item](m cr.Manager[T], r *Recorder) cr.Manager[T] {
	if r == nil {
		return m
	}
	return &instrumented[T]{Manager: m, recorder: r}
}

type instrumented[T cr.Item] struct {
	cr.Manager[T]
	recorder *Recorder
}

func (i *instrumented[T]) GetByID(ctx context.Context, id string) (item T, ok bool, err error) {
	defer i.observe(OpGetByID, time.Now(), &err)
	return i.Manager.GetByID(ctx, id)
}

func (i *instrumented[T]) GetByName(ctx context.Context, name string) (items []T, err error) {
	defer i.observe(OpGetByName, time.Now(), &err)
	return i.Manager.GetByName(ctx, name)
}

func (i *instrumented[T]) GetAll(ctx context.Context) (items []T, err error) {
	defer i.observe(OpGetAll, time.Now(), &err)
	return i.Manager.GetAll(ctx)
}

func (i *instrumented[T]) Create(ctx context.Context, model T) (item T, err error) {
	defer i.observe(OpCreate, time.Now(), &err)
	return i.Manager.Create(ctx, model)
}

func (i *instrumented[T]) Delete(ctx context.Context, target cr.DeleteTarget) (err error) {
	defer i.observe(OpDelete, time.Now(), &err)
	return i.Manager.Delete(ctx, target)
}

func (i *instrumented[T]) observe(operation string, start time.Time, err *error) {
	i.recorder.Observe(i.ItemType(), operation, start, *err)
}
