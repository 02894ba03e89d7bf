package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the symptom checker collectors.
type Metrics struct {
	NodeVisits      *prometheus.CounterVec
	Results         *prometheus.CounterVec
	Fallbacks       *prometheus.CounterVec
	LanguageChanges *prometheus.CounterVec
	Handoffs        *prometheus.CounterVec
	PathDepth       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminex",
			Name:      "node_visits_total",
			Help:      "Questions presented, by node key.",
		}, []string{"node", "symptom"}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminex",
			Name:      "results_total",
			Help:      "Recommendations reached, by result and branch.",
		}, []string{"result", "branch", "urgent"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminex",
			Name:      "fallbacks_total",
			Help:      "Unresolvable keys replaced by the generic recommendation.",
		}, []string{"language"}),
		LanguageChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminex",
			Name:      "language_changes_total",
			Help:      "Language switches, by target language and phase.",
		}, []string{"to", "phase"}),
		Handoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminex",
			Name:      "handoffs_total",
			Help:      "Booking hand-offs, by branch.",
		}, []string{"branch"}),
		PathDepth: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "luminex",
			Name:      "node_depth",
			Help:      "Position of the entered node on the answer path (1 for the first question).",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}, []string{"symptom"}),
	}

	for _, c := range []prometheus.Collector{m.NodeVisits, m.Results, m.Fallbacks, m.LanguageChanges, m.Handoffs, m.PathDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record every event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeKey, e.Symptom).Inc()
			m.PathDepth.WithLabelValues(e.Symptom).Observe(float64(e.Depth))
		},
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			m.Results.WithLabelValues(e.ResultID, e.BranchID, strconv.FormatBool(e.Urgent)).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.FallbackEvent) {
			m.Fallbacks.WithLabelValues(string(e.Language)).Inc()
		},
		OnLanguageChange: func(_ context.Context, e *domain.LanguageEvent) {
			m.LanguageChanges.WithLabelValues(string(e.To), string(e.Phase)).Inc()
		},
		OnHandoff: func(_ context.Context, e *domain.HandoffEvent) {
			m.Handoffs.WithLabelValues(e.Handoff.BranchID).Inc()
		},
	}
}

// Handler serves the collectors of g in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
