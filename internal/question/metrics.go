package question

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	claimOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tortaquiz",
		Name:      "claim_attempts_total",
		Help:      "Claim attempts by outcome (hit, empty, conflict, exhausted).",
	}, []string{"outcome"})

	generatedQuestions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tortaquiz",
		Name:      "generated_questions_total",
		Help:      "Deduplicated questions persisted by batch generation.",
	})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tortaquiz",
		Name:      "generation_failures_total",
		Help:      "Batch generation failures by kind.",
	}, []string{"kind"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tortaquiz",
		Name:      "generation_duration_seconds",
		Help:      "Latency of a full batch generation (prompt, completion, parse, insert).",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})
)
