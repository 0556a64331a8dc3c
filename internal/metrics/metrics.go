// Package metrics exposes Prometheus counters for storage and scale events.
//
// The counters are registered on the default registry so a host process can
// serve them with promhttp without further wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StorageDetaches counts private copies made because storage was shared.
	StorageDetaches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itensor_storage_detach_total",
		Help: "Total storage clones made before mutating shared storage",
	})

	// StoragePromotions counts storage kind changes by source and target kind.
	StoragePromotions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itensor_storage_promotion_total",
		Help: "Total storage kind promotions by source and target kind",
	}, []string{"from", "to"})

	// ZeroCollapses counts storages replaced by exact-zero storage.
	ZeroCollapses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itensor_zero_collapse_total",
		Help: "Total storages collapsed to exact-zero storage",
	})

	// ScaleFolds counts scale factors folded back into storage.
	ScaleFolds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itensor_scale_fold_total",
		Help: "Total scale factor folds by reason",
	}, []string{"reason"})
)

// Fold reasons.
const (
	FoldScaleTo  = "scale_to"
	FoldOutNorm  = "out_norm"
	FoldMutation = "mutation"
)

// Promotion records a storage kind change.
func Promotion(from, to string) {
	StoragePromotions.WithLabelValues(from, to).Inc()
}
