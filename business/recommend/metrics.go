package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GroupsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_groups_generated_total",
			Help: "Count of generated recommendation groups by flow and exam type.",
		},
		[]string{"flow", "exam_type"},
	)

	EmptyGroupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_empty_groups_total",
			Help: "Count of requests that degraded to an empty recommendation group.",
		},
		[]string{"flow"},
	)
)

func init() {
	prometheus.MustRegister(GroupsGeneratedTotal, EmptyGroupsTotal)
}
