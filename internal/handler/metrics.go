package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fable_stories_created_total",
		Help: "Total number of stories created.",
	})

	storiesPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fable_stories_published_total",
		Help: "Total number of successful story publications.",
	})

	playsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fable_plays_started_total",
		Help: "Total number of playthroughs started.",
	})

	playsFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fable_plays_finished_total",
		Help: "Total number of playthroughs finished.",
	})

	ratingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fable_ratings_total",
		Help: "Total number of ratings recorded.",
	})

	reportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fable_reports_total",
		Help: "Total number of moderation reports filed.",
	})
)
