package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		eventsCreatedTotal,
		eventsCancelledTotal,
		joinsTotal,
		leavesTotal,
		waitlistPromotionsTotal,
	)
}

var (
	eventsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_created_total",
			Help: "Events created, labeled by origin.",
		},
		[]string{"origin"}, // 'manual', 'scaffold'
	)

	eventsCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_cancelled_total",
			Help: "Events cancelled by their creator or an admin.",
		},
	)

	joinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_joins_total",
			Help: "Join attempts that stuck, labeled by resulting status.",
		},
		[]string{"status"}, // 'joined', 'waitlisted'
	)

	leavesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_leaves_total",
			Help: "Participants who left an event.",
		},
	)

	waitlistPromotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_waitlist_promotions_total",
			Help: "Waitlisted participants promoted to a free seat.",
		},
	)
)

func IncEventCreated(origin string) { eventsCreatedTotal.WithLabelValues(norm(origin)).Inc() }
func IncEventCancelled()            { eventsCancelledTotal.Inc() }
func IncJoin(status string)         { joinsTotal.WithLabelValues(norm(status)).Inc() }
func IncLeave()                     { leavesTotal.Inc() }
func IncWaitlistPromotion()         { waitlistPromotionsTotal.Inc() }
