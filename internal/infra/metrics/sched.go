package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		schedulerJobRunsTotal,
		eventsMaterializedTotal,
		eventsFinishedTotal,
		remindersSentTotal,
		reminderTasksTotal,
	)
}

var (
	schedulerJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Cron job executions by job name and result.",
		},
		[]string{"job", "result"}, // result: 'ok', 'skipped', 'error'
	)

	eventsMaterializedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_materialized_total",
			Help: "Events created from recurring templates by the scheduler.",
		},
	)

	eventsFinishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_finished_total",
			Help: "Past events flipped to finished by the scheduler.",
		},
	)

	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Reminder messages sent, labeled by audience.",
		},
		[]string{"audience"}, // 'group', 'participant'
	)

	reminderTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_tasks_total",
			Help: "Reminder fan-out tasks processed by the worker pool.",
		},
		[]string{"status"}, // 'completed', 'failed', 'dropped'
	)
)

func IncSchedulerRun(job, result string) {
	schedulerJobRunsTotal.WithLabelValues(norm(job), norm(result)).Inc()
}

func AddEventsMaterialized(n int) { eventsMaterializedTotal.Add(float64(n)) }
func AddEventsFinished(n int)     { eventsFinishedTotal.Add(float64(n)) }

func IncReminderSent(audience string) { remindersSentTotal.WithLabelValues(norm(audience)).Inc() }
func IncReminderTask(status string)   { reminderTasksTotal.WithLabelValues(norm(status)).Inc() }
