package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(commandRunsTotal) }

var commandRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "command_runs_total",
		Help: "Command executions by command key and outcome.",
	},
	// outcome: 'completed', 'rejected', 'cancelled', 'expired', 'busy', 'error'
	[]string{"command", "outcome"},
)

func IncCommandRun(command, outcome string) {
	commandRunsTotal.WithLabelValues(norm(command), norm(outcome)).Inc()
}
