package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		conversationPromptsTotal,
		conversationRepromptsTotal,
		conversationEndsTotal,
		conversationsActive,
	)
}

var (
	conversationPromptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_prompts_total",
			Help: "Field prompts sent to users, labeled by field name.",
		},
		[]string{"field"},
	)

	conversationRepromptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_reprompts_total",
			Help: "Prompts re-sent after invalid input, labeled by field name.",
		},
		[]string{"field"},
	)

	conversationEndsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_ends_total",
			Help: "Finished field collections by reason.",
		},
		[]string{"reason"}, // 'resolved', 'cancelled', 'expired'
	)

	activeFn atomic.Value // func() int

	conversationsActive = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Users currently suspended on a prompt.",
		},
		func() float64 {
			if fn, ok := activeFn.Load().(func() int); ok && fn != nil {
				return float64(fn())
			}
			return 0
		},
	)
)

func IncConversationPrompt(field string)   { conversationPromptsTotal.WithLabelValues(norm(field)).Inc() }
func IncConversationReprompt(field string) { conversationRepromptsTotal.WithLabelValues(norm(field)).Inc() }
func IncConversationEnd(reason string)     { conversationEndsTotal.WithLabelValues(norm(reason)).Inc() }

// SetConversationActiveFn wires the live count, typically the engine's Count.
func SetConversationActiveFn(fn func() int) { activeFn.Store(fn) }
