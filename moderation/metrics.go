package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var warningsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warnbot_warnings_recorded_total",
	Help: "Number of warnings durably recorded",
})

var publishRollbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warnbot_publish_rollbacks_total",
	Help: "Number of warnings rolled back because the audit record could not be published",
})

var entriesCleared = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warnbot_entries_cleared_total",
	Help: "Number of ledger entries cleared",
}, []string{"type"})

var punishmentsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warnbot_punishments_applied_total",
	Help: "Number of punishment attempts by action and result",
}, []string{"action", "result"})

var mutesExpired = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warnbot_mutes_expired_total",
	Help: "Number of mute records removed on expiry",
})

var persistFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warnbot_persist_failures_total",
	Help: "Number of failed ledger saves",
})
