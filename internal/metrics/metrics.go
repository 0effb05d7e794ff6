// Package metrics defines Prometheus collectors for the wallet login flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChallengesIssued counts login challenges handed out to wallets
	ChallengesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletsso_challenges_issued_total",
			Help: "Total number of login challenges issued",
		},
	)

	// Logins counts login verification attempts by outcome
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletsso_logins_total",
			Help: "Total number of wallet login attempts",
		},
		[]string{"outcome"},
	)

	// LoginDuration tracks end-to-end verification and session issuance time
	LoginDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "walletsso_login_duration_seconds",
			Help:    "Wallet login processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SessionPersistFailures counts logins where the session audit record
	// could not be written
	SessionPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletsso_session_persist_failures_total",
			Help: "Total number of session records that failed to persist",
		},
	)

	// AccountsProvisioned counts accounts auto-created on first wallet login
	AccountsProvisioned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletsso_accounts_provisioned_total",
			Help: "Total number of accounts provisioned via wallet login",
		},
	)
)

// LoginOutcome label values for the Logins counter.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalidSignature  = "invalid_signature"
	OutcomeSignatureMismatch = "signature_mismatch"
	OutcomeNoChallenge       = "no_challenge"
	OutcomeChallengeExpired  = "challenge_expired"
	OutcomeAccountDisabled   = "account_disabled"
	OutcomeError             = "error"
)
