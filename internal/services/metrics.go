package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

var (
	// votesApplied counts committed votes by direction and outcome
	// ("new" for a first vote, "switched" for a change of direction).
	votesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_votes_applied_total",
			Help: "Votes committed, by direction and outcome.",
		},
		[]string{"direction", "outcome"},
	)

	// questionTransitions counts lifecycle transitions by target status.
	questionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_question_transitions_total",
			Help: "Question lifecycle transitions, by resulting status.",
		},
		[]string{"status"},
	)

	// chatRequestsResolved counts chat requests leaving pending, by outcome.
	chatRequestsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_chat_requests_resolved_total",
			Help: "Chat requests resolved, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(votesApplied, questionTransitions, chatRequestsResolved)
}

// startSpan opens a span on the named service tracer.
func startSpan(ctx context.Context, service, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("services/"+service).Start(ctx, op, trace.WithAttributes(attrs...))
}

// endSpan records err on span (if any) and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// isAdmin resolves the caller's role inside the current transaction.
// Anonymous (0) and unknown callers are never admins.
func isAdmin(ctx context.Context, db *gorm.DB, callerID uint) (bool, error) {
	if callerID == 0 {
		return false, nil
	}
	role, err := repo.GetUserRole(ctx, db, callerID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return role == domain.RoleAdmin, nil
}
