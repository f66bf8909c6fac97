package middleware

import (
	"net/http"
	"strings"

	"github.com/sazzler/api-gateway/internal/observability"
	"github.com/sazzler/api-gateway/token"
	"go.uber.org/zap"
)

// bearerPrefix is matched case-sensitively, including the trailing space
const bearerPrefix = "Bearer "

// Outcome is the result of gating one request
type Outcome string

const (
	// OutcomePassThrough means no bearer credential was presented
	OutcomePassThrough Outcome = "pass_through"

	// OutcomeAttached means the token was valid and its identity was attached
	OutcomeAttached Outcome = "attached"

	// OutcomeSkippedAlreadySet means the token was valid but an earlier stage already set the identity
	OutcomeSkippedAlreadySet Outcome = "skipped_already_set"

	// OutcomeReject means the request must be answered with 401
	OutcomeReject Outcome = "reject"
)

// Decision describes what the gate decided for a request
type Decision struct {
	Outcome Outcome
	// Identity is the identity in effect after the decision, if any
	Identity *Identity
	// Err carries the verification failure for rejected requests
	Err error
	// Request is the request to hand to the next stage
	Request *http.Request
}

// Continue reports whether the request may proceed to the next stage
func (d Decision) Continue() bool {
	return d.Outcome != OutcomeReject
}

// AuthenticationGate establishes the caller's identity from a bearer token.
// Requests without a bearer credential pass through anonymously; requests
// with a bad token are stopped with 401.
type AuthenticationGate struct {
	verifier token.Verifier
	logger   *zap.Logger
	metrics  *observability.GateMetrics
}

// GateOption configures an AuthenticationGate
type GateOption func(*AuthenticationGate)

// WithMetrics records every decision in m
func WithMetrics(m *observability.GateMetrics) GateOption {
	return func(g *AuthenticationGate) {
		g.metrics = m
	}
}

// NewAuthenticationGate creates a new AuthenticationGate
func NewAuthenticationGate(verifier token.Verifier, logger *zap.Logger, opts ...GateOption) *AuthenticationGate {
	g := &AuthenticationGate{
		verifier: verifier,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Process runs the gate for one request without writing a response
func (g *AuthenticationGate) Process(r *http.Request) Decision {
	decision := g.decide(r)
	g.metrics.RecordDecision(string(decision.Outcome), string(token.KindOf(decision.Err)))
	return decision
}

func (g *AuthenticationGate) decide(r *http.Request) Decision {
	ctx := r.Context()
	requestID := GetRequestIDFromContext(ctx)

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		existing, _ := IdentityFromContext(ctx)
		return Decision{Outcome: OutcomePassThrough, Identity: existing, Request: r}
	}
	tokenString := header[len(bearerPrefix):]

	if err := g.verifier.Validate(tokenString); err != nil {
		return g.reject(r, requestID, err)
	}

	claims, err := g.verifier.Decode(ctx, tokenString)
	if err != nil {
		return g.reject(r, requestID, err)
	}
	if claims == nil || claims.SubjectID == "" {
		return g.reject(r, requestID, token.ErrEmptySubject)
	}

	identity := &Identity{
		SubjectID:   claims.SubjectID,
		Authorities: claims.Authorities,
	}
	ctx, attached := WithIdentity(ctx, identity)
	if !attached {
		existing, _ := IdentityFromContext(ctx)
		g.logger.Debug("identity already set, keeping it",
			zap.String("request_id", requestID),
			zap.String("subject_id", existing.SubjectID))
		return Decision{Outcome: OutcomeSkippedAlreadySet, Identity: existing, Request: r}
	}

	g.logger.Debug("authentication successful",
		zap.String("request_id", requestID),
		zap.String("subject_id", identity.SubjectID),
		zap.Strings("authorities", identity.Authorities.Slice()))

	return Decision{Outcome: OutcomeAttached, Identity: identity, Request: r.WithContext(ctx)}
}

func (g *AuthenticationGate) reject(r *http.Request, requestID string, err error) Decision {
	g.logger.Warn("token rejected",
		zap.String("request_id", requestID),
		zap.String("reason", string(token.KindOf(err))),
		zap.Error(err))
	return Decision{Outcome: OutcomeReject, Err: err, Request: r}
}

// Handler gates every request before handing it to next. Rejected requests
// get a bare 401 and never reach next.
func (g *AuthenticationGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Process(r)
		if !decision.Continue() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, decision.Request)
	})
}
