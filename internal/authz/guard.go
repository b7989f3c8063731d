package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

// Requirement is attached to an operation when routes are built. It is either a
// PermissionRequirement or a RoleRequirement, never both.
type Requirement interface {
	kind() string
	names() []string
}

// PermissionRequirement holds when the principal has every named permission.
type PermissionRequirement struct {
	Names []string
}

func (PermissionRequirement) kind() string      { return "permission" }
func (p PermissionRequirement) names() []string { return p.Names }

// RoleRequirement holds when the principal has at least one of the named roles.
type RoleRequirement struct {
	Names []string
}

func (RoleRequirement) kind() string      { return "role" }
func (r RoleRequirement) names() []string { return r.Names }

func RequirePermissions(names ...string) PermissionRequirement {
	return PermissionRequirement{Names: names}
}

func RequireRoles(names ...string) RoleRequirement {
	return RoleRequirement{Names: names}
}

// Subject is what the request context supplies to a check.
type Subject struct {
	PrincipalID *int64
	CourseID    *int64
}

type Outcome string

const (
	OutcomeAllowed         Outcome = "allowed"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeDenied          Outcome = "denied"
)

type Decision struct {
	Outcome  Outcome
	Kind     string
	Missing  string
	Required []string
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}

// Err converts a non-allowed decision into the error the caller should see.
func (d Decision) Err() error {
	switch d.Outcome {
	case OutcomeAllowed:
		return nil
	case OutcomeUnauthenticated:
		return errors.ErrNotAuthenticated
	}
	if d.Kind == "role" {
		return errors.NewForbiddenError(
			fmt.Sprintf("User does not have required role. Required: %s", strings.Join(d.Required, ", ")),
			errors.ErrCodeRoleDenied,
		).WithDetails(map[string]interface{}{"required_roles": d.Required})
	}
	return errors.NewForbiddenError(
		fmt.Sprintf("User does not have permission: %s", d.Missing),
		errors.ErrCodePermissionDenied,
	).WithDetails(map[string]interface{}{"missing_permission": d.Missing})
}

// GrantResolver is the part of the Resolver the guard depends on.
type GrantResolver interface {
	EffectiveRoles(ctx context.Context, userID int64, scope Scope, now time.Time) ([]*catalog.Role, error)
	EffectivePermissions(ctx context.Context, userID int64, scope Scope, now time.Time) ([]catalog.Permission, error)
}

type Guard struct {
	resolver GrantResolver
	clock    func() time.Time
	logger   *slog.Logger
}

func NewGuard(resolver GrantResolver, clock func() time.Time, logger *slog.Logger) *Guard {
	if clock == nil {
		clock = time.Now
	}
	return &Guard{
		resolver: resolver,
		clock:    clock,
		logger:   logger,
	}
}

// Check evaluates req for subj. Resolver failures are returned as errors and never
// turned into an allow or a deny.
func (g *Guard) Check(ctx context.Context, req Requirement, subj Subject) (Decision, error) {
	if req == nil {
		decisionsTotal.WithLabelValues("none", string(OutcomeAllowed)).Inc()
		return Decision{Outcome: OutcomeAllowed}, nil
	}

	decision, err := g.evaluate(ctx, req, subj)
	if err != nil {
		decisionsTotal.WithLabelValues(req.kind(), "error").Inc()
		logger.FromOr(ctx, g.logger).ErrorContext(ctx, "authorization check failed", "requirement", req.kind(), "error", err)
		return Decision{}, err
	}

	decisionsTotal.WithLabelValues(req.kind(), string(decision.Outcome)).Inc()
	if decision.Outcome == OutcomeDenied {
		logger.FromOr(ctx, g.logger).WarnContext(ctx, "access denied",
			"user_id", *subj.PrincipalID,
			"requirement", req.kind(),
			"required", decision.Required,
			"missing", decision.Missing,
			"course_scoped", subj.CourseID != nil)
	}
	return decision, nil
}

func (g *Guard) evaluate(ctx context.Context, req Requirement, subj Subject) (Decision, error) {
	required := req.names()
	decision := Decision{Kind: req.kind(), Required: required}

	if subj.PrincipalID == nil {
		decision.Outcome = OutcomeUnauthenticated
		return decision, nil
	}

	scope := Scope{CourseID: subj.CourseID}
	now := g.clock()

	switch req.(type) {
	case PermissionRequirement:
		permissions, err := g.resolver.EffectivePermissions(ctx, *subj.PrincipalID, scope, now)
		if err != nil {
			return Decision{}, err
		}
		held := make(map[string]struct{}, len(permissions))
		for _, p := range permissions {
			held[p.Name] = struct{}{}
		}
		for _, name := range required {
			if _, ok := held[name]; !ok {
				decision.Outcome = OutcomeDenied
				decision.Missing = name
				return decision, nil
			}
		}
		decision.Outcome = OutcomeAllowed
		return decision, nil

	case RoleRequirement:
		roles, err := g.resolver.EffectiveRoles(ctx, *subj.PrincipalID, scope, now)
		if err != nil {
			return Decision{}, err
		}
		for _, role := range roles {
			for _, name := range required {
				if role.Name == name {
					decision.Outcome = OutcomeAllowed
					return decision, nil
				}
			}
		}
		decision.Outcome = OutcomeDenied
		return decision, nil
	}

	return Decision{}, fmt.Errorf("unsupported requirement %T", req)
}
