// Package resolver turns human-supplied agent names and emails into
// numeric responder identifiers by paging the provider's agents listing.
package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/freshdesk"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

const directoryPageSize = 100

// AgentDirectory lists agents page by page.
type AgentDirectory interface {
	ListAgents(ctx context.Context, page, perPage int) ([]freshdesk.Agent, freshdesk.Pagination, error)
}

// Cache stores resolved identifiers keyed by normalized search term.
// Implementations are best-effort; a miss or store failure never fails
// the resolution.
type Cache interface {
	Get(ctx context.Context, term string) (int64, bool)
	Set(ctx context.Context, term string, id int64)
}

// MatchKind tags the outcome of a resolution attempt.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchUnique
	MatchAmbiguous
)

// Candidate is one agent considered during matching.
type Candidate struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Match is the tagged result of resolving a name or email: Unique
// carries the identifier, Ambiguous carries the candidates, None
// carries nothing.
type Match struct {
	Kind       MatchKind
	ID         int64
	Candidates []Candidate
}

// Resolver resolves display names and emails to responder identifiers.
type Resolver struct {
	directory AgentDirectory
	cache     Cache
	logger    *zap.Logger
	maxPages  int
}

// New constructs a Resolver. cache may be nil, which disables caching.
func New(directory AgentDirectory, cache Cache, logger *zap.Logger, maxPages int) *Resolver {
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Resolver{directory: directory, cache: cache, logger: logger, maxPages: maxPages}
}

// Resolve matches term against the agents listing. An exact
// case-insensitive match on display name or email wins; only when no
// exact match exists does a case-insensitive substring match on the
// display name apply. A term that is entirely digits short-circuits to
// its numeric value without a lookup.
func (r *Resolver) Resolve(ctx context.Context, term string) (Match, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return Match{}, apperrors.NewInvalidParameter("assignee name must not be empty", nil)
	}

	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Match{Kind: MatchUnique, ID: id}, nil
	}

	normalized := strings.ToLower(trimmed)
	if r.cache != nil {
		if id, ok := r.cache.Get(ctx, normalized); ok {
			r.logger.Debug("resolver cache hit", zap.String("term", normalized), zap.Int64("id", id))
			return Match{Kind: MatchUnique, ID: id}, nil
		}
	}

	var exact, partial []Candidate
	page := 1
	for visited := 0; visited < r.maxPages; visited++ {
		agents, pagination, err := r.directory.ListAgents(ctx, page, directoryPageSize)
		if err != nil {
			return Match{}, err
		}
		if len(agents) == 0 {
			break
		}
		for _, agent := range agents {
			candidate := Candidate{ID: agent.ID, Name: agent.Contact.Name, Email: agent.Contact.Email}
			if strings.EqualFold(agent.Contact.Name, trimmed) || strings.EqualFold(agent.Contact.Email, trimmed) {
				exact = append(exact, candidate)
				continue
			}
			if agent.Contact.Name != "" && strings.Contains(strings.ToLower(agent.Contact.Name), normalized) {
				partial = append(partial, candidate)
			}
		}
		if pagination.NextPage == nil {
			break
		}
		page = *pagination.NextPage
	}

	match := classify(exact, partial)
	if match.Kind == MatchUnique && r.cache != nil {
		r.cache.Set(ctx, normalized, match.ID)
	}
	return match, nil
}

// ResolveIdentifier resolves term and converts non-unique outcomes into
// domain errors carrying the searched term and any candidates.
func (r *Resolver) ResolveIdentifier(ctx context.Context, term string) (int64, error) {
	match, err := r.Resolve(ctx, term)
	if err != nil {
		return 0, err
	}
	switch match.Kind {
	case MatchUnique:
		return match.ID, nil
	case MatchAmbiguous:
		return 0, apperrors.NewAmbiguousMatch(
			fmt.Sprintf("multiple agents match %q", term),
			map[string]any{"term": term, "candidates": match.Candidates},
		)
	default:
		return 0, apperrors.NewNotFound(fmt.Sprintf("agent %q", term), map[string]any{"term": term})
	}
}

func classify(exact, partial []Candidate) Match {
	switch {
	case len(exact) == 1:
		return Match{Kind: MatchUnique, ID: exact[0].ID}
	case len(exact) > 1:
		return Match{Kind: MatchAmbiguous, Candidates: exact}
	case len(partial) == 1:
		return Match{Kind: MatchUnique, ID: partial[0].ID}
	case len(partial) > 1:
		return Match{Kind: MatchAmbiguous, Candidates: partial}
	default:
		return Match{Kind: MatchNone}
	}
}
