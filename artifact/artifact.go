// Package artifact stores the markdown documents that pipeline stages hand to
// each other. Every artifact is addressed by a session id and a fixed name, so
// concurrent sessions never overwrite each other's context.
package artifact

import (
	"context"
	"fmt"
	"regexp"

	"ideaforge/apperr"
)

// Fixed artifact names, one per stage
const (
	Ideas            = "ideas.md"
	Market           = "market.md"
	Company          = "company.md"
	FundDistribution = "fund_distribution.md"
)

// Names lists every artifact in pipeline order
var Names = []string{Ideas, Market, Company, FundDistribution}

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Store reads and writes artifacts for a session.
// Read returns an apperr.NotFound error when the artifact was never written.
type Store interface {
	Read(ctx context.Context, session, name string) (string, error)
	Write(ctx context.Context, session, name, content string) error
	Close() error
}

// ValidName reports whether name is one of the fixed artifact names
func ValidName(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// ValidSession reports whether id is usable as a storage key segment
func ValidSession(id string) bool {
	return sessionPattern.MatchString(id)
}

func checkKey(session, name string) error {
	if !ValidSession(session) {
		return apperr.Errorf(apperr.Validation, "invalid session id %q", session)
	}
	if !ValidName(name) {
		return apperr.Errorf(apperr.Validation, "unknown artifact %q", name)
	}
	return nil
}

func notFound(session, name string) error {
	return apperr.Errorf(apperr.NotFound, "artifact %s not found for session %s", name, session)
}

func storageErr(op string, err error) error {
	return apperr.New(apperr.Internal, op, fmt.Errorf("storage: %w", err))
}
