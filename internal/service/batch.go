package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/idguard/internal/model"
)

// Target is one entry of a batch exposure check.
type Target struct {
	Email string
	Query string
}

func (t Target) String() string {
	return strings.TrimSpace(t.Email + " " + t.Query)
}

// ParseTargets reads one target per line. A line containing "@" is checked
// as an e-mail address, anything else as a query. Blank lines and
// lines starting with # are ignored. Duplicates are kept once.
func ParseTargets(r io.Reader) ([]Target, error) {
	var targets []Target
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true

		if strings.Contains(line, "@") {
			targets = append(targets, Target{Email: line})
		} else {
			targets = append(targets, Target{Query: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}
	return targets, nil
}

// CheckBatch runs CheckExposure for every target, a few at a time.
// fn, when not nil, is called as each check completes; it may be called
// from several goroutines at once. The returned slice keeps the order of
// targets. Targets that were rejected or not reached before ctx ended are nil.
func (s *Service) CheckBatch(
	ctx context.Context,
	targets []Target,
	fn func(index int, out *Outcome[*model.CombinedReport]),
) ([]*Outcome[*model.CombinedReport], error) {
	s.logger.Info("starting batch check",
		"total_targets", len(targets),
		"concurrency", s.batchSize,
	)
	startTime := time.Now()

	results := make([]*Outcome[*model.CombinedReport], len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			out, err := s.CheckExposure(ctx, target.Email, target.Query)
			if err != nil {
				// A bad line must not stop the other checks.
				s.logger.Warn("skipping batch target", "index", i+1, "error", err)
				return nil
			}
			results[i] = out
			if fn != nil {
				fn(i, out)
			}
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info("batch check complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return results, err
}
