package service

import (
	"context"

	"github.com/nao1215/idguard/internal/model"
)

// Page is one page of the report history.
type Page struct {
	Reports []model.Report `json:"reports"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// History lists saved reports of moduleType, newest first. An empty
// moduleType lists both kinds.
func (s *Service) History(ctx context.Context, moduleType model.ModuleType, page, perPage int) (*Page, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	reports, total, err := s.store.ListPage(ctx, moduleType, page, perPage)
	if err != nil {
		return nil, err
	}
	return &Page{Reports: reports, Total: total, Page: page, PerPage: perPage}, nil
}

// Report returns the saved report with the given id.
func (s *Service) Report(ctx context.Context, id int64) (*model.Report, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReportNotFound
	}
	return r, nil
}

// Prune keeps the newest keep reports of moduleType and deletes the rest.
func (s *Service) Prune(ctx context.Context, moduleType model.ModuleType, keep int) (int64, error) {
	if s.store == nil {
		return 0, ErrNoStore
	}
	n, err := s.store.Prune(ctx, moduleType, keep)
	if err != nil {
		return 0, err
	}
	s.logger.Info("pruned report history", "module", moduleType, "kept", keep, "deleted", n)
	return n, nil
}
