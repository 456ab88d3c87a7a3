package report

import (
	"encoding/json"
	"fmt"
	"strings"

	idlog "github.com/nao1215/idguard/internal/log"
	"github.com/nao1215/idguard/internal/model"
)

// AssembleExposure maps an exposure check onto the persisted Report shape.
// The summary subject masks the e-mail address so history listings never
// show it in full.
func AssembleExposure(c *model.CombinedReport) (*model.Report, error) {
	full, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode exposure report: %w", err)
	}

	var subject []string
	if c.Email != "" {
		subject = append(subject, idlog.MaskEmail(c.Email))
	}
	if c.Query != "" {
		subject = append(subject, c.Query)
	}

	return &model.Report{
		Timestamp:  c.GeneratedAt,
		ModuleType: model.ModuleExposure,
		Summary: model.Summary{
			Timestamp:     c.GeneratedAt,
			Risk:          c.CombinedRisk,
			Subject:       strings.Join(subject, ", "),
			TotalBreaches: c.TotalBreaches(),
			PasteCount:    c.PasteCount,
			PlatformCount: c.PlatformCount(),
		},
		FullReport: full,
	}, nil
}

// AssembleHygiene maps a hygiene assessment onto the persisted Report shape.
func AssembleHygiene(h *model.HygieneReport) (*model.Report, error) {
	full, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hygiene report: %w", err)
	}

	score := h.OverallScore
	return &model.Report{
		Timestamp:  h.GeneratedAt,
		ModuleType: model.ModuleHygiene,
		Summary: model.Summary{
			Timestamp:           h.GeneratedAt,
			Risk:                h.RiskLevel,
			Score:               &score,
			WeaknessCount:       len(h.Weaknesses),
			RecommendationCount: len(h.Recommendations),
		},
		FullReport: full,
	}, nil
}

// DecodeExposure reads the full exposure report back from r. A missing or
// zero paste_count is recomputed from the stored results.
func DecodeExposure(r *model.Report) (*model.CombinedReport, error) {
	var c model.CombinedReport
	if err := decode(r, model.ModuleExposure, &c); err != nil {
		return nil, err
	}
	if c.PasteCount == 0 {
		c.Recompute()
	}
	return &c, nil
}

// DecodeHygiene reads the full hygiene report back from r.
func DecodeHygiene(r *model.Report) (*model.HygieneReport, error) {
	var h model.HygieneReport
	if err := decode(r, model.ModuleHygiene, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func decode(r *model.Report, want model.ModuleType, v any) error {
	if r.ModuleType != want {
		return fmt.Errorf("%w: %s, want %s", ErrWrongModuleType, r.ModuleType, want)
	}
	if len(r.FullReport) == 0 {
		return ErrNoFullReport
	}
	if err := json.Unmarshal(r.FullReport, v); err != nil {
		return fmt.Errorf("failed to decode %s report %d: %w", want, r.ID, err)
	}
	return nil
}

// Render writes a stored report with w, whichever module produced it.
func Render(w Writer, r *model.Report) (int, error) {
	switch r.ModuleType {
	case model.ModuleExposure:
		c, err := DecodeExposure(r)
		if err != nil {
			return 0, err
		}
		return w.WriteExposure(c)
	case model.ModuleHygiene:
		h, err := DecodeHygiene(r)
		if err != nil {
			return 0, err
		}
		return w.WriteHygiene(h)
	default:
		return 0, fmt.Errorf("%w: %q", model.ErrUnknownModuleType, r.ModuleType)
	}
}
