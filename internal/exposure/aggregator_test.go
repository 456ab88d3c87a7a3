package exposure

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/provider"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestCheckEmailScenarioA(t *testing.T) {
	t.Parallel()

	hibp := &fakeBreaches{result: provider.Success(provider.HIBPName, breaches(6, 2))}
	agg := New(provider.NewRegistry(provider.WithBreachSource(hibp)), WithClock(clock))

	got := agg.CheckEmail(context.Background(), "test@example.com")
	if got.Status != model.StatusSuccess {
		t.Fatalf("status = %s (%s)", got.Status, got.Message)
	}
	if got.RiskLevel != model.RiskHigh {
		t.Errorf("risk = %s, want high", got.RiskLevel)
	}
	if got.TotalBreaches != 6 {
		t.Errorf("total_breaches = %d, want 6", got.TotalBreaches)
	}
	if got.InputType != model.InputEmail || !got.Timestamp.Equal(fixedNow) {
		t.Errorf("unexpected labels %s %v", got.InputType, got.Timestamp)
	}
}

func TestCheckEmailInvalidInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "not-an-email", "a@b", "@example.com", "john@example.c", "john doe@example.com"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			hibp := &fakeBreaches{result: provider.Success(provider.HIBPName, breaches(1, -1))}
			pastes := &fakeFinder{name: provider.PasteSearchName}
			dark := &fakeFinder{name: provider.DarkWebSearchName}
			leaks := &fakeFinder{name: provider.LeakIndexName}
			agg := New(provider.NewRegistry(
				provider.WithBreachSource(hibp),
				provider.WithPasteSource(pastes),
				provider.WithDarkWebSource(dark),
				provider.WithLeakIndexSource(leaks),
			))

			got := agg.CheckEmail(context.Background(), in)
			if got.Status != model.StatusError || got.Message == "" {
				t.Errorf("expected error result, got %+v", got)
			}
			if n := hibp.calls.Load() + pastes.calls.Load() + dark.calls.Load() + leaks.calls.Load(); n != 0 {
				t.Errorf("%d provider calls for invalid input", n)
			}
			if got.Breaches == nil || got.Pastes == nil || got.FoundOn == nil {
				t.Error("error results carry empty lists, not nil")
			}
		})
	}
}

func TestCheckEmailTotalBreaches(t *testing.T) {
	t.Parallel()

	for _, nb := range []int{0, 2} {
		for _, na := range []int{0, 1} {
			for _, nl := range []int{0, 3} {
				hibp := &fakeBreaches{result: provider.Success(provider.HIBPName, breaches(nb, -1))}
				dark := &fakeFinder{name: provider.DarkWebSearchName,
					result: provider.Success(provider.DarkWebSearchName, findings(model.SourceLeakServiceA, na, ""))}
				leaks := &fakeFinder{name: provider.LeakIndexName,
					result: provider.Success(provider.LeakIndexName, findings(model.SourceLeakServiceB, nl, ""))}
				agg := New(provider.NewRegistry(
					provider.WithBreachSource(hibp),
					provider.WithDarkWebSource(dark),
					provider.WithLeakIndexSource(leaks),
				))

				got := agg.CheckEmail(context.Background(), "test@example.com")
				if got.TotalBreaches != nb+na+nl {
					t.Errorf("breaches=%d A=%d B=%d: total_breaches = %d", nb, na, nl, got.TotalBreaches)
				}
			}
		}
	}
}

func TestCheckEmailProviderFailures(t *testing.T) {
	t.Parallel()

	hibp := &fakeBreaches{result: provider.Failure[model.Breach](provider.HIBPName, "401 unauthorized")}
	pastes := &fakeFinder{name: provider.PasteSearchName, panics: true}
	dark := &fakeFinder{name: provider.DarkWebSearchName,
		result: provider.Success(provider.DarkWebSearchName, findings(model.SourceLeakServiceA, 1, "login list"))}
	agg := New(provider.NewRegistry(
		provider.WithBreachSource(hibp),
		provider.WithPasteSource(pastes),
		provider.WithDarkWebSource(dark),
	))

	got := agg.CheckEmail(context.Background(), "test@example.com")
	if got.Status != model.StatusSuccess {
		t.Fatalf("provider failures must not fail the check: %+v", got)
	}
	if got.ProviderErrors[provider.HIBPName] == "" || got.ProviderErrors[provider.PasteSearchName] == "" {
		t.Errorf("provider errors = %v", got.ProviderErrors)
	}
	if len(got.Leaks) != 1 || !got.Leaks[0].ContainsSensitive {
		t.Errorf("leaks = %+v", got.Leaks)
	}
	if got.RiskLevel != model.RiskMedium {
		t.Errorf("risk = %s, want medium from the leak finding", got.RiskLevel)
	}
	if got.TotalBreaches != 1 {
		t.Errorf("total_breaches = %d, want 1", got.TotalBreaches)
	}
}

func TestCheckEmailPasteQueryDropsAt(t *testing.T) {
	t.Parallel()

	pastes := &fakeFinder{
		name:    provider.PasteSearchName,
		result:  provider.Success(provider.PasteSearchName, []model.Finding{}),
		queries: make(chan string, 1),
	}
	agg := New(provider.NewRegistry(provider.WithPasteSource(pastes)))
	agg.CheckEmail(context.Background(), "john.doe@example.com")

	if q := <-pastes.queries; q != "john.doe example.com" {
		t.Errorf("paste query = %q", q)
	}
}

func TestCheckQueryScenarioB(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{links: map[string][]provider.SearchItem{
		"github.com": {{Title: "john_doe123", Link: "https://github.com/john_doe123", Snippet: "repositories"}},
		"reddit.com": {
			{Title: "elsewhere", Link: "https://example.com/reddit.com/u/john_doe123"},
			{Title: "u/john_doe123", Link: "https://www.reddit.com/user/john_doe123"},
		},
		"instagram.com": {{Title: "mirror", Link: "https://instagram.com.evil.test/john_doe123"}},
	}}
	agg := New(provider.NewRegistry(provider.WithSearcher(search)), WithClock(clock))

	got := agg.CheckQuery(context.Background(), "john_doe123")
	if got.Status != model.StatusSuccess {
		t.Fatalf("status = %s", got.Status)
	}
	if got.InputType != model.InputUsername {
		t.Errorf("input_type = %s", got.InputType)
	}
	if got.RiskLevel != model.RiskLow {
		t.Errorf("risk = %s, want low", got.RiskLevel)
	}
	if len(got.FoundOn) != 2 {
		t.Fatalf("found_on = %+v, want 2 platforms", got.FoundOn)
	}
	if got.FoundOn[0].Platform != "github" || got.FoundOn[1].Platform != "reddit" {
		t.Errorf("platform order = %s, %s", got.FoundOn[0].Platform, got.FoundOn[1].Platform)
	}
	for _, m := range got.FoundOn {
		if m.Confirmed {
			t.Error("mentions are never confirmed automatically")
		}
	}
	if got.FoundOn[1].URL != "https://www.reddit.com/user/john_doe123" {
		t.Errorf("reddit URL = %q", got.FoundOn[1].URL)
	}
	if search.calls.Load() != int32(len(DefaultPlatforms)) {
		t.Errorf("search calls = %d", search.calls.Load())
	}
}

func TestCheckQueryRisk(t *testing.T) {
	t.Parallel()

	every := map[string][]provider.SearchItem{}
	for _, p := range DefaultPlatforms {
		every[p.Domains[0]] = []provider.SearchItem{{Link: "https://" + p.Domains[0] + "/john_doe123"}}
	}

	t.Run("many mentions is medium, not high", func(t *testing.T) {
		t.Parallel()
		agg := New(provider.NewRegistry(provider.WithSearcher(&fakeSearch{links: every})))
		got := agg.CheckQuery(context.Background(), "john_doe123")
		if len(got.FoundOn) != 8 || got.RiskLevel != model.RiskMedium {
			t.Errorf("found %d, risk %s", len(got.FoundOn), got.RiskLevel)
		}
	})

	t.Run("sensitive paste is high", func(t *testing.T) {
		t.Parallel()
		pastes := &fakeFinder{name: provider.PasteSearchName, result: provider.Success(provider.PasteSearchName, []model.Finding{
			{Source: model.SourcePasteSearch, Title: "dump", URL: "https://pastebin.com/a", Excerpt: "John_Doe123 password: hunter2"},
			{Source: model.SourcePasteSearch, Title: "other", URL: "https://pastebin.com/b", Excerpt: "password for someone else"},
		})}
		agg := New(provider.NewRegistry(provider.WithPasteSource(pastes)))
		got := agg.CheckQuery(context.Background(), "john_doe123")
		if got.RiskLevel != model.RiskHigh {
			t.Errorf("risk = %s, want high", got.RiskLevel)
		}
		if !got.Pastes[0].ContainsSensitive || got.Pastes[1].ContainsSensitive {
			t.Errorf("sensitivity = %v, %v", got.Pastes[0].ContainsSensitive, got.Pastes[1].ContainsSensitive)
		}
	})

	t.Run("validator runs before risk", func(t *testing.T) {
		t.Parallel()
		agg := New(provider.NewRegistry(provider.WithSearcher(&fakeSearch{links: every})), WithValidator(dropAll{}))
		got := agg.CheckQuery(context.Background(), "john_doe123")
		if len(got.FoundOn) != 0 || got.RiskLevel != model.RiskLow {
			t.Errorf("found %d, risk %s", len(got.FoundOn), got.RiskLevel)
		}
	})

	t.Run("search failure is recorded", func(t *testing.T) {
		t.Parallel()
		agg := New(provider.NewRegistry(provider.WithSearcher(&fakeSearch{fail: true})))
		got := agg.CheckQuery(context.Background(), "john_doe123")
		if got.Status != model.StatusSuccess || got.ProviderErrors[provider.SearchName] == "" {
			t.Errorf("unexpected result %+v", got)
		}
	})
}

func TestCheckQueryTooShort(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{}
	agg := New(provider.NewRegistry(provider.WithSearcher(search)))
	got := agg.CheckQuery(context.Background(), " jo ")
	if got.Status != model.StatusError {
		t.Errorf("status = %s", got.Status)
	}
	if search.calls.Load() != 0 {
		t.Error("no provider may be called")
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	hibp := &fakeBreaches{result: provider.Success(provider.HIBPName, breaches(3, -1))}
	pastes := &fakeFinder{name: provider.PasteSearchName, result: provider.Success(provider.PasteSearchName, []model.Finding{
		{Source: model.SourcePasteSearch, Title: "p", Reference: "r"},
	})}
	search := &fakeSearch{links: map[string][]provider.SearchItem{
		"github.com": {{Link: "https://github.com/john_doe123"}},
	}}
	agg := New(provider.NewRegistry(
		provider.WithBreachSource(hibp),
		provider.WithPasteSource(pastes),
		provider.WithSearcher(search),
	), WithClock(clock))

	report := agg.Check(context.Background(), "test@example.com", "john_doe123")
	if report.EmailResult == nil || report.QueryResult == nil {
		t.Fatal("both halves should run")
	}
	if report.CombinedRisk != model.RiskMedium {
		t.Errorf("combined risk = %s", report.CombinedRisk)
	}
	if report.PasteCount != 2 {
		t.Errorf("paste_count = %d, want 2", report.PasteCount)
	}
	if report.Narrative == nil || len(report.Narrative.Findings) == 0 {
		t.Error("narrative missing")
	}

	emailOnly := agg.Check(context.Background(), "test@example.com", "")
	if emailOnly.QueryResult != nil || emailOnly.Query != "" {
		t.Error("empty query skips the username half")
	}
}
