package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRiskLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level RiskLevel
		want  string
	}{
		{RiskLow, "low"},
		{RiskMedium, "medium"},
		{RiskHigh, "high"},
		{RiskLevel(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.level.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRiskLevel(t *testing.T) {
	t.Parallel()

	t.Run("accepts mixed case", func(t *testing.T) {
		t.Parallel()
		got, err := ParseRiskLevel(" High ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != RiskHigh {
			t.Errorf("got %v, want high", got)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		t.Parallel()
		_, err := ParseRiskLevel("critical")
		if !errors.Is(err, ErrUnknownRiskLevel) {
			t.Errorf("expected ErrUnknownRiskLevel, got %v", err)
		}
	})
}

func TestRiskLevelEscalate(t *testing.T) {
	t.Parallel()

	if got := RiskHigh.Escalate(RiskMedium); got != RiskHigh {
		t.Errorf("high escalated to medium = %v, want high", got)
	}
	if got := RiskLow.Escalate(RiskMedium); got != RiskMedium {
		t.Errorf("low escalated to medium = %v, want medium", got)
	}
	if got := MaxRisk(); got != RiskLow {
		t.Errorf("MaxRisk() = %v, want low", got)
	}
	if got := MaxRisk(RiskLow, RiskHigh, RiskMedium); got != RiskHigh {
		t.Errorf("MaxRisk(low, high, medium) = %v, want high", got)
	}
}

func TestRiskLevelJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		Risk RiskLevel `json:"risk"`
	}{RiskMedium})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"risk":"medium"}` {
		t.Errorf("got %s", data)
	}

	var decoded struct {
		Risk RiskLevel `json:"risk"`
	}
	if err := json.Unmarshal([]byte(`{"risk":"high"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Risk != RiskHigh {
		t.Errorf("got %v, want high", decoded.Risk)
	}
}
