package domain

import "testing"

func TestRiskLevelOrdering(t *testing.T) {
	ordered := []RiskLevel{RiskSafe, RiskLow, RiskModerate, RiskHigh, RiskCritical}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].AtLeast(ordered[i-1]) {
			t.Fatalf("%s should be at least %s", ordered[i], ordered[i-1])
		}
		if ordered[i-1].AtLeast(ordered[i]) {
			t.Fatalf("%s should not be at least %s", ordered[i-1], ordered[i])
		}
	}
}

func TestParseRiskLevelFoldsAliases(t *testing.T) {
	cases := []struct {
		in   string
		want RiskLevel
		ok   bool
	}{
		{"safe", RiskSafe, true},
		{"none", RiskSafe, true},
		{"info", RiskSafe, true},
		{"low", RiskLow, true},
		{"moderate", RiskModerate, true},
		{"medium", RiskModerate, true},
		{"HIGH", RiskHigh, true},
		{" critical ", RiskCritical, true},
		{"extreme", RiskSafe, false},
		{"", RiskSafe, false},
	}
	for _, tc := range cases {
		got, ok := ParseRiskLevel(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRiskLevel(%q) = (%s, %t), want (%s, %t)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRiskLevelJSONRoundTrip(t *testing.T) {
	data, err := RiskHigh.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	if string(data) != `"high"` {
		t.Fatalf("MarshalJSON = %s, want \"high\"", data)
	}
	var level RiskLevel
	if err := level.UnmarshalJSON([]byte(`"medium"`)); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	if level != RiskModerate {
		t.Fatalf("medium should unmarshal as moderate, got %s", level)
	}
}
