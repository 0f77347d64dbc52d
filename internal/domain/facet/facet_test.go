package facet

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/specdex/internal/domain/epoch"
)

func TestSelection_Active(t *testing.T) {
	s, err := NewSelection(map[string]Criterion{
		"Color":  {Values: []string{"Red"}},
		"Weight": {Values: []string{"", " "}},
		"Expiry": {Values: nil},
		"Brand":  {Values: []string{"", "Acme"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Active(); !reflect.DeepEqual(got, []string{"Brand", "Color"}) {
		t.Errorf("Active() = %v", got)
	}
	if s.IsEmpty() {
		t.Error("expected non-empty selection")
	}

	empty, _ := NewSelection(nil)
	if !empty.IsEmpty() {
		t.Error("expected empty selection")
	}
}

func TestSelection_Invalid(t *testing.T) {
	if _, err := NewSelection(map[string]Criterion{" ": {Values: []string{"x"}}}); err == nil {
		t.Fatal("expected error for blank attribute name")
	}
	many := make(map[string]Criterion, MaxAttributes+1)
	for i := 0; i <= MaxAttributes; i++ {
		many[string(rune('A'+i%26))+string(rune('a'+i/26))] = Criterion{}
	}
	if _, err := NewSelection(many); err == nil {
		t.Fatal("expected error for too many attributes")
	}
}

func TestCriterion_Accepted(t *testing.T) {
	c := Criterion{Values: []string{" Red", "Red", "", "Blue"}}
	if got := c.Accepted(); !reflect.DeepEqual(got, []string{"Red", "Blue"}) {
		t.Errorf("Accepted() = %v", got)
	}
}

func TestCriterion_NumericRange(t *testing.T) {
	tests := []struct {
		values []string
		lo, hi *float64
	}{
		{[]string{"10", "20"}, f(10), f(20)},
		{[]string{"20", "10"}, f(10), f(20)},
		{[]string{"", "20"}, nil, f(20)},
		{[]string{"10", ""}, f(10), nil},
		{[]string{"10"}, f(10), f(10)},
		{[]string{"5", "7", "1"}, f(1), f(5)},
	}
	for _, tc := range tests {
		lo, hi, err := Criterion{Values: tc.values}.NumericRange()
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tc.values, err)
		}
		if !eqPtr(lo, tc.lo) || !eqPtr(hi, tc.hi) {
			t.Errorf("%v: got [%v, %v]", tc.values, deref(lo), deref(hi))
		}
	}

	if _, _, err := (Criterion{Values: []string{"ten", "20"}}).NumericRange(); err == nil {
		t.Error("expected error for non-numeric bound")
	}
}

func TestCriterion_DateRange(t *testing.T) {
	dates := epoch.New("UTC")
	minV, _ := dates.Encode(epoch.MinDate)
	maxV, _ := dates.Encode(epoch.MaxDate)
	jan, _ := dates.EncodeString("2024-01-01")
	dec, _ := dates.EncodeString("2024-12-31")

	lo, hi, ok, err := Criterion{Values: []string{"", ""}}.DateRange(dates)
	if err != nil || !ok || lo != float64(minV) || hi != float64(maxV) {
		t.Errorf("sentinels: [%v %v] %v %v", lo, hi, ok, err)
	}

	lo, hi, ok, err = Criterion{Values: []string{"2024-12-31", "2024-01-01"}}.DateRange(dates)
	if err != nil || !ok || lo != float64(jan) || hi != float64(dec) {
		t.Errorf("swap: [%v %v] %v %v", lo, hi, ok, err)
	}

	lo, hi, ok, err = Criterion{Values: []string{"2024-01-01"}}.DateRange(dates)
	if err != nil || !ok || lo != float64(jan) || hi != float64(jan) {
		t.Errorf("single date: [%v %v] %v %v", lo, hi, ok, err)
	}

	if _, _, _, err := (Criterion{Values: []string{"soon", ""}}).DateRange(dates); err == nil {
		t.Error("expected error for invalid date")
	}
	if _, _, ok, _ := (Criterion{Values: []string{"2024-01-01"}}).DateRange(epoch.New("Bad/Zone")); ok {
		t.Error("unknown zone must report no range")
	}
}

func TestIntersect(t *testing.T) {
	set := func(ids ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			m[id] = struct{}{}
		}
		return m
	}

	got := Intersect([]map[string]struct{}{set("a", "b", "c"), set("b", "c", "d"), set("c", "b")})
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Intersect = %v", got)
	}
	if got := Intersect([]map[string]struct{}{set("a"), set()}); len(got) != 0 {
		t.Errorf("empty set must zero the result, got %v", got)
	}
	if got := Intersect(nil); got != nil {
		t.Errorf("Intersect(nil) = %v", got)
	}
}

func TestResult_Admits(t *testing.T) {
	if !Unrestricted().Admits("anything") {
		t.Error("unrestricted result must admit everything")
	}
	r := Result{Restricted: true, IDs: []string{"a", "c"}}
	if !r.Admits("a") || r.Admits("b") {
		t.Error("restricted result mismatch")
	}
	if (Result{Restricted: true}).Admits("a") {
		t.Error("empty restricted result admits nothing")
	}
}

func f(v float64) *float64 { return &v }

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
