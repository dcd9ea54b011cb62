package ui

import (
	"testing"

	"github.com/dgnsrekt/narrate/tts"
)

// TestControlsVoices tests voice selection across list changes.
func TestControlsVoices(t *testing.T) {
	c := NewControls("Beta", 1, 1)
	if _, ok := c.Voice(); ok {
		t.Fatal("no voice should be selected before voices are offered")
	}

	c.SetVoices([]tts.Voice{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}})
	if v, ok := c.Voice(); !ok || v.ID != "b" {
		t.Fatalf("preferred voice = %+v, %v", v, ok)
	}
	if s := c.Settings(); s.Voice.ID != "b" || s.Rate != 1 {
		t.Errorf("Settings() = %+v", s)
	}

	if v, _ := c.NextVoice(); v.ID != "a" {
		t.Errorf("NextVoice() = %s, want a", v.ID)
	}

	// The selection survives a reordered list.
	c.SetVoices([]tts.Voice{{ID: "c"}, {ID: "a"}})
	if v, _ := c.Voice(); v.ID != "a" {
		t.Errorf("voice after refresh = %s, want a", v.ID)
	}

	c.SetVoices(nil)
	if _, ok := c.NextVoice(); ok {
		t.Error("NextVoice with no voices should fail")
	}
	if s := c.Settings(); s.Voice.ID != "" {
		t.Errorf("Settings().Voice = %+v, want none", s.Voice)
	}
}

// TestControlsRate tests rate stepping and clamping.
func TestControlsRate(t *testing.T) {
	tests := []struct {
		start, delta, want float64
	}{
		{0.8, rateStep, 0.9},
		{0.8, -rateStep, 0.7},
		{0.5, -rateStep, 0.5},
		{2.0, rateStep, 2.0},
		{1.0, 5, 2.0},
	}
	for _, tt := range tests {
		c := NewControls("", tt.start, 1)
		if got := c.AdjustRate(tt.delta); got != tt.want {
			t.Errorf("AdjustRate(%v) from %v = %v, want %v", tt.delta, tt.start, got, tt.want)
		}
	}
}
