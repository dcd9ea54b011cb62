package tts

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

// TestSortVoices tests preference ordering.
func TestSortVoices(t *testing.T) {
	voices := []Voice{
		{ID: "fr", Name: "Amelie", Lang: "fr-FR"},
		{ID: "en", Name: "Aria", Lang: "en-US"},
		{ID: "zh-other", Name: "Yunxi", Lang: "zh-CN"},
		{ID: "zh-tw", Name: "Xiaoxiao Taiwan", Lang: "zh-TW"},
		{ID: "bad", Name: "Broken", Lang: "not a tag"},
		{ID: "zh-pref", Name: "Microsoft Xiaoxiao", Lang: "zh-CN"},
	}

	got := SortVoices(voices, DefaultVoicePreference())
	want := []string{"zh-tw", "zh-pref", "zh-other", "en", "fr", "bad"}
	if len(got) != len(want) {
		t.Fatalf("got %d voices", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("voice %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if voices[0].ID != "fr" {
		t.Error("SortVoices should not modify its input")
	}
}

// TestSortVoicesCustomPreference tests a caller-supplied preference.
func TestSortVoicesCustomPreference(t *testing.T) {
	pref := VoicePreference{Languages: []language.Tag{language.Japanese}}
	got := SortVoices([]Voice{{ID: "zh", Lang: "zh-CN"}, {ID: "ja", Lang: "ja-JP"}}, pref)
	if got[0].ID != "ja" {
		t.Errorf("first voice = %s, want ja", got[0].ID)
	}
}

// TestFindVoice tests lookup by id and name.
func TestFindVoice(t *testing.T) {
	voices := []Voice{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}}

	if v, err := FindVoice(voices, "b"); err != nil || v.Name != "Beta" {
		t.Errorf("FindVoice(b) = %+v, %v", v, err)
	}
	if v, err := FindVoice(voices, "Alpha"); err != nil || v.ID != "a" {
		t.Errorf("FindVoice(Alpha) = %+v, %v", v, err)
	}
	if _, err := FindVoice(voices, "c"); !errors.Is(err, ErrVoiceNotFound) {
		t.Errorf("FindVoice(c) error = %v", err)
	}
}

// TestDefaultVoice tests default selection.
func TestDefaultVoice(t *testing.T) {
	if _, ok := DefaultVoice(nil); ok {
		t.Error("no voices should give no default")
	}
	v, _ := DefaultVoice([]Voice{{ID: "a"}, {ID: "b", Default: true}})
	if v.ID != "b" {
		t.Errorf("default = %s, want b", v.ID)
	}
	v, _ = DefaultVoice([]Voice{{ID: "a"}, {ID: "b"}})
	if v.ID != "a" {
		t.Errorf("default = %s, want a", v.ID)
	}
}
