package tts

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// VoicePreference orders the voices offered to the user.
type VoicePreference struct {
	// Languages are preferred in order; voices in other languages follow.
	Languages []language.Tag
	// Names are name substrings preferred within the same language.
	Names []string
}

// DefaultVoicePreference puts Chinese voices first, Xiaoxiao voices first
// among those, then English.
func DefaultVoicePreference() VoicePreference {
	return VoicePreference{
		Languages: []language.Tag{language.Chinese, language.English},
		Names:     []string{"Xiaoxiao"},
	}
}

// SortVoices returns a copy of voices stably sorted by pref.
func SortVoices(voices []Voice, pref VoicePreference) []Voice {
	out := slices.Clone(voices)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := pref.languageRank(out[i]), pref.languageRank(out[j])
		if li != lj {
			return li < lj
		}
		return pref.nameRank(out[i]) < pref.nameRank(out[j])
	})
	return out
}

func (p VoicePreference) languageRank(v Voice) int {
	tag, err := language.Parse(v.Lang)
	if err != nil {
		return len(p.Languages)
	}
	base, _ := tag.Base()
	for i, l := range p.Languages {
		if b, _ := l.Base(); b == base {
			return i
		}
	}
	return len(p.Languages)
}

func (p VoicePreference) nameRank(v Voice) int {
	for _, n := range p.Names {
		if strings.Contains(v.Name, n) {
			return 0
		}
	}
	return 1
}

// FindVoice returns the voice whose ID or name equals id.
func FindVoice(voices []Voice, id string) (Voice, error) {
	for _, v := range voices {
		if v.ID == id || v.Name == id {
			return v, nil
		}
	}
	return Voice{}, ErrVoiceNotFound
}

// DefaultVoice returns the voice marked default, or the first one.
func DefaultVoice(voices []Voice) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}
	return voices[0], true
}
