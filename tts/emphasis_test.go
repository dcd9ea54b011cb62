package tts

import "testing"

// TestSplitEmphasis tests splitting annotated text into parts.
func TestSplitEmphasis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Part
	}{
		{
			name: "plain",
			in:   "hello world",
			want: []Part{{Text: "hello world"}},
		},
		{
			name: "pause becomes terminator",
			in:   "你好。[pause=300]世界[停顿=200]",
			want: []Part{{Text: "你好。。世界。"}},
		},
		{
			name: "emphasis in the middle",
			in:   "run [emphasis]go test[/emphasis] now",
			want: []Part{{Text: "run"}, {Text: "go test", Emphasis: true}, {Text: "now"}},
		},
		{
			name: "chinese markers",
			in:   "[强调]重要[/强调]内容",
			want: []Part{{Text: "重要", Emphasis: true}, {Text: "内容"}},
		},
		{
			name: "punctuation-only part dropped",
			in:   "[emphasis]code[/emphasis][pause=300]。",
			want: []Part{{Text: "code", Emphasis: true}},
		},
		{
			name: "nothing speakable keeps the whole",
			in:   "[pause=500]...",
			want: []Part{{Text: "。..."}},
		},
		{
			name: "empty",
			in:   "  ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitEmphasis(tt.in, "。")
			if len(got) != len(tt.want) {
				t.Fatalf("SplitEmphasis(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
