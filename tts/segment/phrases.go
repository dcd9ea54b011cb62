package segment

// Phrases are the fixed words added around units so that a listener can tell
// what kind of content is being read.
type Phrases struct {
	Heading string // h1 label
	Section string // h2 label
	Point   string // h3-h6 label

	CodeBegin string
	CodeEnd   string

	InlineCodeOpen  string
	InlineCodeClose string

	// Terminator ends every annotated unit.
	Terminator string
}

// Chinese is the default phrase set.
var Chinese = Phrases{
	Heading:         "标题：",
	Section:         "小节：",
	Point:           "要点：",
	CodeBegin:       "【重要代码块开始】",
	CodeEnd:         "【重要代码块结束】",
	InlineCodeOpen:  "【重要代码：",
	InlineCodeClose: "】",
	Terminator:      "。",
}

// English is the phrase set for English documents.
var English = Phrases{
	Heading:         "Heading: ",
	Section:         "Section: ",
	Point:           "Point: ",
	CodeBegin:       "Code block begins. ",
	CodeEnd:         " Code block ends.",
	InlineCodeOpen:  "Important code: ",
	InlineCodeClose: ".",
	Terminator:      ".",
}

// PhrasesFor returns the phrase set named "zh" or "en". Anything else gets
// the Chinese set.
func PhrasesFor(name string) Phrases {
	if name == "en" {
		return English
	}
	return Chinese
}

// Label returns the role label for a heading level.
func (p Phrases) Label(level int) string {
	switch level {
	case 1:
		return p.Heading
	case 2:
		return p.Section
	default:
		return p.Point
	}
}
