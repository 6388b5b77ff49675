package speech

import (
	"golang.org/x/text/language"
)

// DefaultLocales is the preferred voice order: Mexican Spanish, then
// Castilian.
var DefaultLocales = []language.Tag{
	language.MustParse("es-MX"),
	language.MustParse("es-ES"),
}

// ParseLocales parses BCP 47 tags, skipping any that do not parse. An empty
// result falls back to DefaultLocales.
func ParseLocales(tags []string) []language.Tag {
	var out []language.Tag
	for _, s := range tags {
		if t, err := language.Parse(s); err == nil {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return DefaultLocales
	}
	return out
}

// SelectVoice picks the best voice for prefs. A voice whose language and
// region equal a preference wins, in preference order; otherwise the
// closest voice of the same language family is used. ok is false when no
// voice speaks any preferred language.
func SelectVoice(voices []Voice, prefs []language.Tag) (v Voice, ok bool) {
	if len(prefs) == 0 {
		prefs = DefaultLocales
	}

	var (
		supported []language.Tag
		index     []int
	)
	for i, voice := range voices {
		t, err := language.Parse(voice.Language)
		if err != nil {
			continue
		}
		supported = append(supported, t)
		index = append(index, i)
	}
	if len(supported) == 0 {
		return Voice{}, false
	}

	for _, want := range prefs {
		wb, _ := want.Base()
		wr, wconf := want.Region()
		for i, t := range supported {
			b, _ := t.Base()
			r, conf := t.Region()
			if b == wb && wconf == language.Exact && conf == language.Exact && r == wr {
				return voices[index[i]], true
			}
		}
	}

	_, i, conf := language.NewMatcher(supported).Match(prefs...)
	if conf == language.No {
		return Voice{}, false
	}
	return voices[index[i]], true
}
