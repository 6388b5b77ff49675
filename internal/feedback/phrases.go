package feedback

import (
	"math/rand/v2"
	"strings"

	"golang.org/x/text/unicode/norm"

	"BuddyStudio/internal/errors"
)

// GameType tags the mini-game asking for an instruction.
type GameType string

const (
	Counting  GameType = "contar"
	FaceParts GameType = "reconocer partes del rostro"
	Shapes    GameType = "shapes"
	Sizes     GameType = "sizes"
	Colors    GameType = "colores"
	Patterns  GameType = "patrones"
	Drawing   GameType = "dibujar"
)

// Gender is the grammatical gender and number of a target noun.
type Gender string

const (
	Masculine       Gender = "m"
	Feminine        Gender = "f"
	MasculinePlural Gender = "mp"
	FemininePlural  Gender = "fp"
)

// ParseGender accepts m, f, mp or fp.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Masculine, Feminine, MasculinePlural, FemininePlural:
		return g, nil
	}
	return Masculine, errors.New(errors.ErrCodeInvalidInput, "unknown gender %q (want m, f, mp or fp)", s)
}

// Article returns the definite article for g. Unknown tags are treated as
// masculine singular.
func (g Gender) Article() string {
	switch g {
	case Feminine:
		return "la"
	case MasculinePlural:
		return "los"
	case FemininePlural:
		return "las"
	default:
		return "el"
	}
}

// Every template contains "{art} {obj}" so the target always appears with
// its article.
var instructions = map[GameType][]string{
	Counting: {
		"¡Vamos a contar {art} {obj}!",
		"¿Me ayudas a contar {art} {obj}?",
		"¡Busca y toca {art} {obj}!",
		"¡Contemos juntos {art} {obj}!",
		"¡Toca uno por uno {art} {obj}!",
	},
	FaceParts: {
		"¿Dónde está {art} {obj}?",
		"¡Toca {art} {obj} de Maya!",
		"¡Maya quiere que busques {art} {obj}!",
		"¿Puedes encontrar {art} {obj}?",
		"¡Señala {art} {obj} de la monita!",
	},
	Shapes: {
		"¿Dónde está {art} {obj}?",
		"¡Busca {art} {obj} de colores!",
		"¡Toca {art} {obj} ahora!",
		"¿Puedes ver {art} {obj}?",
	},
	Sizes: {
		"¡Toca {art} {obj}!",
		"¿Cuál es {art} {obj}?",
		"¡Busca {art} {obj}!",
	},
	Colors: {
		"¡Toca {art} {obj}!",
		"¿Dónde está {art} {obj}?",
		"¡Encuentra {art} {obj}!",
	},
	Patterns: {
		"¿Qué sigue? ¡Busca {art} {obj}!",
		"¡Completa el patrón con {art} {obj}!",
	},
	Drawing: {
		"¡Vamos a dibujar {art} {obj}!",
		"¿Puedes dibujar {art} {obj}?",
		"¡Pinta {art} {obj} con tus colores favoritos!",
	},
}

const genericInstruction = "Busca {art} {obj}"

var encouragements = []string{
	"¡Lo hiciste genial!",
	"¡Eres increíble!",
	"¡Muy bien hecho!",
	"¡Qué inteligente!",
	"¡Sigue así, campeón!",
	"¡Excelente trabajo!",
	"¡Me encanta cómo juegas!",
}

// Fixed lines spoken by the games.
const (
	CanvasCleared = "Lienzo reiniciado."
	TryAgain      = "¡Ese no!"
)

// Phrasebook picks phrases from the static pools.
type Phrasebook struct {
	pick func(n int) int
}

// NewPhrasebook returns a phrasebook choosing with pick, which must return
// a value in [0, n). A nil pick uses math/rand.
func NewPhrasebook(pick func(n int) int) *Phrasebook {
	if pick == nil {
		pick = rand.IntN
	}
	return &Phrasebook{pick: pick}
}

// Templates returns the instruction pool for game, or the generic template
// for an unknown tag.
func Templates(game GameType) []string {
	if pool, ok := instructions[game]; ok {
		return pool
	}
	return []string{genericInstruction}
}

// Instruction returns a random instruction for game with the target and its
// article filled in.
func (p *Phrasebook) Instruction(game GameType, target string, g Gender) string {
	pool := Templates(game)
	return Fill(pool[p.pick(len(pool))], target, g)
}

// Encouragement returns a random celebratory phrase. buddy and activity do
// not affect the choice.
func (p *Phrasebook) Encouragement(buddy, activity string) string {
	return encouragements[p.pick(len(encouragements))]
}

// Fill interpolates a template. The target is NFC-normalised.
func Fill(template, target string, g Gender) string {
	obj := norm.NFC.String(strings.TrimSpace(target))
	return strings.NewReplacer("{art}", g.Article(), "{obj}", obj).Replace(template)
}
