package question

import (
	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
)

// Themes offered by the game client.
const (
	ThemeGeral     = "geral"
	ThemeFutebol   = "futebol"
	ThemeCulinaria = "culinaria"
	ThemeCiencias  = "ciencias"
	ThemeHistoria  = "historia"
	ThemeGeografia = "geografia"
	ThemeMusica    = "musica"
	ThemeFilmes    = "filmes"
	ThemeAnimais   = "animais"
	ThemeEsportes  = "esportes"
)

// Difficulty levels.
const (
	DifficultyFacil   = "facil"
	DifficultyMedio   = "medio"
	DifficultyDificil = "dificil"
)

// Age groups.
const (
	AgeCrianca     = "crianca"
	AgeAdolescente = "adolescente"
	AgeAdulto      = "adulto"
)

// DefaultBatchSize is how many pairs a single generation asks for.
const DefaultBatchSize = 20

var difficultyDescriptions = map[string]string{
	DifficultyFacil:   "fácil, com perguntas simples e óbvias",
	DifficultyMedio:   "médio, com perguntas que exigem algum conhecimento",
	DifficultyDificil: "difícil, com perguntas desafiadoras que exigem conhecimento aprofundado",
}

var ageDescriptions = map[string]string{
	AgeCrianca:     "crianças de 6 a 12 anos",
	AgeAdolescente: "adolescentes de 13 a 17 anos",
	AgeAdulto:      "adultos com 18 anos ou mais",
}

// DifficultyDescription returns the prompt wording for a difficulty, or the raw value when unknown.
func DifficultyDescription(difficulty string) string {
	if d, ok := difficultyDescriptions[difficulty]; ok {
		return d
	}
	return difficulty
}

// AgeDescription returns the prompt wording for an age group, or the raw value when unknown.
func AgeDescription(ageGroup string) string {
	if d, ok := ageDescriptions[ageGroup]; ok {
		return d
	}
	return ageGroup
}

// Request is the public question request. Values outside the known enumerations are
// accepted and passed through to the prompt.
type Request struct {
	Theme      string `json:"theme" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
	AgeGroup   string `json:"ageGroup" validate:"required"`
}

// Partition returns the pool key the request draws from.
func (r Request) Partition() repository.Partition {
	return repository.Partition{
		Theme:      r.Theme,
		Difficulty: r.Difficulty,
		AgeGroup:   r.AgeGroup,
	}
}

// Result is the payload delivered to the game client.
type Result struct {
	Question       string `json:"pergunta"`
	Answer         string `json:"resposta"`
	FromCache      bool   `json:"fromCache"`
	BatchGenerated int    `json:"batchGenerated,omitempty"`
}

// Pair is one normalized question/answer produced by the generator.
type Pair struct {
	Question string
	Answer   string
}

// PartitionCount summarizes one pool for the admin overview.
type PartitionCount struct {
	Theme      string `json:"theme"`
	Difficulty string `json:"difficulty"`
	AgeGroup   string `json:"ageGroup"`
	Total      int64  `json:"total"`
	Unused     int64  `json:"unused"`
}
