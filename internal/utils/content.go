package utils

import (
	"math/rand/v2"
	"slices"
)

// Letters excludes K and W: too few words start with them.
var Letters = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "L", "M", "N",
	"O", "P", "Q", "R", "S", "T", "U", "V", "X", "Y", "Z",
}

var Categories = []string{
	"Herramienta", "Animal", "Cuerpo humano", "Adjetivo", "Ciudad", "País",
	"Profesión", "Deporte", "Alimento", "Cantante o grupo musical",
	"Película", "Serie de TV", "Persona famosa", "Marca",
}

// Picker draws the letter and category of a round.
type Picker interface {
	RandomLetter() string
	RandomCategory() string
}

type RandomPicker struct {
	letters    []string
	categories []string
}

// NewRandomPicker falls back to the built-in tables for empty inputs.
func NewRandomPicker(letters, categories []string) *RandomPicker {
	if len(letters) == 0 {
		letters = Letters
	}
	if len(categories) == 0 {
		categories = Categories
	}
	return &RandomPicker{
		letters:    slices.Clone(letters),
		categories: slices.Clone(categories),
	}
}

func (p *RandomPicker) RandomLetter() string {
	return p.letters[rand.IntN(len(p.letters))]
}

func (p *RandomPicker) RandomCategory() string {
	return p.categories[rand.IntN(len(p.categories))]
}
