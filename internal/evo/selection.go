package evo

import (
	"cookiegen/internal/model"
)

const DefaultTournamentSize = 10

// Selector chooses a parent from the current population.
type Selector interface {
	Name() string
	PickParent(rng Rand, population []model.Recipe) (model.Recipe, error)
}

// TournamentSelector samples Size members without replacement and picks the
// fittest. Ties go to the first sampled member.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng Rand, population []model.Recipe) (model.Recipe, error) {
	if len(population) == 0 {
		return model.Recipe{}, ErrEmptySelection
	}
	size := s.Size
	if size <= 0 {
		size = DefaultTournamentSize
	}
	if size > len(population) {
		size = len(population)
	}

	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	best := -1
	for i := 0; i < size; i++ {
		j := i + rng.Intn(len(order)-i)
		order[i], order[j] = order[j], order[i]
		candidate := order[i]
		if best < 0 || population[candidate].FitnessValue() > population[best].FitnessValue() {
			best = candidate
		}
	}
	return population[best], nil
}
