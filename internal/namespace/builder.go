package namespace

import (
	"errors"
	"fmt"

	"github.com/nvandessel/procsim/internal/signal"
)

// SimulationFolder is the browse name of the container holding the
// simulated variables.
const SimulationFolder = "Simulation"

// ErrAlreadyBuilt is returned when Build runs a second time on a space.
var ErrAlreadyBuilt = errors.New("simulation namespace already built")

// Build creates the Simulation container under parent and one variable per
// definition. It may run at most once per space; any error means the
// namespace is unusable and startup must be aborted.
func Build(space *Space, parent *Node, defs []signal.Definition) (*Node, error) {
	space.mu.Lock()
	if space.built {
		space.mu.Unlock()
		return nil, ErrAlreadyBuilt
	}
	space.built = true
	space.mu.Unlock()

	folder, err := space.CreateContainer(parent, SimulationFolder)
	if err != nil {
		return nil, fmt.Errorf("creating %s container: %w", SimulationFolder, err)
	}

	for _, d := range defs {
		_, err := space.CreateVariable(folder, VariableSpec{
			Name:        d.Name,
			DisplayName: d.DisplayName,
			Type:        d.Type,
			Evaluator:   d.Evaluator,
		})
		if err != nil {
			return nil, fmt.Errorf("creating variable %s: %w", d.Name, err)
		}
	}

	return folder, nil
}
