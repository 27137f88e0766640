package pipeline

import "fmt"

// ContractError reports a stage that ran against a context missing one
// of its required keys, or that returned without populating one of its
// promised keys. Either way the pipeline definition itself is wrong, so
// the engine fails the run immediately instead of retrying.
type ContractError struct {
	Stage string
	Key   Key
	Pre   bool
}

func (e *ContractError) Error() string {
	if e.Pre {
		return fmt.Sprintf("stage %q requires %q which is not in the context", e.Stage, e.Key)
	}
	return fmt.Sprintf("stage %q promised %q but did not populate it", e.Stage, e.Key)
}
