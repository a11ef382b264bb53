package contract

import "github.com/Boiya123/agritrack-ledger/internal/contract/model"

// transitionTable maps a current status to the set of statuses it may move
// to. A status mapped to an empty set is terminal; a status absent from the
// table is unknown and every transition out of it fails.
type transitionTable map[model.Status][]model.Status

// Batches and transports share one production lifecycle.
var productionTransitions = transitionTable{
	model.StatusCreated:    {model.StatusInProgress, model.StatusCancelled},
	model.StatusInProgress: {model.StatusCompleted, model.StatusFailed, model.StatusCancelled},
	model.StatusCompleted:  {},
	model.StatusFailed:     {model.StatusInProgress},
	model.StatusCancelled:  {},
}

// Certifications are issued directly APPROVED; APPROVED is terminal.
var certificationTransitions = transitionTable{
	model.StatusApproved: {},
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusRejected: {model.StatusPending},
}

var regulatoryTransitions = transitionTable{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusRejected: {model.StatusPending},
	model.StatusApproved: {},
}

func tableFor(kind model.Kind) transitionTable {
	switch kind {
	case model.KindBatch, model.KindTransport:
		return productionTransitions
	case model.KindCertification:
		return certificationTransitions
	case model.KindRegulatory:
		return regulatoryTransitions
	default:
		return nil
	}
}

// ValidateTransition checks that current -> next is present in the table for
// the given asset kind. An unknown current status is itself an error, so
// terminal and corrupt states are both absorbing.
func ValidateTransition(kind model.Kind, current, next model.Status) error {
	table := tableFor(kind)
	allowed, known := table[current]
	if !known {
		return &model.TransitionError{Kind: kind, From: current, To: next}
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return &model.TransitionError{Kind: kind, From: current, To: next}
}
