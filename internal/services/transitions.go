package services

import "shiftops/internal/models"

// Allowed transfer-status transitions. Terminal states have no exits, so a
// resolved transfer can never move again.
var TransferTransitions = map[models.TransferStatus]map[models.TransferStatus]bool{
	models.TransferPendingTransferee: {
		models.TransferPendingManager: true,
		models.TransferRejected:       true,
	},
	models.TransferPendingManager: {
		models.TransferApproved: true,
		models.TransferRejected: true,
	},
	models.TransferApproved: {},
	models.TransferRejected: {},
}

func canTransition(current, to models.TransferStatus) bool {
	nexts, ok := TransferTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
