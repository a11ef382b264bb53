package contract

import "github.com/Boiya123/agritrack-ledger/internal/contract/model"

// Authorize checks the caller's asserted role against the role an operation
// requires. RoleAdmin satisfies every check; RoleAny admits every caller.
// Each mutating operation declares exactly one required role.
func Authorize(caller, required model.Role) error {
	if required == model.RoleAny || caller == required || caller == model.RoleAdmin {
		return nil
	}
	return &model.AuthorizationError{Caller: caller, Required: required}
}
