// Package service contains the card lifecycle use cases: adding, editing and
// reviewing single cards, listing due and library views, deck rename and
// removal, bulk moves and deletes, import and export, and statistics.
//
// Every operation takes the owner id explicitly and reaches storage only
// through a store.CardStore passed in at construction time.
//
// Error handling:
//   - Expected conditions are returned as the domain or store error they are
//     (domain.ErrValidation, domain.ErrRejected, store.ErrNotFound,
//     store.ErrDuplicate) so callers can match them with errors.Is.
//   - Anything else is wrapped in a ServiceError naming the operation.
//   - Batch operations absorb uniqueness conflicts per card and report them
//     as counts instead of failing.
package service
