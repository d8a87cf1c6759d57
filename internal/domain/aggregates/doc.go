// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence/transport implementation details and represent
// semantic write boundaries where invariants must be enforced atomically.
package aggregates
