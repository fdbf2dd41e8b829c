// Package security implements the policy checks that gate tool execution.
//
// Two guards protect the host:
//
//   - CommandGuard filters shell commands through configured allow/block
//     sets, judging only the leading executable token.
//   - PathGuard decides whether a filesystem path stays inside the
//     configured project root after full canonicalization.
//
// Both guards run before the confirmation prompt; a rejection here never
// reaches the operator.
package security
