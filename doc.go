// Package termwise is an exact-arithmetic kernel for solving systems of
// linear equations one step at a time.
//
// Design goals:
//   - Equations are immutable trees over exact rationals (math/big.Rat)
//   - Every transform preserves the solution set, or fails and leaves the
//     equation as it was
//   - Sums are displayed as signed term lists that can be dragged, merged
//     and distributed
//   - Sessions and a tool-call API for CLI, HTTP and MCP front ends
package termwise
