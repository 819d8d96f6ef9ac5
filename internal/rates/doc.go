// Package rates resolves the second-lowest-cost plan rate for a list of ZIP
// codes. It joins the ZIP-to-rate-area table against plan rates at a single
// metal level, drops ZIP codes that span more than one rate area, and ranks
// the remaining candidates. Everything here is pure and holds no state.
package rates
