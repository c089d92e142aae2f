// Package services implements the driving port interfaces.
// Services contain the core search logic - retrieval strategy selection,
// weighted score fusion, recency boosting, highlight generation, and
// facet policy - and orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external dependencies beyond errgroup.
package services
