// Package assets resolves security ids to canonical assets and their
// listing lifetimes.
package assets
