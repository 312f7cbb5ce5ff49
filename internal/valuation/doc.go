// Package valuation turns property facts, area statistics, comparables and
// financing assumptions into market-position indicators, advisory flags and
// intent specific metrics.
//
// Every function in this package is deterministic and side-effect free. The
// only clock dependency, the seasonal list-price adjustment, takes the month
// as an argument; Evaluator carries an injectable clock for it.
package valuation
