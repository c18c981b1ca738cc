// Package calendar provides the trading calendar used to enumerate days.
//
// A Calendar is immutable once built and is passed explicitly to every
// component that needs trading days. There is no package-level calendar.
package calendar
