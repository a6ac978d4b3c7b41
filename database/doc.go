// Package database opens pooled database clients on top of Bun. A Provider
// memoizes one Client per connection string and can retain it in a Slot
// across provider re-creation outside production.
package database
