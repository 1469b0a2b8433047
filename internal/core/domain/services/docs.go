// Package services contains domain logic that spans more than one aggregate.
// Timeline merges status changes and notes of an order into one display order
// and applies the internal note visibility rule.
package services
