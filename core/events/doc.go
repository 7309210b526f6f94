// Package events defines the event types published on the internal bus while
// a fetch cycle runs.
package events
