// Package domain holds the card entity, its validation rules and the
// sentinel errors shared by the store, service and API layers.
package domain
