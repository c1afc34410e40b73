// Package api handles incoming HTTP requests, request validation and
// response formatting for the card service. Handlers are thin adapters:
// they resolve the owner from the request context, decode and validate the
// payload, call one service operation and map its result or error to JSON.
package api
