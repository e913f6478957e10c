// Package fetch retrieves raw project payloads, either over HTTP (static host
// or tracker API) or from a local export tree. Decoding is left to the graph
// package.
package fetch
