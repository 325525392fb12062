/*
Package file keeps wayfinder data on the local filesystem.

RouteFile loads a YAML or JSON route file and, through Watch, reports when
it changes so an Engine can rebuild its tree. Store persists session
snapshots as one JSON file per session.
*/
package file
