/*
Package matcher resolves pathnames against a route tree and resolves
relative link targets against a matched branch.

Matching is a depth-first descent: at each level siblings are tried in
declaration order and the first complete match wins, backtracking out of
partial matches. Literal segments match exactly, ":name" binds one segment,
"*name" binds the rest of the path, and an index route (empty path) matches
only once the path is exhausted.

ResolvePath treats the basename like a chroot jail: ".." never climbs
above it.
*/
package matcher
