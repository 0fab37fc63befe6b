// Package discovery locates language server executables.
//
// A name containing a path separator is used as given and must exist. A bare
// name is searched for in the following order:
//  1. The system PATH
//  2. Common installation directories (/usr/local/bin, /usr/bin,
//     ~/.local/bin, ~/go/bin, ~/.cargo/bin)
//
// When nothing matches, Discover returns an ExecutableNotFoundError listing
// every location that was checked.
package discovery
