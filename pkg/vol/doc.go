// Package vol is the connector dispatch core of voltree: it routes every
// logical operation on the object model (files, groups, datasets, named
// datatypes, attributes, links, references) to one of several
// interchangeable storage back-ends.
//
// A back-end registers a ClassDescriptor with the Registry and becomes a
// connector class. Open objects are connector private values wrapped
// together with their container's Binding and stored under handles; the
// dispatch trampolines validate arguments, resolve the class capability
// and forward, never interpreting connector private state. Location
// parameters (Loc) give all connectors one shared addressing vocabulary.
//
// The core performs no locking; the embedding application serializes its
// calls. Asynchronous completion is forwarded through Request tokens
// owned by the caller.
package vol
