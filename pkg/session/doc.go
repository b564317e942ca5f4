/*
Package session serializes edits of stored documents.

A Manager wraps a ports.DocumentStore so that load-normalize-save cycles on
the same document never interleave: within a process through reference
counted mutexes, and across replicas through an optional
ports.DistributedLocker.
*/
package session
