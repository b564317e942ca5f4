/*
Package ports defines the driven ports (interfaces) for the sections engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends and template sources.

# Key Interfaces

  - TemplateSource: Responsible for loading template definitions (e.g., from Loam or Memory).
  - DocumentStore: Responsible for persisting and loading documents.
  - DistributedLocker: Provides locking for read-modify-write cycles on stored documents.
*/
package ports
