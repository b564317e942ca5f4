/*
Package domain contains the shared vocabulary of the sections engine.

It defines the reserved names used by the document model (roots, text nodes,
internal attribute prefixes), the sentinel errors returned by every layer,
and the lifecycle events emitted while repair passes run. This package is
kept free of external dependencies so that every other package can import it.

# Key Entities

  - Reserved names: QualifiedPrefix, InternalPrefix, RootName, TextName, GraveyardRoot.
  - Errors: TemplateParseError and the Err* sentinels.
  - RepairEvent / LifecycleHooks: observability callbacks for repair passes.
*/
package domain
