// Package runtime repairs documents against a template registry.
//
// The Normalizer restores slot completeness and order under template
// nodes; the RootEnforcer keeps document roots down to a single policy
// template. Both are exposed as model post-fixers and report whether they
// changed anything, so the document's fixpoint driver can rerun them.
package runtime
