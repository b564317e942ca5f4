/*
Package template parses template markup into an immutable tree of template
nodes and keeps them in a Registry.

Every element of a template definition becomes a Node. Nodes are addressed by
a qualified name built from the parent chain, so two elements with the same
tag and classes but different ancestry register as distinct model types:

	ck-templates__card             <div class="card">
	ck-templates__card__title      <h2 ck-name="title">
	ck-templates__card__child1     <div class="body">

Which Kind constructs a node is decided by an ordered list of kinds: the first
kind whose Applies predicate accepts the element wins.
*/
package template
