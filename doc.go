/*
Package sections is a template-driven structural document engine.

A set of declarative node templates (tag name, required classes, attributes and
ordered child slots) is compiled once into a registry. From that registry the
engine derives a schema that constrains legal structure, bidirectional
converters between HTML markup and an internal document model, and repair
passes that keep every templated node complete and ordered after each change.

# Concept

Templates are plain markup. Every element of a template becomes a template node
with a qualified model name. Elements marked with ck-editable-type are
editable: "text" nodes hold inline text, "container" nodes hold a list of other
templates. Children of a template node are its slots.

	<div class="teaser">
	  <h2 class="title" ck-editable-type="text">Title</h2>
	  <div class="body" ck-editable-type="text">Body</div>
	</div>

When a document is attached to an Engine, post-fixers run after every change
block until the document reaches a fixpoint: missing slots are created, slots
are put back in declared order, and, when a root policy is configured, each
document root holds exactly one instance of the policy template.

# Usage

Initialize the engine from a directory of templates (read through Loam) or
inject them directly.

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/sections"
		"github.com/aretw0/sections/pkg/template"
	)

	func main() {
		eng, err := sections.New("", sections.WithTemplates(template.Definition{
			Name:   "teaser",
			Markup: `<div class="teaser"><h2 class="title" ck-editable-type="text">Title</h2></div>`,
		}))
		if err != nil {
			log.Fatal(err)
		}

		res, err := eng.Normalize(`<div class="teaser"></div>`)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.HTML)
	}

# Architecture

  - pkg/template: template parsing, qualified names and the registry.
  - pkg/schema: structural rules derived from the registry.
  - pkg/convert: upcast (markup to model) and downcast (model to markup).
  - pkg/model: the document arena, change blocks and the fixpoint driver.
  - internal/runtime: slot normalization and the root policy.
  - pkg/adapters: template sources, document stores, HTTP and MCP surfaces.
*/
package sections
