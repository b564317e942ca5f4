// Package convert turns markup into model nodes and back.
//
// Generate derives the conversion rules of a template registry: one upcast
// rule, one data downcast, one editing downcast and a set of attribute
// mirroring rules per template node. A Pipeline applies them to documents.
package convert
