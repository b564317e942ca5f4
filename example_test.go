package sections_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/template"
)

// ExampleNew_memory demonstrates how to use the Engine with templates defined in code.
// This is useful for testing, embedded scenarios, or when you don't want to rely on the file system.
func ExampleNew_memory() {
	eng, err := sections.New("", sections.WithTemplates(template.Definition{
		Name:   "quote",
		Markup: `<blockquote class="quote"><p class="text" ck-name="text" ck-editable-type="text"></p><cite class="author" ck-name="author" ck-editable-type="text"></cite></blockquote>`,
	}))
	if err != nil {
		log.Fatal(err)
	}

	// The author comes first and the text is missing: both get repaired.
	res, err := eng.Normalize(`<blockquote class="quote"><cite class="author">Ada</cite></blockquote>`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.HTML)
	fmt.Println(res.Changed)
	// Output:
	// <blockquote class="quote"><p class="text"></p><cite class="author">Ada</cite></blockquote>
	// true
}

// ExampleEngine_Editing shows attribute changes reaching the editing view.
func ExampleEngine_Editing() {
	eng, err := sections.New("", sections.WithTemplates(template.Definition{
		Name:   "note",
		Markup: `<aside class="note"><p class="text" ck-name="text" ck-editable-type="text"></p></aside>`,
	}))
	if err != nil {
		log.Fatal(err)
	}

	doc, _, err := eng.Load(context.Background(), `<aside class="note"><p class="text">Hi</p></aside>`)
	if err != nil {
		log.Fatal(err)
	}
	view := eng.Editing(doc)
	defer view.Close()

	note := doc.Children(doc.Root(domain.MainRoot))[0]
	_ = doc.Change(func(w *model.Writer) error {
		return w.SetAttribute(note, "data-x", "1")
	})

	html, _ := view.HTML()
	fmt.Println(html)
	// Output:
	// <aside class="note ck-widget" contenteditable="false" data-x="1"><p class="text" contenteditable="true">Hi</p></aside>
}
