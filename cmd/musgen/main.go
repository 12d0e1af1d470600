package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/nomatterpluda/browser-history-search/core"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// If we're in the core subpackage, cd up to project root
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/nomatterpluda/browser-history-search/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.Dwell]())

	// Unix micro timestamps
	micros := typeops.WithTimeUnit(typeops.Micro)

	// URL, Title, Content, ExtractedAt, StoredAt, TimeOnPage, Processed,
	// EmbeddingGeneratedAt
	err = g.AddStruct(reflect.TypeFor[core.ExtractedContent](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micros),
		structops.WithField(micros),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micros))
	if err != nil {
		panic(err)
	}

	// URL, Embedding, Tokens, GeneratedAt, ContentLength
	err = g.AddStruct(reflect.TypeFor[core.EmbeddingRecord](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micros),
		structops.WithField())
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.Screenshot](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micros),
		structops.WithField(micros))
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.Settings](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(micros))
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.Stats](),
		structops.WithField(),
		structops.WithField(micros))
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	err = os.WriteFile("./core/records_mus.gen.go", bs, 0644)
	if err != nil {
		panic(err)
	}
}
