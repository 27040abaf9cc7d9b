package ast

import (
	"strings"
	"testing"
)

func TestPrintSumTypeHeader(t *testing.T) {
	m := &Module{
		Name: []string{"m"},
		Items: []Item{
			&TypeAlias{
				IsPublic: true,
				Name:     "Option",
				Params:   []string{"T"},
				Value: &TypeSum{
					Variants: []VariantType{
						{Name: "Some", Fields: []TypeExpr{&TypeName{Path: Path{Segments: []string{"T"}}}}},
						{Name: "None"},
					},
				},
			},
		},
	}

	got := Print(m)
	want := "pub type Option[T] = Some(T) | None"
	if !strings.Contains(got, want) {
		t.Errorf("Print() = %q, want substring %q", got, want)
	}
}

func TestPrintFunctionSignature(t *testing.T) {
	m := &Module{
		Name: []string{"m"},
		Items: []Item{
			&Function{
				Name: "f",
				Params: []Param{
					{Name: "x", Type: &TypeName{Path: Path{Segments: []string{"Int"}}}},
				},
				ReturnType: &TypeName{Path: Path{Segments: []string{"Int"}}},
				EffectRow:  []string{"io"},
			},
		},
	}

	got := Print(m)
	want := "fn f(x: Int) -> Int !{io}"
	if !strings.Contains(got, want) {
		t.Errorf("Print() = %q, want substring %q", got, want)
	}
}
