package section_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/agent-patch/internal/section"
)

func TestSplice_Inserts_Block_Between_Sections(t *testing.T) {
	t.Parallel()

	doc := "BOUNDARIES\n" +
		"- Do NOT write to production\n" +
		"- Do NOT skip tests\n" +
		"\n" +
		"WORKFLOW\n" +
		"...\n"

	want := "BOUNDARIES\n" +
		"- Do NOT write to production\n" +
		"- Do NOT skip tests\n" +
		"\n" +
		"NEW SECTION\n" +
		"- item one\n" +
		"\n" +
		"WORKFLOW\n" +
		"...\n"

	pt, err := section.Locate(doc, "BOUNDARIES")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	got := section.Splice(doc, pt, "NEW SECTION\n- item one\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("spliced text mismatch (-want +got):\n%s", diff)
	}
}

func TestSplice_Preserves_Every_Original_Byte(t *testing.T) {
	t.Parallel()

	docs := []string{
		boundariesDoc,
		"BOUNDARIES\n- a\n\nN",
		"PREAMBLE\n- x\n\nBOUNDARIES\n- a\n- b\n- c\n\nNEXT\n- y\n\nLAST\n- z\n",
	}

	block := "INSERTED\n- one\n- two\n"

	for _, doc := range docs {
		pt, err := section.Locate(doc, "BOUNDARIES")
		if err != nil {
			t.Fatalf("Locate(%q): %v", doc, err)
		}

		got := section.Splice(doc, pt, block)

		k := pt.NextHeading
		if want := doc[:k] + block + "\n" + doc[k:]; got != want {
			t.Errorf("splice at NextHeading:\n got=%q\nwant=%q", got, want)
		}

		if want := doc[:pt.BlankLine] + "\n" + block + "\n" + doc[pt.NextHeading:]; got != want {
			t.Errorf("splice at BlankLine:\n got=%q\nwant=%q", got, want)
		}
	}
}

func TestSplice_Panics_On_Invalid_Point(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	section.Splice("short", section.Point{BlankLine: 10, NextHeading: 11}, "X\n")
}

func TestHeadings_Lists_Heading_Lines_In_Order(t *testing.T) {
	t.Parallel()

	got := section.Headings("intro text\nROLE\n- a\n\nBOUNDARIES\n- b\n\nWORKFLOW")

	want := []section.Heading{
		{Name: "ROLE", Line: 2, Offset: 11},
		{Name: "BOUNDARIES", Line: 5, Offset: 21},
		{Name: "WORKFLOW", Line: 8, Offset: 37},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestIsBullet(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"- item": true,
		"- -":    true,
		"- ":     false,
		"-item":  false,
		"":       false,
		" - x":   false,
		"* item": false,
	}

	for line, want := range tests {
		if got := section.IsBullet(line); got != want {
			t.Errorf("IsBullet(%q)=%v, want=%v", line, got, want)
		}
	}
}
