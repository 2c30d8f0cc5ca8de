package ui

import (
	"bytes"
	"testing"

	"github.com/vanderheijden86/treetable/pkg/model"
	"github.com/vanderheijden86/treetable/pkg/tree"
)

func TestWritePlain(t *testing.T) {
	v := tree.NewView(model.MenuAccessor)
	v.SetForest(consoleMenus())

	var buf bytes.Buffer
	if err := WritePlain(&buf, v, menuLabel, 2); err != nil {
		t.Fatalf("WritePlain failed: %v", err)
	}

	want := "▾ Students\n" +
		"  • List\n" +
		"  ▸ Enrolment\n" +
		"▾ Admin\n" +
		"  • Users\n" +
		"• Home\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWritePlainEmpty(t *testing.T) {
	v := tree.NewView(model.MenuAccessor)
	v.SetForest(nil)

	var buf bytes.Buffer
	if err := WritePlain(&buf, v, menuLabel, -1); err != nil {
		t.Fatalf("WritePlain failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
