package tex2yaml

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()

	doc := parseFixture(t)
	path := filepath.Join(t.TempDir(), "resumes.db")
	ix, err := BuildIndex(context.Background(), path, []IndexDocument{
		{Name: "fixture", Path: "fixture.tex", Doc: doc},
	})
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestBuildIndexAndQuery(t *testing.T) {
	ix := buildTestIndex(t)
	ctx := context.Background()

	t.Run("work history rows carry entry metadata", func(t *testing.T) {
		items, err := ix.ItemsBySectionType(ctx, TypeWorkHistory)
		if err != nil {
			t.Fatalf("ItemsBySectionType() error = %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d rows, want 1", len(items))
		}
		it := items[0]
		if it.ResumeName != "fixture" || it.Path != "fixture.tex" {
			t.Errorf("identity = %q/%q", it.ResumeName, it.Path)
		}
		if it.SectionName != "Experience" {
			t.Errorf("SectionName = %q", it.SectionName)
		}
		if it.Company != "Acme" || it.JobTitle != "Engineer" || it.Dates != "2020" {
			t.Errorf("entry metadata = %q/%q/%q", it.Company, it.JobTitle, it.Dates)
		}
		if it.SubsectionType != TypeWorkExperience {
			t.Errorf("SubsectionType = %q", it.SubsectionType)
		}
		if it.ItemText != "Built things" || it.ItemOrder != 0 {
			t.Errorf("item = %q order %d", it.ItemText, it.ItemOrder)
		}
	})

	t.Run("project rows carry project name", func(t *testing.T) {
		items, err := ix.ItemsBySectionType(ctx, TypeProjects)
		if err != nil {
			t.Fatalf("ItemsBySectionType() error = %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d rows, want 1", len(items))
		}
		it := items[0]
		if it.ProjectName != "Side Thing" || it.Dates != "2019" {
			t.Errorf("project metadata = %q/%q", it.ProjectName, it.Dates)
		}
		if it.SubsectionType != TypeProject {
			t.Errorf("SubsectionType = %q", it.SubsectionType)
		}
		if it.ItemText != "Made it work" {
			t.Errorf("ItemText = %q", it.ItemText)
		}
	})

	t.Run("leaf sections indexed directly", func(t *testing.T) {
		items, err := ix.ItemsBySectionType(ctx, TypeSkillListPipes)
		if err != nil {
			t.Fatalf("ItemsBySectionType() error = %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("got %d rows, want 2", len(items))
		}
		if items[0].ItemText != "Go" || items[1].ItemText != "Python" {
			t.Errorf("items = %q, %q", items[0].ItemText, items[1].ItemText)
		}
		if items[0].SubsectionName != "" {
			t.Errorf("leaf row has subsection %q", items[0].SubsectionName)
		}
	})

	t.Run("no types queried", func(t *testing.T) {
		items, err := ix.ItemsBySectionType(ctx)
		if err != nil {
			t.Fatalf("ItemsBySectionType() error = %v", err)
		}
		if items != nil {
			t.Errorf("got %v, want nil", items)
		}
	})
}

func TestIndexAllBullets(t *testing.T) {
	ix := buildTestIndex(t)

	items, err := ix.AllBullets(context.Background())
	if err != nil {
		t.Fatalf("AllBullets() error = %v", err)
	}
	got := map[string]bool{}
	for _, it := range items {
		got[it.ItemText] = true
	}
	for _, want := range []string{"Built things", "Made it work"} {
		if !got[want] {
			t.Errorf("bullets missing %q: %v", want, items)
		}
	}
}

func TestIndexAllSkills(t *testing.T) {
	ix := buildTestIndex(t)

	items, err := ix.AllSkills(context.Background())
	if err != nil {
		t.Fatalf("AllSkills() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d skill rows, want 2", len(items))
	}
	if items[0].ItemText != "Go" {
		t.Errorf("first skill = %q", items[0].ItemText)
	}
}

func TestOpenIndex(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := OpenIndex(filepath.Join(t.TempDir(), "absent.db"))
		if !errors.Is(err, ErrIndexNotFound) {
			t.Errorf("error = %v, want ErrIndexNotFound", err)
		}
	})

	t.Run("reopen built index", func(t *testing.T) {
		doc := parseFixture(t)
		path := filepath.Join(t.TempDir(), "resumes.db")
		ix, err := BuildIndex(context.Background(), path, []IndexDocument{
			{Name: "fixture", Path: "fixture.tex", Doc: doc},
		})
		if err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}
		if err := ix.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		reopened, err := OpenIndex(path)
		if err != nil {
			t.Fatalf("OpenIndex() error = %v", err)
		}
		defer reopened.Close()
		if reopened.Path() != path {
			t.Errorf("Path() = %q", reopened.Path())
		}

		items, err := reopened.AllBullets(context.Background())
		if err != nil {
			t.Fatalf("AllBullets() error = %v", err)
		}
		if len(items) == 0 {
			t.Error("reopened index has no rows")
		}
	})
}

func TestBuildIndexReplacesExisting(t *testing.T) {
	doc := parseFixture(t)
	path := filepath.Join(t.TempDir(), "resumes.db")
	ctx := context.Background()

	first, err := BuildIndex(ctx, path, []IndexDocument{
		{Name: "a", Path: "a.tex", Doc: doc},
		{Name: "b", Path: "b.tex", Doc: doc},
	})
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	first.Close()

	second, err := BuildIndex(ctx, path, []IndexDocument{
		{Name: "c", Path: "c.tex", Doc: doc},
	})
	if err != nil {
		t.Fatalf("rebuild error = %v", err)
	}
	defer second.Close()

	items, err := second.AllBullets(ctx)
	if err != nil {
		t.Fatalf("AllBullets() error = %v", err)
	}
	for _, it := range items {
		if it.ResumeName != "c" {
			t.Fatalf("stale row from %q survived the rebuild", it.ResumeName)
		}
	}
}
