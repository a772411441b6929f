package tex2yaml

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Section types whose items hang off subsections.
var branchSectionTypes = map[string]bool{
	TypeProjects:        true,
	TypeSkillCategories: true,
}

// Section types whose items live directly in the section.
var leafSectionTypes = map[string]bool{
	TypeSkillListCaps:  true,
	TypeSkillListPipes: true,
	TypePersonality:    true,
	TypeCustomItemize:  true,
	TypeSimpleList:     true,
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,

	resume_name TEXT NOT NULL,
	path TEXT NOT NULL,

	section_name TEXT NOT NULL,
	section_type TEXT NOT NULL,
	subsection_name TEXT,
	subsection_type TEXT,

	item_text TEXT NOT NULL,
	item_order INTEGER NOT NULL,

	company TEXT,
	job_title TEXT,
	dates TEXT,
	project_name TEXT
);
CREATE INDEX IF NOT EXISTS idx_section_type ON items(section_type);
CREATE INDEX IF NOT EXISTS idx_resume_name ON items(resume_name);
`

const insertItemSQL = `
INSERT INTO items (
	resume_name, path, section_name, section_type,
	subsection_name, subsection_type,
	item_text, item_order,
	company, job_title, dates, project_name
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// IndexItem is one row of the content index.
type IndexItem struct {
	ResumeName     string
	Path           string
	SectionName    string
	SectionType    string
	SubsectionName string
	SubsectionType string
	ItemText       string
	ItemOrder      int
	Company        string
	JobTitle       string
	Dates          string
	ProjectName    string
}

// IndexDocument pairs a parsed document with its identity on disk.
type IndexDocument struct {
	Name string
	Path string
	Doc  *Document
}

// Index is a persistent queryable store of item texts across parsed
// documents, with the hierarchy flattened into per-row metadata.
type Index struct {
	db   *sql.DB
	path string
}

// OpenIndex loads an existing index database.
// To create a new one, use BuildIndex.
func OpenIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	return &Index{db: db, path: path}, nil
}

// BuildIndex creates a fresh index at path from the given documents,
// replacing any existing database file.
func BuildIndex(ctx context.Context, path string, docs []IndexDocument) (*Index, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing old index: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	ix := &Index{db: db, path: path}
	for _, d := range docs {
		if err := ix.addDocument(ctx, d); err != nil {
			db.Close()
			return nil, fmt.Errorf("indexing %s: %w", d.Name, err)
		}
	}
	return ix, nil
}

// Close releases the database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the database file location.
func (ix *Index) Path() string {
	return ix.path
}

// ItemsBySectionType returns all items from sections of the given
// type(s), in insertion order.
func (ix *Index) ItemsBySectionType(ctx context.Context, sectionTypes ...string) ([]IndexItem, error) {
	if len(sectionTypes) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sectionTypes)), ",")
	args := make([]any, len(sectionTypes))
	for i, t := range sectionTypes {
		args[i] = t
	}
	return ix.queryItems(ctx,
		"SELECT resume_name, path, section_name, section_type, "+
			"COALESCE(subsection_name, ''), COALESCE(subsection_type, ''), "+
			"item_text, item_order, "+
			"COALESCE(company, ''), COALESCE(job_title, ''), COALESCE(dates, ''), COALESCE(project_name, '') "+
			"FROM items WHERE section_type IN ("+placeholders+") ORDER BY id",
		args...)
}

// AllSkills returns every item from skill sections across all
// documents.
func (ix *Index) AllSkills(ctx context.Context) ([]IndexItem, error) {
	return ix.ItemsBySectionType(ctx,
		TypeSkillListCaps, TypeSkillListPipes, TypeSkillCategory, TypeSkillCategories)
}

// AllBullets returns every bullet from work and project sections across
// all documents.
func (ix *Index) AllBullets(ctx context.Context) ([]IndexItem, error) {
	return ix.ItemsBySectionType(ctx,
		TypeWorkHistory, TypeProjects, TypeWorkExperience, TypeProject)
}

func (ix *Index) queryItems(ctx context.Context, query string, args ...any) ([]IndexItem, error) {
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var items []IndexItem
	for rows.Next() {
		var it IndexItem
		err := rows.Scan(
			&it.ResumeName, &it.Path, &it.SectionName, &it.SectionType,
			&it.SubsectionName, &it.SubsectionType,
			&it.ItemText, &it.ItemOrder,
			&it.Company, &it.JobTitle, &it.Dates, &it.ProjectName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// addDocument flattens one document's sections into item rows inside a
// single transaction.
func (ix *Index) addDocument(ctx context.Context, d IndexDocument) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertItemSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	view := NewView(d.Doc)
	for _, sec := range view.Sections() {
		row := IndexItem{
			ResumeName:  d.Name,
			Path:        d.Path,
			SectionName: sec.Name(),
			SectionType: sec.Type(),
		}
		if err := addSectionRows(ctx, stmt, sec, row); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func addSectionRows(ctx context.Context, stmt *sql.Stmt, sec Section, row IndexItem) error {
	switch t := sec.Type(); {
	case t == TypeWorkHistory:
		for _, sub := range nestedList(sec, "subsections") {
			m, ok := sub.(map[string]any)
			if !ok {
				continue
			}
			if err := addWorkEntryRows(ctx, stmt, m, row); err != nil {
				return err
			}
		}
		return nil

	case branchSectionTypes[t]:
		for _, sub := range nestedList(sec, "subsections") {
			m, ok := sub.(map[string]any)
			if !ok {
				continue
			}
			sr := row
			sr.SubsectionName = GetString(m, "metadata.name")
			sr.SubsectionType, _ = m["type"].(string)
			if sr.SubsectionType == TypeProject {
				sr.ProjectName = sr.SubsectionName
				sr.Dates = GetString(m, "metadata.dates")
			}
			if err := addItemRows(ctx, stmt, SectionItems(Section(m), ModeRich), sr); err != nil {
				return err
			}
		}
		return nil

	case leafSectionTypes[t]:
		return addItemRows(ctx, stmt, SectionItems(sec, ModeRich), row)

	default:
		return nil
	}
}

func addWorkEntryRows(ctx context.Context, stmt *sql.Stmt, m map[string]any, row IndexItem) error {
	row.Company = GetString(m, "metadata.company")
	row.JobTitle = GetString(m, "metadata.title")
	row.Dates = GetString(m, "metadata.dates")
	row.SubsectionName = row.Company
	row.SubsectionType = TypeWorkExperience

	bullets := itemTexts(nestedList(m, "content.bullets"), ModeRich)
	if err := addItemRows(ctx, stmt, bullets, row); err != nil {
		return err
	}

	for _, p := range nestedList(m, "content.projects") {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		pr := row
		pr.SubsectionType = TypeProject
		pr.ProjectName = GetString(pm, "metadata.name")
		projBullets := itemTexts(nestedList(pm, "content.bullets"), ModeRich)
		if err := addItemRows(ctx, stmt, projBullets, pr); err != nil {
			return err
		}
	}
	return nil
}

func addItemRows(ctx context.Context, stmt *sql.Stmt, items []string, row IndexItem) error {
	for i, text := range items {
		_, err := stmt.ExecContext(ctx,
			row.ResumeName, row.Path, row.SectionName, row.SectionType,
			nullable(row.SubsectionName), nullable(row.SubsectionType),
			text, i,
			nullable(row.Company), nullable(row.JobTitle), nullable(row.Dates), nullable(row.ProjectName),
		)
		if err != nil {
			return fmt.Errorf("inserting item: %w", err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
