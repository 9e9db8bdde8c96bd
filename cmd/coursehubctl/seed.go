package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
)

type catalogFile struct {
	Programs []programSeed `yaml:"programs"`
}

type programSeed struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Published   bool           `yaml:"published"`
	Categories  []categorySeed `yaml:"categories"`
}

type categorySeed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Published   bool   `yaml:"published"`
}

type seedStats struct {
	ProgramsCreated   int
	ProgramsSkipped   int
	CategoriesCreated int
	CategoriesSkipped int
}

func parseCatalog(r io.Reader) (catalogFile, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return f, fmt.Errorf("decode catalog: %w", err)
	}
	for i, p := range f.Programs {
		if strings.TrimSpace(p.Title) == "" {
			return f, fmt.Errorf("programs[%d]: title is required", i)
		}
		for j, c := range p.Categories {
			if strings.TrimSpace(c.Title) == "" {
				return f, fmt.Errorf("programs[%d].categories[%d]: title is required", i, j)
			}
		}
	}
	return f, nil
}

// seedCatalog inserts programs and categories that do not exist yet, matched by title.
func seedCatalog(dbc dbctx.Context, programs repos.ProgramRepo, categories repos.CategoryRepo, f catalogFile) (seedStats, error) {
	var st seedStats
	for _, ps := range f.Programs {
		title := strings.TrimSpace(ps.Title)
		prog, err := programs.GetByTitle(dbc, title)
		if err != nil {
			return st, fmt.Errorf("lookup program %q: %w", title, err)
		}
		if prog == nil {
			prog = &types.Program{Title: title, Description: ps.Description, IsPublished: ps.Published}
			if err := programs.Create(dbc, prog); err != nil {
				return st, fmt.Errorf("create program %q: %w", title, err)
			}
			st.ProgramsCreated++
		} else {
			st.ProgramsSkipped++
		}

		for _, cs := range ps.Categories {
			ctitle := strings.TrimSpace(cs.Title)
			cat, err := categories.GetByTitle(dbc, prog.ID, ctitle)
			if err != nil {
				return st, fmt.Errorf("lookup category %q: %w", ctitle, err)
			}
			if cat != nil {
				st.CategoriesSkipped++
				continue
			}
			cat = &types.Category{Title: ctitle, Description: cs.Description, IsPublished: cs.Published, ProgramID: prog.ID}
			if err := categories.Create(dbc, cat); err != nil {
				return st, fmt.Errorf("create category %q: %w", ctitle, err)
			}
			st.CategoriesCreated++
		}
	}
	return st, nil
}

func seedCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load programs and categories from a YAML catalog file",
		Long: `Load programs and categories from a YAML catalog file.

Existing rows are matched by title and left untouched, so the command
can be re-run safely.

Example:
  coursehubctl seed --file catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			fh, err := os.Open(path)
			if err != nil {
				return err
			}
			defer fh.Close()
			f, err := parseCatalog(fh)
			if err != nil {
				return err
			}

			log, pg, err := openPostgres(v)
			if err != nil {
				return err
			}
			defer pg.Close()
			defer log.Sync()

			gdb := pg.DB()
			st, err := seedCatalog(
				dbctx.New(context.Background()),
				repos.NewProgramRepo(gdb, log),
				repos.NewCategoryRepo(gdb, log),
				f,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Programs: %d created, %d existing\nCategories: %d created, %d existing\n",
				st.ProgramsCreated, st.ProgramsSkipped, st.CategoriesCreated, st.CategoriesSkipped)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "catalog YAML file")
	return cmd
}
