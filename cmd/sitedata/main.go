package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haey/sitedata/internal/app"
	"github.com/haey/sitedata/internal/config"
	"github.com/haey/sitedata/internal/domain"
	"github.com/haey/sitedata/internal/loader"
	"github.com/haey/sitedata/internal/logger"
	"github.com/haey/sitedata/internal/merge"
	"github.com/haey/sitedata/internal/project"
	"github.com/haey/sitedata/internal/store"
)

var (
	cfgPath string
	dbPath  string
	baseURL string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitedata",
		Short: "Reconcile the site's shared JSON documents with local draft edits",
		Long: `sitedata manages the two data files the site publishes: the archive
records and the work calendar. Shared documents are fetched read-only;
edits live in a device-local draft until you export the merged document
and republish it by hand.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $HOME/.sitedata/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "draft database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "site base URL (overrides config)")

	rootCmd.AddCommand(archiveCmd())
	rootCmd.AddCommand(calendarCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type env struct {
	cfg   *config.Config
	store *store.Store
	log   *zap.SugaredLogger
}

func setup() (*env, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, store: s, log: log}, nil
}

func (e *env) Close() { e.store.Close() }

func (e *env) archive() *app.Archive {
	return app.NewArchive(loader.New(e.log), e.store, e.log, e.cfg.ArchiveURL())
}

func (e *env) calendar() *app.Calendar {
	return app.NewCalendar(loader.New(e.log), e.store, e.log, e.cfg.CalendarURL())
}

// reloadUnlessDraftOnly fetches the shared document for any view that needs
// it. Failure is not fatal: the tool keeps going draft-only, as the site
// itself does when the shared JSON cannot be loaded.
func reloadUnlessDraftOnly(view merge.View, reload func() error) {
	if view == merge.ViewDraft {
		return
	}
	if err := reload(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: shared document unavailable (%v); showing draft only\n", err)
	}
}

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Tag-indexed archive records",
	}
	cmd.AddCommand(archiveListCmd())
	cmd.AddCommand(archiveTagsCmd())
	cmd.AddCommand(archiveAddCmd())
	cmd.AddCommand(archiveEditCmd())
	cmd.AddCommand(archiveDeleteCmd())
	cmd.AddCommand(archiveClearCmd())
	cmd.AddCommand(archiveExportCmd())
	cmd.AddCommand(archiveImportCmd())
	return cmd
}

func archiveListCmd() *cobra.Command {
	var tag, sortMode, viewMode string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			a := e.archive()
			a.Filter = tag
			a.Sort = project.ParseOrder(sortMode)
			a.View = merge.ParseView(viewMode)
			reloadUnlessDraftOnly(a.View, a.Reload)

			records := a.Records()
			if len(records) == 0 {
				fmt.Println("No records to show.")
				return nil
			}

			for _, r := range records {
				title := r.Title
				if title == "" {
					title = "(untitled)"
				}
				line := fmt.Sprintf("%s  %-10s  %s", shortID(r.ID), r.Date, truncate(title, 48))
				if len(r.Tags) > 0 {
					line += "  [" + strings.Join(r.Tags, ",") + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only records carrying this tag")
	cmd.Flags().StringVar(&sortMode, "sort", "desc", "date order: asc or desc")
	cmd.Flags().StringVar(&viewMode, "view", "merged", "view mode: shared, draft or merged")
	return cmd
}

func archiveTagsCmd() *cobra.Command {
	var viewMode string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the tag cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			a := e.archive()
			a.View = merge.ParseView(viewMode)
			reloadUnlessDraftOnly(a.View, a.Reload)

			cloud := a.TagCloud()
			if len(cloud) == 0 {
				fmt.Println("No tags yet.")
				return nil
			}
			for _, tc := range cloud {
				fmt.Printf("%s (%d)\n", tc.Tag, tc.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&viewMode, "view", "merged", "view mode: shared, draft or merged")
	return cmd
}

func archiveAddCmd() *cobra.Command {
	var date, title, tags, body string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record to the draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			rec, err := e.archive().Save(app.RecordInput{
				Date:  date,
				Title: title,
				Tags:  domain.ParseTags(tags),
				Body:  body,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added draft record: %s\n", shortID(rec.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "record date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&title, "title", "", "record title")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&body, "body", "", "record body")
	cmd.MarkFlagRequired("title")
	return cmd
}

func archiveEditCmd() *cobra.Command {
	var date, title, tags, body string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a record in the draft",
		Long: `Edit writes the record into the draft by id, shared records included:
editing a shared record leaves the shared document untouched and creates
a draft overlay that wins on merge. Flags left out keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			a := e.archive()
			reloadUnlessDraftOnly(merge.ViewMerged, a.Reload)

			rec, err := findRecord(a.Records(), args[0])
			if err != nil {
				return err
			}

			in := app.RecordInput{
				ID:    rec.ID,
				Date:  rec.Date,
				Title: rec.Title,
				Tags:  rec.Tags,
				Body:  rec.Body,
			}
			if cmd.Flags().Changed("date") {
				in.Date = date
			}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("tags") {
				in.Tags = domain.ParseTags(tags)
			}
			if cmd.Flags().Changed("body") {
				in.Body = body
			}

			if _, err := a.Save(in); err != nil {
				return err
			}
			fmt.Printf("Updated draft record: %s\n", shortID(rec.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "record date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&title, "title", "", "record title")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&body, "body", "", "record body")
	return cmd
}

func archiveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a record from the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			a := e.archive()
			rec, err := findRecord(a.Draft(), args[0])
			if err != nil {
				return fmt.Errorf("no draft record matches %s (shared records cannot be deleted, only shadowed)", args[0])
			}

			if _, err := a.Delete(rec.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted draft record: %s\n", shortID(rec.ID))
			return nil
		},
	}
}

func archiveClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every draft record on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			a := e.archive()
			n := len(a.Draft())
			if err := a.ClearDraft(); err != nil {
				return err
			}
			fmt.Printf("Cleared %d draft record(s). The shared document is untouched.\n", n)
			return nil
		},
	}
}

func archiveExportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the merged document for republishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			a := e.archive()
			reloadUnlessDraftOnly(merge.ViewMerged, a.Reload)

			path, err := a.Export(outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			fmt.Println("Replace /data/archive-records.json with this file and commit to publish.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func archiveImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the draft with a previously exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.archive().Import(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d record(s) into the draft.\n", n)
			return nil
		},
	}
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Work calendar events",
	}
	cmd.AddCommand(calendarListCmd())
	cmd.AddCommand(calendarAddCmd())
	cmd.AddCommand(calendarEditCmd())
	cmd.AddCommand(calendarDeleteCmd())
	cmd.AddCommand(calendarClearCmd())
	cmd.AddCommand(calendarExportCmd())
	cmd.AddCommand(calendarImportCmd())
	return cmd
}

func calendarListCmd() *cobra.Command {
	var sortMode, viewMode string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			c := e.calendar()
			c.Sort = project.ParseOrder(sortMode)
			c.View = merge.ParseView(viewMode)
			reloadUnlessDraftOnly(c.View, c.Reload)

			events := c.Events()
			if len(events) == 0 {
				fmt.Println("No events to show.")
				return nil
			}

			for _, ev := range events {
				title := ev.Title
				if title == "" {
					title = "(untitled)"
				}
				line := fmt.Sprintf("%s  %s .. %s  %s", shortID(ev.ID), ev.Start, ev.End, truncate(title, 40))
				if ev.Memo != "" {
					line += "  (" + truncate(ev.Memo, 30) + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sortMode, "sort", "asc", "start order: asc or desc")
	cmd.Flags().StringVar(&viewMode, "view", "merged", "view mode: shared, draft or merged")
	return cmd
}

func calendarAddCmd() *cobra.Command {
	var title, start, end, memo string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event to the draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			ev, err := e.calendar().Save(app.EventInput{
				Title: title,
				Start: start,
				End:   end,
				Memo:  memo,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added draft event: %s (%s .. %s)\n", shortID(ev.ID), ev.Start, ev.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&start, "start", "", "start time (YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "end time (defaults to start + 30 minutes)")
	cmd.Flags().StringVar(&memo, "memo", "", "memo")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("start")
	return cmd
}

func calendarEditCmd() *cobra.Command {
	var title, start, end, memo string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit an event in the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			c := e.calendar()
			reloadUnlessDraftOnly(merge.ViewMerged, c.Reload)

			ev, err := findEvent(c.Events(), args[0])
			if err != nil {
				return err
			}

			in := app.EventInput{
				ID:    ev.ID,
				Title: ev.Title,
				Start: ev.Start,
				End:   ev.End,
				Memo:  ev.Memo,
			}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("start") {
				in.Start = start
				// a moved start invalidates the old end unless one is given
				if !cmd.Flags().Changed("end") {
					in.End = ""
				}
			}
			if cmd.Flags().Changed("end") {
				in.End = end
			}
			if cmd.Flags().Changed("memo") {
				in.Memo = memo
			}

			if _, err := c.Save(in); err != nil {
				return err
			}
			fmt.Printf("Updated draft event: %s\n", shortID(ev.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&start, "start", "", "start time (YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "end time")
	cmd.Flags().StringVar(&memo, "memo", "", "memo")
	return cmd
}

func calendarDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an event from the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			c := e.calendar()
			ev, err := findEvent(c.Draft(), args[0])
			if err != nil {
				return fmt.Errorf("no draft event matches %s (shared events cannot be deleted, only shadowed)", args[0])
			}

			if _, err := c.Delete(ev.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted draft event: %s\n", shortID(ev.ID))
			return nil
		},
	}
}

func calendarClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every draft event on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			c := e.calendar()
			n := len(c.Draft())
			if err := c.ClearDraft(); err != nil {
				return err
			}
			fmt.Printf("Cleared %d draft event(s). The shared document is untouched.\n", n)
			return nil
		},
	}
}

func calendarExportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the merged document for republishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			c := e.calendar()
			reloadUnlessDraftOnly(merge.ViewMerged, c.Reload)

			path, err := c.Export(outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			fmt.Println("Replace /data/work-calendar-events.json with this file and commit to publish.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func calendarImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the draft with a previously exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.calendar().Import(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d event(s) into the draft.\n", n)
			return nil
		},
	}
}

// findRecord resolves an id prefix against a collection.
func findRecord(records []domain.Record, prefix string) (domain.Record, error) {
	for _, r := range records {
		if strings.HasPrefix(r.ID, prefix) {
			return r, nil
		}
	}
	return domain.Record{}, fmt.Errorf("record not found: %s", prefix)
}

func findEvent(events []domain.Event, prefix string) (domain.Event, error) {
	for _, ev := range events {
		if strings.HasPrefix(ev.ID, prefix) {
			return ev, nil
		}
	}
	return domain.Event{}, fmt.Errorf("event not found: %s", prefix)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	// cut on runes: titles and memos are mostly Korean
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
