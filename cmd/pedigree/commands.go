package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"pedigree/internal/analysis"
	"pedigree/internal/crawler"
	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/graph"
	"pedigree/internal/index"
	"pedigree/internal/loader"
	"pedigree/internal/logger"
	"pedigree/internal/resolver"
	"pedigree/internal/retrieval"
	"pedigree/internal/server"
	"pedigree/internal/storage"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	formatJSON  bool
	listPeople  bool
	maxHops     int
	exportDir   string
	mediaRoot   string
	checkMedia  bool
	serveAddr   string
	serveWatch  bool
	graphOutput string
)

func init() {
	parseCmd.Flags().BoolVar(&listPeople, "list", false, "List every individual")

	showCmd.Flags().BoolVar(&formatJSON, "raw", false, "Print the person as JSON")
	familyCmd.Flags().BoolVar(&formatJSON, "raw", false, "Print the family as JSON")

	graphCmd.Flags().StringVarP(&graphOutput, "out", "o", "", "Write the graph to a file instead of stdout")

	relateCmd.Flags().IntVar(&maxHops, "max-hops", 0, "Maximum path length (default resolver.max_hops)")

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default export.dir)")
	exportCmd.Flags().StringVar(&mediaRoot, "media-root", "", "Directory holding Data/Media (default source.media_root)")
	exportCmd.Flags().BoolVar(&checkMedia, "check-media", true, "Drop photo paths missing under the media root")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload when the record file changes")
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a record file and report what it contains",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Source.GedFile
		if len(args) > 0 {
			path = args[0]
		}

		start := time.Now()
		store, err := index.BuildStore(path)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Parsed %s in %v: %d individuals, %d families\n",
			path, time.Since(start).Round(time.Millisecond), store.NumIndividuals(), store.NumFamilies())

		if !listPeople {
			return nil
		}
		rows := [][]string{{"ID", "Name", "Born", "Sex"}}
		for _, id := range store.IndividualIDs() {
			p, ok := extractor.Extract(store, id)
			if !ok {
				continue
			}
			rows = append(rows, []string{p.ID, p.Name, p.BirthDate, p.Sex})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		l, _, cleanup, err := openLoader(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := l.LoadPerson(ctx, args[0])
		if err != nil {
			return err
		}
		if formatJSON {
			return printJSON(p)
		}

		pterm.DefaultHeader.Println(displayName(p))
		if p.Sex != "" {
			pterm.Printf("Sex: %s\n", p.Sex)
		}
		if events := p.LifeEvents(); len(events) > 0 {
			rows := [][]string{{"Event", "Date", "Place"}}
			for _, ev := range events {
				rows = append(rows, []string{ev.Label, ev.Date, ev.Place})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
		}
		printList("Occupations", p.Occupations)
		printList("Notes", p.Notes)
		printList("Photos", p.Photos)
		for _, ev := range p.CensusRecords {
			pterm.Printf("Census: %s\n", joinNonEmpty(ev.Date, ev.Place))
		}
		for _, ev := range p.Residences {
			pterm.Printf("Residence: %s\n", joinNonEmpty(ev.Date, ev.Place))
		}
		printList("Parents", p.ParentIDs)
		printList("Spouses", p.SpouseIDs)
		printList("Children", p.ChildIDs)
		return nil
	},
}

var familyCmd = &cobra.Command{
	Use:   "family <id>",
	Short: "Resolve a person's family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		fam, err := resolveFamily(ctx, args[0])
		if err != nil {
			return err
		}
		if formatJSON {
			return printJSON(fam)
		}

		pterm.DefaultHeader.Println(displayName(fam.Person))
		rels := fam.Relationships
		for _, group := range []struct {
			title  string
			people []*extractor.Person
		}{
			{"Parents", rels.Parents},
			{"Spouses", rels.Spouses},
			{"Children", rels.Children},
			{"Siblings", rels.Siblings},
			{"Grandparents", rels.Grandparents},
			{"Grandchildren", rels.Grandchildren},
		} {
			if len(group.people) == 0 {
				pterm.Printf("%s: %s\n", group.title, pterm.Gray("none"))
				continue
			}
			names := make([]string, len(group.people))
			for i, p := range group.people {
				names[i] = fmt.Sprintf("%s (%s)", displayName(p), p.ID)
			}
			pterm.Printf("%s: %s\n", group.title, strings.Join(names, ", "))
		}
		if fam.Stats.Failed > 0 {
			pterm.Warning.Printf("%d linked records could not be loaded\n", fam.Stats.Failed)
		}
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Build the family graph around a person as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		fam, err := resolveFamily(ctx, args[0])
		if err != nil {
			return err
		}
		g := graph.FromFamily(fam)

		if graphOutput == "" {
			return printJSON(g)
		}
		f, err := os.Create(graphOutput)
		if err != nil {
			return errors.Wrapf(err, "create %s", graphOutput)
		}
		defer f.Close()
		if err := writeJSON(f, g); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %d nodes and %d edges to %s\n", len(g.Nodes), len(g.Edges), graphOutput)
		return nil
	},
}

var relateCmd = &cobra.Command{
	Use:   "relate <from> <to>",
	Short: "Find how two people are related",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		l, _, cleanup, err := openLoader(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		hops := cfg.Resolver.MaxHops
		if maxHops > 0 {
			hops = maxHops
		}
		cached := loader.NewCache(l)
		path, err := retrieval.Search(ctx, cached, args[0], args[1], retrieval.Config{
			MaxHops:     hops,
			Concurrency: cfg.Resolver.Concurrency,
		})
		if errors.Is(err, retrieval.ErrNoPath) {
			pterm.Warning.Printf("No relation between %s and %s within %d hops\n", args[0], args[1], hops)
			return nil
		}
		if err != nil {
			return err
		}

		steps := make([]string, len(path))
		for i, step := range path {
			label := step.PersonID
			if p, err := cached.LoadPerson(ctx, step.PersonID); err == nil {
				label = fmt.Sprintf("%s (%s)", displayName(p), p.ID)
			}
			if step.Via != "" {
				label = fmt.Sprintf("-%s-> %s", step.Via, label)
			}
			steps[i] = label
		}
		pterm.Println(strings.Join(steps, " "))
		pterm.Success.Printf("%s is the %s of %s\n", args[1], retrieval.Describe(path), args[0])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write per-person JSON files and an id manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Export.Dir
		if exportDir != "" {
			dir = exportDir
		}
		root := cfg.Source.MediaRoot
		if mediaRoot != "" {
			root = mediaRoot
		}

		store, err := index.BuildStore(cfg.Source.GedFile)
		if err != nil {
			return err
		}

		opts := []index.Option{index.WithLogger(logger.Named("export"))}
		if checkMedia {
			media, err := crawler.ScanMedia(root)
			if err != nil {
				return errors.WithHint(err, "pass --check-media=false to keep every photo path")
			}
			opts = append(opts, index.WithMedia(media))
		}

		report, err := index.NewExporter(opts...).Export(store, dir)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Exported %d people to %s\n", report.People, report.Dir)
		if report.MissingMedia > 0 {
			pterm.Warning.Printf("Dropped %d photo references with no file under %s\n", report.MissingMedia, root)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store every person from the record file in SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		records, err := index.BuildStore(cfg.Source.GedFile)
		if err != nil {
			return err
		}
		people := make([]*extractor.Person, 0, records.NumIndividuals())
		for _, id := range records.IndividualIDs() {
			if p, ok := extractor.Extract(records, id); ok {
				people = append(people, p)
			}
		}

		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		previous, err := store.LoadAll(ctx)
		if err != nil {
			return errors.Wrap(err, "load previous snapshot")
		}
		report := analysis.NewAnalyzer(previous).AnalyzeChanges(people)

		if err := store.SavePersons(ctx, people); err != nil {
			return errors.Wrap(err, "save people")
		}
		pterm.Success.Printf("Imported %d people into %s\n", len(people), cfg.Storage.DBPath)
		if report.Empty() {
			pterm.Info.Println("No changes since the last import")
			return nil
		}
		pterm.Printf("  -> %d added, %d removed, %d changed\n",
			len(report.Added), len(report.Removed), len(report.Changed))
		pterm.Printf("  -> %d relatives with an affected family view\n", len(report.Affected))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve people, families and graphs over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		watch := cfg.Server.Watch || serveWatch

		l, ids, cleanup, err := openLoader(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		log := logger.Named("server")
		srv := server.New(
			server.NewSnapshot(l, ids, cfg.Resolver.Concurrency, logger.Named("resolver")),
			server.WithLogger(log),
			server.WithMaxHops(cfg.Resolver.MaxHops),
			server.WithConcurrency(cfg.Resolver.Concurrency),
		)

		if watch {
			src, _ := activeSource()
			if src != sourceGed {
				return errors.WithHint(errors.Wrap(errors.ErrInvalidRequest, "watch needs the ged source"),
					"drop --watch or use --source ged")
			}
			path := cfg.Source.GedFile
			w, err := server.NewWatcher(path, func() error { return srv.Reload(path) }, log)
			if err != nil {
				return err
			}
			w.Start()
			defer w.Stop()
			pterm.Info.Printf("Watching %s for changes\n", path)
		}

		pterm.Info.Printf("Serving %d people on %s\n", len(ids), addr)
		return srv.Start(ctx, addr)
	},
}

func resolveFamily(ctx context.Context, id string) (*resolver.Family, error) {
	l, _, cleanup, err := openLoader(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	r := resolver.New(loader.NewCache(l),
		resolver.WithConcurrency(cfg.Resolver.Concurrency),
		resolver.WithLogger(logger.Named("resolver")),
	)
	return r.ResolveFamily(ctx, id)
}

func displayName(p *extractor.Person) string {
	if p.Name == "" {
		return "Unknown"
	}
	return p.Name
}

func printList(title string, values []string) {
	if len(values) == 0 {
		return
	}
	pterm.Printf("%s: %s\n", title, strings.Join(values, ", "))
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
