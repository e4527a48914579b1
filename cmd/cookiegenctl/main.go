package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/dustin/go-humanize"

	"cookiegen/internal/corpus"
	"cookiegen/internal/logging"
	"cookiegen/internal/model"
	"cookiegen/pkg/cookiegen"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	case "corpus":
		return runCorpus(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional YAML run config; explicit flags override its values")
	corpusPath := fs.String("corpus", "", "reference corpus path (.json, .csv or .db)")
	corpusKind := fs.String("corpus-kind", "", "corpus kind: json|csv|sqlite (default: from extension)")
	taxonomy := fs.String("taxonomy", "", "optional YAML category taxonomy")
	runID := fs.String("run-id", "", "explicit run id (default: random uuid)")
	population := fs.Int("pop", 100, "population size")
	generations := fs.Int("gens", 200, "generation count")
	tournament := fs.Int("tournament", 10, "tournament size")
	mutationRate := fs.Float64("mutation-rate", 0.5, "probability that an offspring is mutated")
	eliteFraction := fs.Float64("elite-fraction", 0.1, "share of the population carried unchanged")
	seed := fs.Int64("seed", 1, "rng seed")
	top := fs.Int("top", 5, "final recipes kept and scored for creativity")
	logEvery := fs.Int("log-every", 20, "info-level progress log cadence in generations")
	plots := fs.Bool("plots", true, "write fitness and creativity plots")
	metricsOut := fs.Bool("metrics", false, "write a prometheus textfile into the run directory")
	dir := fs.String("runs-dir", runsDir, "directory for run artifacts")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	logFormat := fs.String("log-format", logging.FormatAuto, "log format: auto|json|console")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	settings, err := resolveSettings(*configPath, setFlags, map[string]any{
		"corpus":         *corpusPath,
		"corpus-kind":    *corpusKind,
		"taxonomy":       *taxonomy,
		"run-id":         *runID,
		"pop":            *population,
		"gens":           *generations,
		"tournament":     *tournament,
		"mutation-rate":  *mutationRate,
		"elite-fraction": *eliteFraction,
		"seed":           *seed,
		"top":            *top,
		"log-every":      *logEvery,
		"plots":          *plots,
		"metrics":        *metricsOut,
		"runs-dir":       *dir,
		"log-level":      *logLevel,
		"log-format":     *logFormat,
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(settings.Log)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	client, err := cookiegen.New(cookiegen.Options{RunsDir: settings.RunsDir, Logger: logger})
	if err != nil {
		return err
	}
	req := settings.Request
	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s corpus=%s pop=%d gens=%d seed=%d\n", summary.RunID, req.Corpus.Path, req.Population, req.Generations, req.Seed)
	for i, best := range summary.BestByGeneration {
		fmt.Printf("generation=%d best_fitness=%.6f mean_fitness=%.6f\n", i+1, best, summary.MeanByGeneration[i])
	}
	fmt.Printf("final_best_fitness=%.6f\n", summary.FinalBestFitness)
	fmt.Printf("improvement=%.6f stall_generations=%d best_std=%.6f\n", summary.Fitness.Improvement, summary.Fitness.StallGenerations, summary.Fitness.BestStd)
	fmt.Printf("evaluations=%s\n", humanize.Comma(int64(summary.Evaluations)))
	for _, entry := range summary.Creativity {
		fmt.Printf("creativity rank=%d name=%q fitness=%.4f creativity=%.4f novelty=%.4f value=%.4f typicality=%.4f\n",
			entry.Rank, entry.Name, entry.Fitness,
			entry.Report.Creativity, entry.Report.Novelty, entry.Report.Value, entry.Report.Typicality,
		)
	}
	fmt.Printf("\nBEST RECIPE\n%s\n", summary.BestTable)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	corpusPath := fs.String("corpus", "", "reference corpus path")
	corpusKind := fs.String("corpus-kind", "", "corpus kind: json|csv|sqlite")
	taxonomy := fs.String("taxonomy", "", "optional YAML category taxonomy")
	recipesPath := fs.String("recipes", "", "candidate recipes file in any corpus format")
	runID := fs.String("run-id", "", "evaluate the stored top recipes of this run")
	latest := fs.Bool("latest", false, "evaluate the stored top recipes of the latest run")
	dir := fs.String("runs-dir", runsDir, "directory for run artifacts")
	jsonOut := fs.Bool("json", false, "emit evaluations as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *corpusPath == "" {
		return errors.New("evaluate requires --corpus")
	}
	if *recipesPath == "" && *runID == "" && !*latest {
		return errors.New("evaluate requires --recipes, --run-id or --latest")
	}

	client, err := cookiegen.New(cookiegen.Options{RunsDir: *dir})
	if err != nil {
		return err
	}
	req := cookiegen.EvaluateRequest{
		Corpus: corpus.Source{Kind: corpus.Kind(*corpusKind), Path: *corpusPath, TaxonomyPath: *taxonomy},
	}
	if *recipesPath != "" {
		req.Candidates = corpus.Source{Path: *recipesPath}
	}
	if *runID != "" || *latest {
		top, err := client.TopRecipes(ctx, cookiegen.TopRecipesRequest{RunID: *runID, Latest: *latest})
		if err != nil {
			return err
		}
		for _, item := range top {
			req.Recipes = append(req.Recipes, item.Recipe)
		}
	}

	items, err := client.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		type evaluationItem struct {
			Name    string  `json:"name"`
			Fitness float64 `json:"fitness"`
			Valid   bool    `json:"valid"`
			Report  any     `json:"report"`
		}
		out := make([]evaluationItem, 0, len(items))
		for _, item := range items {
			out = append(out, evaluationItem{Name: item.Name, Fitness: item.Fitness, Valid: item.Valid, Report: item.Report})
		}
		return writeJSON(out)
	}
	for _, item := range items {
		fmt.Printf("name=%q valid=%t fitness=%.4f creativity=%.4f novelty=%.4f value=%.4f typicality=%.4f ingredient_novelty=%.4f combination_novelty=%.4f\n",
			item.Name, item.Valid, item.Fitness,
			item.Report.Creativity, item.Report.Novelty, item.Report.Value, item.Report.Typicality,
			item.Report.Components.IngredientNovelty, item.Report.Components.CombinationNovelty,
		)
	}
	return nil
}

func runCorpus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("corpus", flag.ContinueOnError)
	corpusPath := fs.String("corpus", "", "corpus path")
	corpusKind := fs.String("corpus-kind", "", "corpus kind: json|csv|sqlite")
	taxonomy := fs.String("taxonomy", "", "optional YAML category taxonomy")
	jsonOut := fs.Bool("json", false, "emit summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *corpusPath == "" {
		return errors.New("corpus requires --corpus")
	}

	client, err := cookiegen.New(cookiegen.Options{})
	if err != nil {
		return err
	}
	summary, err := client.CorpusSummary(ctx, corpus.Source{Kind: corpus.Kind(*corpusKind), Path: *corpusPath, TaxonomyPath: *taxonomy})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(summary)
	}

	fmt.Printf("recipes=%s entries=%s ingredients=%s valid=%s\n",
		humanize.Comma(int64(summary.Recipes)),
		humanize.Comma(int64(summary.Entries)),
		humanize.Comma(int64(summary.Ingredients)),
		humanize.Comma(int64(summary.Valid)),
	)
	cats := make([]model.Category, 0, len(summary.ByCategory))
	for cat := range summary.ByCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, cat := range cats {
		fmt.Printf("category=%s ingredients=%d\n", cat, summary.ByCategory[cat])
	}
	for _, name := range summary.Unknown {
		fmt.Printf("uncategorized=%q\n", name)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	dir := fs.String("runs-dir", runsDir, "directory for run artifacts")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := cookiegen.New(cookiegen.Options{RunsDir: *dir})
	if err != nil {
		return err
	}
	items, err := client.Runs(ctx, cookiegen.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		type runsItem struct {
			RunID            string  `json:"run_id"`
			CreatedAtUTC     string  `json:"created_at_utc"`
			CorpusPath       string  `json:"corpus_path"`
			Seed             int64   `json:"seed"`
			PopulationSize   int     `json:"population_size"`
			Generations      int     `json:"generations"`
			FinalBestFitness float64 `json:"final_best_fitness"`
			BestCreativity   float64 `json:"best_creativity"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem{
				RunID:            item.RunID,
				CreatedAtUTC:     item.CreatedAtUTC,
				CorpusPath:       item.CorpusPath,
				Seed:             item.Seed,
				PopulationSize:   item.Population,
				Generations:      item.Generations,
				FinalBestFitness: item.FinalBestFitness,
				BestCreativity:   item.BestCreativity,
			})
		}
		return writeJSON(out)
	}
	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s corpus=%s seed=%d pop=%d gens=%d final_best=%.6f best_creativity=%.4f\n",
			item.RunID, item.CreatedAtUTC, item.CorpusPath, item.Seed, item.Population, item.Generations,
			item.FinalBestFitness, item.BestCreativity,
		)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the latest run")
	limit := fs.Int("limit", 5, "max recipes to show")
	dir := fs.String("runs-dir", runsDir, "directory for run artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cookiegen.New(cookiegen.Options{RunsDir: *dir})
	if err != nil {
		return err
	}
	top, err := client.TopRecipes(ctx, cookiegen.TopRecipesRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	for _, item := range top {
		fmt.Printf("rank=%d name=%q fitness=%.6f ingredients=%d signature=%s\n",
			item.Rank, item.Recipe.Name, item.Fitness, len(item.Recipe.Ingredients), item.Signature)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to export")
	latest := fs.Bool("latest", false, "export the latest run")
	outDir := fs.String("out", exportsDir, "export directory")
	dir := fs.String("runs-dir", runsDir, "directory for run artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cookiegen.New(cookiegen.Options{RunsDir: *dir, ExportsDir: *outDir})
	if err != nil {
		return err
	}
	exported, err := client.Export(ctx, cookiegen.ExportRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: cookiegenctl <run|evaluate|corpus|runs|top|export> [flags]", msg)
}
