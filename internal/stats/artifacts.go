package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cookiegen/internal/creativity"
	"cookiegen/internal/evo"
	"cookiegen/internal/model"
)

const (
	runIndexFile = "run_index.json"

	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

type RunConfig struct {
	model.VersionedRecord
	RunID          string  `json:"run_id"`
	CorpusPath     string  `json:"corpus_path"`
	CorpusKind     string  `json:"corpus_kind,omitempty"`
	TaxonomyPath   string  `json:"taxonomy_path,omitempty"`
	CorpusRecipes  int     `json:"corpus_recipes"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	TournamentSize int     `json:"tournament_size"`
	MutationRate   float64 `json:"mutation_rate"`
	EliteFraction  float64 `json:"elite_fraction"`
	EliteCount     int     `json:"elite_count"`
	Seed           int64   `json:"seed"`
	CreativityTop  int     `json:"creativity_top"`
}

type TopRecipe struct {
	Rank      int          `json:"rank"`
	Fitness   float64      `json:"fitness"`
	Signature string       `json:"signature"`
	Recipe    model.Recipe `json:"recipe"`
}

type CreativityEntry struct {
	Rank    int               `json:"rank"`
	Name    string            `json:"name"`
	Fitness float64           `json:"fitness"`
	Report  creativity.Report `json:"report"`
}

type RunArtifacts struct {
	Config           RunConfig                   `json:"config"`
	BestByGeneration []float64                   `json:"best_by_generation"`
	MeanByGeneration []float64                   `json:"mean_by_generation"`
	Diagnostics      []evo.GenerationDiagnostics `json:"generation_diagnostics,omitempty"`
	MutationCounts   map[string]int              `json:"mutation_counts,omitempty"`
	Evaluations      int                         `json:"evaluations"`
	FinalBestFitness float64                     `json:"final_best_fitness"`
	TopRecipes       []TopRecipe                 `json:"top_recipes"`
	Creativity       []CreativityEntry           `json:"creativity"`
}

type FitnessHistory struct {
	BestByGeneration []float64      `json:"best_by_generation"`
	MeanByGeneration []float64      `json:"mean_by_generation"`
	FinalBestFitness float64        `json:"final_best_fitness"`
	MutationCounts   map[string]int `json:"mutation_counts,omitempty"`
	Evaluations      int            `json:"evaluations"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	CorpusPath       string  `json:"corpus_path"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	EliteCount       int     `json:"elite_count"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	BestCreativity   float64 `json:"best_creativity"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

var artifactFiles = []string{
	"config.json",
	"fitness_history.json",
	"generation_diagnostics.json",
	"top_recipes.json",
	"creativity.json",
}

// Optional files written by callers next to the JSON artifacts.
var optionalArtifactFiles = []string{
	"fitness_series.csv",
	"fitness.png",
	"creativity.png",
	"metrics.prom",
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	if artifacts.Config.SchemaVersion == 0 {
		artifacts.Config.SchemaVersion = CurrentSchemaVersion
	}
	if artifacts.Config.CodecVersion == 0 {
		artifacts.Config.CodecVersion = CurrentCodecVersion
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	history := FitnessHistory{
		BestByGeneration: nonNilFloats(artifacts.BestByGeneration),
		MeanByGeneration: nonNilFloats(artifacts.MeanByGeneration),
		FinalBestFitness: artifacts.FinalBestFitness,
		MutationCounts:   artifacts.MutationCounts,
		Evaluations:      artifacts.Evaluations,
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), history); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_recipes.json"), artifacts.TopRecipes); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "creativity.json"), artifacts.Creativity); err != nil {
		return "", err
	}
	if err := WriteFitnessSeries(runDir, artifacts.BestByGeneration, artifacts.MeanByGeneration); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the indexed runs newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run directory's artifacts into outDir/runID.
// Optional files are copied when present.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range artifactFiles {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	for _, file := range optionalArtifactFiles {
		path := filepath.Join(src, file)
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, filepath.Join(dst, file)); err != nil {
				return "", err
			}
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, "config.json"), &cfg)
	return cfg, ok, err
}

func ReadFitnessHistory(baseDir, runID string) (FitnessHistory, bool, error) {
	var history FitnessHistory
	ok, err := readJSON(filepath.Join(baseDir, runID, "fitness_history.json"), &history)
	return history, ok, err
}

func ReadTopRecipes(baseDir, runID string) ([]TopRecipe, bool, error) {
	var top []TopRecipe
	ok, err := readJSON(filepath.Join(baseDir, runID, "top_recipes.json"), &top)
	return top, ok, err
}

func ReadCreativity(baseDir, runID string) ([]CreativityEntry, bool, error) {
	var entries []CreativityEntry
	ok, err := readJSON(filepath.Join(baseDir, runID, "creativity.json"), &entries)
	return entries, ok, err
}

// WriteFitnessSeries writes one CSV row per generation with the best and
// mean fitness.
func WriteFitnessSeries(runDir string, best, mean []float64) error {
	path := filepath.Join(runDir, "fitness_series.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness", "mean_fitness"}); err != nil {
		return err
	}
	for i, b := range best {
		m := ""
		if i < len(mean) {
			m = strconv.FormatFloat(mean[i], 'f', -1, 64)
		}
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(b, 'f', -1, 64),
			m,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadFitnessSeries(baseDir, runID string) (best, mean []float64, ok bool, err error) {
	path := filepath.Join(baseDir, runID, "fitness_series.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, []float64{}, true, nil
		}
		return nil, nil, false, err
	}
	if len(header) < 3 {
		return nil, nil, false, fmt.Errorf("fitness series header must have 3 columns")
	}

	best = make([]float64, 0, 128)
	mean = make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, false, err
		}
		b, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, false, err
		}
		best = append(best, b)
		if strings.TrimSpace(record[2]) == "" {
			continue
		}
		m, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, nil, false, err
		}
		mean = append(mean, m)
	}
	return best, mean, true, nil
}

func nonNilFloats(values []float64) []float64 {
	if values == nil {
		return []float64{}
	}
	return values
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
