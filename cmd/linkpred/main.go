package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cnclabs/kgrank/internal/models/complexe"
	"github.com/cnclabs/kgrank/internal/models/distmult"
	"github.com/cnclabs/kgrank/internal/models/rescal"
	"github.com/cnclabs/kgrank/internal/models/rotate"
	"github.com/cnclabs/kgrank/internal/models/transe"
	"github.com/cnclabs/kgrank/internal/models/transh"
	"github.com/cnclabs/kgrank/pkg/dissim"
	"github.com/cnclabs/kgrank/pkg/knowledge"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// config holds every run parameter. Values come from defaults, then the YAML
// config file, then explicitly set flags, in that order.
type config struct {
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	Entities      int64  `yaml:"entities"`
	Relations     int64  `yaml:"relations"`
	Triples       int    `yaml:"triples"`
	BatchSize     int    `yaml:"batch_size"`
	Workers       int    `yaml:"workers"`
	Dissimilarity string `yaml:"dissimilarity"`
	Hits          string `yaml:"hits"`
	Seed          int64  `yaml:"seed"`
}

func defaults() config {
	return config{
		Model:         "transe",
		Dimensions:    50,
		Entities:      500,
		Relations:     10,
		Triples:       5000,
		BatchSize:     128,
		Workers:       4,
		Dissimilarity: "L2",
		Hits:          "1,3,10",
		Seed:          1,
	}
}

func main() {
	cfg := defaults()

	configFile := flag.String("config", "", "YAML config file (flags override it)")
	model := flag.String("model", cfg.Model, "Model: transe, transh, rotate, rescal, distmult, complex")
	dimensions := flag.Int("dimensions", cfg.Dimensions, "Dimension of embeddings")
	entities := flag.Int64("entities", cfg.Entities, "Number of entities in the synthetic graph")
	relations := flag.Int64("relations", cfg.Relations, "Number of relations in the synthetic graph")
	triples := flag.Int("triples", cfg.Triples, "Number of triples in the synthetic graph")
	batchSize := flag.Int("batch_size", cfg.BatchSize, "Evaluation batch size")
	workers := flag.Int("workers", cfg.Workers, "Number of evaluation worker goroutines")
	dissimilarity := flag.String("dissimilarity", cfg.Dissimilarity, "Dissimilarity for transe: L1 or L2")
	hits := flag.String("hits", cfg.Hits, "Comma-separated Hits@k cutoffs")
	seed := flag.Int64("seed", cfg.Seed, "Random seed")

	flag.Usage = func() {
		fmt.Println("[KGRank]")
		fmt.Println("\tLink prediction evaluation for knowledge graph embeddings")
		fmt.Println()
		fmt.Println("What it does:")
		fmt.Println("\t1. Builds a random knowledge graph (entities, relations, triples)")
		fmt.Println("\t2. Initializes the chosen embedding model")
		fmt.Println("\t3. Ranks the true head and tail of every triple against all entities")
		fmt.Println("\t4. Reports mean rank, filtered mean rank, MRR and Hits@k")
		fmt.Println()
		fmt.Println("Models:")
		fmt.Println("\ttranse   - translation h + r ≈ t, L1/L2 distance")
		fmt.Println("\ttransh   - translation on relation-specific hyperplanes")
		fmt.Println("\trotate   - rotation h ∘ r ≈ t in complex space")
		fmt.Println("\trescal   - bilinear hᵗ·R·t with a full relation matrix")
		fmt.Println("\tdistmult - bilinear with a diagonal relation matrix")
		fmt.Println("\tcomplex  - trilinear product over complex embeddings")
		fmt.Println()
		fmt.Println("Options Description:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("./linkpred -model transe -entities 1000 -relations 20 -triples 20000 \\")
		fmt.Println("           -dimensions 50 -batch_size 128 -workers 4 -hits 1,3,10")
		fmt.Println()
		fmt.Println("\t# With a config file; flags still win")
		fmt.Println("./linkpred -config eval.yaml -model rescal")
	}

	flag.Parse()

	if *configFile != "" {
		raw, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Printf("Error reading config: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			fmt.Printf("Error parsing config: %v\n", err)
			os.Exit(1)
		}
	}

	// Explicitly set flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = *model
		case "dimensions":
			cfg.Dimensions = *dimensions
		case "entities":
			cfg.Entities = *entities
		case "relations":
			cfg.Relations = *relations
		case "triples":
			cfg.Triples = *triples
		case "batch_size":
			cfg.BatchSize = *batchSize
		case "workers":
			cfg.Workers = *workers
		case "dissimilarity":
			cfg.Dissimilarity = *dissimilarity
		case "hits":
			cfg.Hits = *hits
		case "seed":
			cfg.Seed = *seed
		}
	})

	if cfg.Dimensions <= 0 || cfg.Entities <= 0 || cfg.Relations <= 0 || cfg.Triples <= 0 {
		fmt.Println("Error: dimensions, entities, relations and triples must be positive")
		os.Exit(1)
	}
	if cfg.BatchSize <= 0 {
		fmt.Println("Error: batch_size must be positive")
		os.Exit(1)
	}

	ks, err := parseHits(cfg.Hits)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	fmt.Println("Building synthetic knowledge graph:")
	fmt.Printf("\tentities:\t\t%d\n", cfg.Entities)
	fmt.Printf("\trelations:\t\t%d\n", cfg.Relations)
	fmt.Printf("\ttriples:\t\t%d\n", cfg.Triples)

	kg := knowledge.NewKnowledgeGraph()
	for i := 0; i < cfg.Triples; i++ {
		kg.AddTriple(rng.Int63n(cfg.Entities), rng.Int63n(cfg.Relations), rng.Int63n(cfg.Entities))
	}
	// Entity and relation counts must cover the whole catalog even if the
	// random triples missed some indexes.
	if kg.NumEntities < cfg.Entities {
		kg.NumEntities = cfg.Entities
	}
	if kg.NumRelations < cfg.Relations {
		kg.NumRelations = cfg.Relations
	}

	m, err := buildModel(cfg, rng)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	m.NormalizeParameters()

	fmt.Println()
	fmt.Println("Model Setting:")
	fmt.Printf("\tmodel:\t\t\t%s\n", cfg.Model)
	fmt.Printf("\tdimension:\t\t%d\n", cfg.Dimensions)
	fmt.Printf("\tbatch_size:\t\t%d\n", cfg.BatchSize)
	fmt.Printf("\tworkers:\t\t%d\n", cfg.Workers)
	fmt.Println()

	start := time.Now()
	ev := &linkpred.Evaluator{Model: m, Workers: cfg.Workers, Ks: ks}
	report, err := ev.Run(context.Background(), kg, cfg.BatchSize)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(report)
	fmt.Printf("\nEvaluation time: %.2f seconds\n", time.Since(start).Seconds())
}

func buildModel(cfg config, rng *rand.Rand) (linkpred.Model, error) {
	switch cfg.Model {
	case "transe":
		kind, err := dissim.ParseKind(cfg.Dissimilarity)
		if err != nil {
			return nil, err
		}
		return transe.New(cfg.Dimensions, cfg.Entities, cfg.Relations, kind, rng)
	case "transh":
		return transh.New(cfg.Dimensions, cfg.Entities, cfg.Relations, rng), nil
	case "rotate":
		return rotate.New(cfg.Dimensions, cfg.Entities, cfg.Relations, rng), nil
	case "rescal":
		return rescal.New(cfg.Dimensions, cfg.Entities, cfg.Relations, rng), nil
	case "distmult":
		return distmult.New(cfg.Dimensions, cfg.Entities, cfg.Relations, rng), nil
	case "complex":
		return complexe.New(cfg.Dimensions, cfg.Entities, cfg.Relations, rng), nil
	}
	return nil, fmt.Errorf("unknown model %q", cfg.Model)
}

func parseHits(s string) ([]int, error) {
	var ks []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := strconv.Atoi(part)
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("invalid hits cutoff %q", part)
		}
		ks = append(ks, k)
	}
	return ks, nil
}
