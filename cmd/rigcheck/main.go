package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/gltfskel"
	"github.com/BrendanBarber/MayaUSD-RigValidator/issues"
	"github.com/BrendanBarber/MayaUSD-RigValidator/maya"
	"github.com/BrendanBarber/MayaUSD-RigValidator/usdskel"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	defaults, err := envDefaults()
	if err != nil {
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return 1
		}
		return 2
	}

	fs := flag.NewFlagSet("rigcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rigPath := fs.String("usd", "", "rig file to validate (.usda, .usd, .gltf, .glb)")
	skelRef := fs.String("skel", "", "skeleton prim path or skin name (default: the only one)")
	snapshotPath := fs.String("snapshot", "", "Maya scene snapshot JSON file")
	rootJoint := fs.String("root", "", "root joint DAG path in the snapshot")
	meshPath := fs.String("mesh", "", "geometry DAG path; adds skin binding validation")
	detailed := fs.Bool("detailed", false, "itemize every mismatch instead of a pass/fail check")
	list := fs.Bool("list", false, "list the skeleton identifiers in the rig file and exit")
	reportPath := fs.String("report", "", "write a JSON run report to this path")
	matrixTol := fs.Float64("matrix-tol", defaults.matrixTol, "absolute per-entry matrix tolerance")
	weightTol := fs.Float64("weight-tol", defaults.weightTol, "absolute skin weight tolerance")
	maxReport := fs.Int("max-report", defaults.maxReport, "detailed issues reported per stream before summarizing")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s -usd <rig file> -snapshot <scene.json> -root <joint path> [flags]\n\n", os.Args[0]),
			writeln(stderr, "Validates a character rig file against a Maya scene snapshot."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	usageFail := func(msg string) int {
		if err := writeln(stderr, "error: "+msg); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	if *rigPath == "" {
		return usageFail("-usd is required")
	}
	switch strings.ToLower(filepath.Ext(*rigPath)) {
	case ".usda", ".usd", ".gltf", ".glb":
	default:
		return usageFail(fmt.Sprintf("unsupported rig file %q (expected .usda, .usd, .gltf, or .glb)", *rigPath))
	}

	if *list {
		names, err := listSkeletons(*rigPath)
		if err != nil {
			if writeErr := writef(stderr, "error listing skeletons: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
		for _, name := range names {
			if err := writeln(stdout, name); err != nil {
				return 1
			}
		}
		return 0
	}

	if *snapshotPath == "" {
		return usageFail("-snapshot is required")
	}
	if *rootJoint == "" {
		return usageFail("-root is required")
	}

	validator, err := rigvalidator.NewValidator(
		rigvalidator.NewOptions().
			WithMatrixTolerance(*matrixTol).
			WithWeightTolerance(*weightTol).
			WithMaxReportedMismatches(*maxReport))
	if err != nil {
		return usageFail(err.Error())
	}

	fileSkel, err := readFileSkeleton(*rigPath, *skelRef)
	if err != nil {
		if writeErr := writef(stderr, "error reading rig file: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}

	scene, err := maya.LoadSnapshotFile(*snapshotPath)
	if err != nil {
		if writeErr := writef(stderr, "error reading snapshot: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}
	sceneSkel, err := scene.ExtractSkeleton(*rootJoint)
	if err != nil {
		if writeErr := writef(stderr, "error extracting scene skeleton: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}

	var fileSkin, sceneSkin *rigvalidator.SkinBinding
	if *meshPath != "" {
		fileSkin, err = readFileSkinBinding(*rigPath, *skelRef)
		if err != nil {
			if writeErr := writef(stderr, "error reading rig file skin binding: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
		sceneSkin, err = scene.ExtractSkinBinding(*meshPath)
		if err != nil {
			if writeErr := writef(stderr, "error extracting scene skin binding: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
	}

	var results []targetResult
	if *detailed {
		skelIssues := validator.DetailedValidateSkeleton(fileSkel, sceneSkel)
		results = append(results, targetResult{"skeleton", len(skelIssues) == 0, skelIssues})
		if fileSkin != nil {
			skinIssues := validator.DetailedValidateSkinBinding(fileSkin, sceneSkin)
			results = append(results, targetResult{"skin binding", len(skinIssues) == 0, skinIssues})
		}
	} else {
		results = append(results, targetResult{"skeleton", validator.QuickValidateSkeleton(fileSkel, sceneSkel), nil})
		if fileSkin != nil {
			results = append(results, targetResult{"skin binding", validator.QuickValidateSkinBinding(fileSkin, sceneSkin), nil})
		}
	}

	if *reportPath != "" {
		in := reportInputs{
			rigFile:   *rigPath,
			snapshot:  *snapshotPath,
			skelRef:   *skelRef,
			rootJoint: *rootJoint,
			mesh:      *meshPath,
			detailed:  *detailed,
		}
		if err := writeReport(*reportPath, in, results); err != nil {
			if writeErr := writef(stderr, "error writing report: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
	}

	allMatch := true
	for _, r := range results {
		if !r.match {
			allMatch = false
		}
	}
	if !allMatch {
		for _, r := range results {
			for _, issue := range r.issues {
				if err := writef(stderr, "%s %s\n", r.name, issue); err != nil {
					return 1
				}
			}
			if !r.match {
				if err := writef(stderr, "%s differs from the scene\n", r.name); err != nil {
					return 1
				}
			}
		}
		if err := writef(stderr, "%s fails to validate against %s\n", *rigPath, *snapshotPath); err != nil {
			return 1
		}
		return 1
	}

	if err := writef(stdout, "%s validates against %s\n", *rigPath, *snapshotPath); err != nil {
		return 1
	}
	return 0
}

// targetResult is the outcome for one validation target. issues is nil in
// pass/fail mode.
type targetResult struct {
	name   string
	match  bool
	issues issues.List
}

// envConfig carries tolerance defaults resolved from the environment,
// before flags are applied.
type envConfig struct {
	matrixTol float64
	weightTol float64
	maxReport int
}

// envDefaults resolves tolerance defaults from RIGCHECK_* variables. A
// .env file in the working directory is honored, but never overrides the
// real environment.
func envDefaults() (envConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return envConfig{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := envConfig{
		matrixTol: rigvalidator.MatrixTolerance,
		weightTol: rigvalidator.WeightTolerance,
		maxReport: rigvalidator.MaxReportedMismatches,
	}
	var err error
	if cfg.matrixTol, err = envFloat("RIGCHECK_MATRIX_TOLERANCE", cfg.matrixTol); err != nil {
		return envConfig{}, err
	}
	if cfg.weightTol, err = envFloat("RIGCHECK_WEIGHT_TOLERANCE", cfg.weightTol); err != nil {
		return envConfig{}, err
	}
	if cfg.maxReport, err = envInt("RIGCHECK_MAX_REPORTED", cfg.maxReport); err != nil {
		return envConfig{}, err
	}
	return cfg, nil
}

func envFloat(name string, def float64) (float64, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: not a number", name, s)
	}
	return v, nil
}

func envInt(name string, def int) (int, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: not an integer", name, s)
	}
	return v, nil
}

func listSkeletons(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".usda", ".usd":
		return usdskel.SkeletonsFile(path)
	case ".gltf", ".glb":
		return gltfskel.SkinsFile(path)
	default:
		return nil, fmt.Errorf("unsupported rig file %q", path)
	}
}

func readFileSkeleton(path, skelRef string) (*rigvalidator.Skeleton, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".usda", ".usd":
		return usdskel.ReadSkeletonFile(path, skelRef)
	case ".gltf", ".glb":
		return gltfskel.ReadSkeletonFile(path, skelRef)
	default:
		return nil, fmt.Errorf("unsupported rig file %q", path)
	}
}

func readFileSkinBinding(path, skelRef string) (*rigvalidator.SkinBinding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".usda", ".usd":
		return usdskel.ReadSkinBindingFile(path, "")
	case ".gltf", ".glb":
		return gltfskel.ReadSkinBindingFile(path, skelRef, "")
	default:
		return nil, fmt.Errorf("unsupported rig file %q", path)
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
