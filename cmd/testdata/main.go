// Command testdata generates TSV input files for the bundled executors.
//
//	testdata -executor wordcount -count 1000000 -output var/words.tsv
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/schollz/progressbar/v3"

	"pkg.jsn.cam/execreduce/cmd/testdata/generator"
)

var (
	executor   = flag.String("executor", "actioncount", "Executor to generate records for ("+strings.Join(generator.List(), ", ")+")")
	count      = flag.Int64("count", 0, "Number of records to generate (0 uses the generator's default)")
	outputPath = flag.String("output", "var/testdata.tsv", "Output TSV file path")
	userCount  = flag.Int("user_count", 100, "Number of unique users (actioncount, wordcount)")
	keyCount   = flag.Int("key_count", 10, "Number of unique metric keys (maxvalue, average)")
	seed       = flag.Uint64("seed", 0, "Random seed (0 picks one)")
	progress   = flag.Bool("progress", true, "Show a progress bar on stderr")
)

// progressStep is how many records are written between progress bar updates.
const progressStep = 4096

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	generator.SetUserCount(*executor, *userCount)
	generator.SetKeyCount(*executor, *keyCount)

	g, err := generator.Get(*executor)
	if err != nil {
		glog.Exitf("%v (available: %s)", err, strings.Join(generator.List(), ", "))
	}

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	g.Init(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)))

	total := *count
	if total <= 0 {
		total = g.DefaultCount()
	}

	if err := generate(g, total, *outputPath, *progress); err != nil {
		glog.Exitf("generate %s: %v", *outputPath, err)
	}

	info, err := os.Stat(*outputPath)
	if err != nil {
		glog.Exitf("stat %s: %v", *outputPath, err)
	}
	glog.Infof("Wrote %s %s records (%s) to %s, seed %d",
		humanize.Comma(total), *executor, humanize.IBytes(uint64(info.Size())), *outputPath, *seed)
}

func generate(g generator.Generator, total int64, path string, showProgress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(total, g.Description())
	} else {
		bar = progressbar.DefaultSilent(total)
	}

	w := bufio.NewWriterSize(file, 1<<20)
	for i := int64(0); i < total; i++ {
		if err := g.WriteRecord(w); err != nil {
			return err
		}
		if (i+1)%progressStep == 0 {
			bar.Add(progressStep)
		}
	}
	bar.Add64(total % progressStep)
	if err := bar.Finish(); err != nil {
		return fmt.Errorf("progress: %w", err)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}
